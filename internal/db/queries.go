package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/mise/internal/logger"
	"github.com/j-veylop/mise/internal/models"
)

// InsertAICall logs one orchestrator attempt to the database.
func (db *DB) InsertAICall(ctx context.Context, call *models.AICall) error {
	query := `
		INSERT INTO ai_calls (
			timestamp, label, model, key_index, outcome, duration_ms, error, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := call.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		timestamp.UTC().Format(callTimeLayout),
		call.Label,
		call.Model,
		call.KeyIndex,
		call.Outcome,
		call.DurationMs,
		nullString(call.Error),
		nullString(call.RequestID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert AI call: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		call.ID = id
	}

	return nil
}

// GetRecentAICalls returns the most recent attempts, newest first.
func (db *DB) GetRecentAICalls(ctx context.Context, limit int) ([]models.AICall, error) {
	query := `
		SELECT id, timestamp, label, model, key_index, outcome, duration_ms, error, request_id
		FROM ai_calls
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent AI calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var calls []models.AICall
	for rows.Next() {
		var call models.AICall
		var ts, errStr, reqID sql.NullString

		err := rows.Scan(
			&call.ID,
			&ts,
			&call.Label,
			&call.Model,
			&call.KeyIndex,
			&call.Outcome,
			&call.DurationMs,
			&errStr,
			&reqID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan AI call: %w", err)
		}

		call.Timestamp, _ = parseTimeString(ts.String)
		call.Error = errStr.String
		call.RequestID = reqID.String
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

// GetModelStats aggregates attempt outcomes per model.
func (db *DB) GetModelStats(ctx context.Context) ([]models.ModelStats, error) {
	query := `
		SELECT
			model,
			COUNT(*) as attempts,
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END) as successes,
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END) as retryable,
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END) as terminal,
			COALESCE(AVG(duration_ms), 0) as avg_duration,
			MAX(timestamp) as last_used
		FROM ai_calls
		GROUP BY model
		ORDER BY attempts DESC, model ASC
	`

	rows, err := db.QueryContext(ctx, query,
		models.AttemptSuccess, models.AttemptRetryable, models.AttemptTerminal)
	if err != nil {
		return nil, fmt.Errorf("failed to query model stats: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var stats []models.ModelStats
	for rows.Next() {
		var s models.ModelStats
		var lastUsed sql.NullString
		err := rows.Scan(
			&s.Model,
			&s.Attempts,
			&s.Successes,
			&s.Retryable,
			&s.Terminal,
			&s.AvgDurationMs,
			&lastUsed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model stats: %w", err)
		}
		s.LastUsed, _ = parseTimeString(lastUsed.String)
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// PruneAICalls deletes attempts older than the given age.
func (db *DB) PruneAICalls(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(callTimeLayout)
	result, err := db.ExecContext(ctx, "DELETE FROM ai_calls WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune AI calls: %w", err)
	}
	return result.RowsAffected()
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

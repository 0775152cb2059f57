// Package services provides service orchestration for the TUI and CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/mise/internal/config"
	"github.com/j-veylop/mise/internal/db"
	"github.com/j-veylop/mise/internal/logger"
	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/services/ai"
	"github.com/j-veylop/mise/internal/services/analytics"
	"github.com/j-veylop/mise/internal/services/logwatch"
	"github.com/j-veylop/mise/internal/services/pantry"
)

// aiCallRetention bounds how long attempt diagnostics are kept.
const aiCallRetention = 30 * 24 * time.Hour

// streakMilestones trigger a notification when the current streak reaches them.
var streakMilestones = []int{3, 7, 14, 30, 50, 100}

type (
	// CookedLoggedEvent is emitted after a recipe is added to the log.
	CookedLoggedEvent struct {
		Entry    *models.CookedRecipe
		Snapshot *models.Snapshot
		LevelUp  bool
	}

	// LogChangedEvent is emitted when another process writes the database.
	LogChangedEvent struct{}

	// AICallEvent is emitted for every orchestrator attempt.
	AICallEvent struct {
		Call models.AICall
	}

	// PantryChangedEvent is emitted when pantry items are added or removed.
	PantryChangedEvent struct{}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CookedLoggedEvent) isServiceEvent()  {}
func (LogChangedEvent) isServiceEvent()    {}
func (AICallEvent) isServiceEvent()        {}
func (PantryChangedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()         {}

// RotationStatus describes the orchestrator's shared cursors.
type RotationStatus struct {
	Provider       config.Provider
	LastModel      string
	Models         []string
	KeyCount       int
	KeyIndex       int
	ImageEnabled   bool
	LastModelIndex int
}

// Manager wires configuration, storage and the AI backends together.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	database    *db.DB
	ai          *ai.Service
	pantry      *pantry.Service
	watcher     *logwatch.Watcher
	stopChan    chan struct{}
	subscribers []chan ServiceEvent
	notify      func(title, body string) error
	now         func() time.Time
	closeOnce   sync.Once
}

// NewManager creates a manager with the backend selected by cfg.Provider.
func NewManager(cfg *config.Config) (*Manager, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	var gen ai.Generator
	switch cfg.Provider {
	case config.ProviderOpenAI:
		gen = ai.NewOpenAIClient(cfg.BaseURL, httpClient)
	default:
		gen = ai.NewGeminiClient(cfg.BaseURL, httpClient)
	}

	var images ai.ImageGenerator
	if cfg.ImageAPIURL != "" {
		images = ai.NewImageClient(cfg.ImageAPIURL, cfg.ImageAPIKey, httpClient)
	}

	return newManager(cfg, gen, images)
}

func newManager(cfg *config.Config, gen ai.Generator, images ai.ImageGenerator) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		stopChan: make(chan struct{}),
		notify:   notifyDesktop,
		now:      time.Now,
	}

	rotation, err := ai.NewRotation(cfg.APIKeys, cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model rotation: %w", err)
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	orch := ai.NewOrchestrator(rotation,
		ai.WithObserver(m.recordAttempt),
		ai.WithAttemptTimeout(cfg.RequestTimeout),
	)
	m.ai = ai.NewService(orch, gen, images)
	m.pantry = pantry.New(m.database)

	logger.Debug("database opened", "path", m.database.Path())
	if n, err := m.database.PruneAICalls(context.Background(), aiCallRetention); err != nil {
		logger.Warn("failed to prune AI call log", "error", err)
	} else if n > 0 {
		logger.Debug("pruned AI call log", "removed", n)
		if err := m.database.Vacuum(); err != nil {
			logger.Warn("vacuum failed", "error", err)
		}
	}

	m.watcher, err = logwatch.New(cfg.DatabasePath, logwatch.DefaultDebounce)
	if err != nil {
		// Stats still work; they just won't refresh on external writes.
		logger.Warn("database watcher unavailable", "error", err)
	} else {
		go m.routeEvents()
	}

	return m, nil
}

func notifyDesktop(title, body string) error {
	return beeep.Notify(title, body, "")
}

// routeEvents forwards watcher events to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event, ok := <-m.watcher.Events():
			if !ok {
				return
			}
			switch event.Type {
			case logwatch.EventChanged:
				m.broadcast(LogChangedEvent{})
			case logwatch.EventError:
				m.broadcast(ErrorEvent{Service: "logwatch", Error: event.Error})
			}

		case <-m.stopChan:
			return
		}
	}
}

// recordAttempt persists one orchestrator attempt and broadcasts it.
func (m *Manager) recordAttempt(a ai.Attempt) {
	call := models.AICall{
		Timestamp:  a.Started,
		Label:      a.Label,
		Model:      a.Call.Model,
		KeyIndex:   a.Call.KeyIndex,
		RequestID:  a.RequestID,
		DurationMs: int(a.Duration.Milliseconds()),
		Outcome:    attemptOutcome(a.Kind),
	}
	if a.Err != nil {
		call.Error = a.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.database.InsertAICall(ctx, &call); err != nil {
		logger.Error("failed to record AI call", "error", err)
	}
	m.broadcast(AICallEvent{Call: call})
}

func attemptOutcome(kind ai.FailureKind) string {
	switch kind {
	case ai.FailureRetryable:
		return models.AttemptRetryable
	case ai.FailureTerminal:
		return models.AttemptTerminal
	default:
		return models.AttemptSuccess
	}
}

// broadcast sends an event to all subscribers without blocking.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the loaded configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// AI returns the typed AI operations.
func (m *Manager) AI() *ai.Service {
	return m.ai
}

// Pantry returns the pantry service.
func (m *Manager) Pantry() *pantry.Service {
	return m.pantry
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// CookedLog returns the cooked-recipe log, newest first.
func (m *Manager) CookedLog(ctx context.Context) ([]*models.CookedRecipe, error) {
	entries, err := m.database.ReadAllCooked(ctx)
	if err != nil {
		return nil, err
	}
	log := make([]*models.CookedRecipe, len(entries))
	for i := range entries {
		log[i] = &entries[i]
	}
	return log, nil
}

// LogSummary reports how many entries the cooked log holds and when the
// newest was cooked.
func (m *Manager) LogSummary(ctx context.Context) (count int, last time.Time, err error) {
	if count, err = m.database.CountCooked(ctx); err != nil {
		return 0, time.Time{}, err
	}
	last, err = m.database.LastCookedAt(ctx)
	return count, last, err
}

// ExpiringPantry returns pantry items that are expiring or already expired.
func (m *Manager) ExpiringPantry(ctx context.Context) ([]models.PantryItem, error) {
	return m.pantry.Expiring(ctx)
}

// Analytics computes a statistics snapshot for the time range.
func (m *Manager) Analytics(ctx context.Context, rng models.TimeRange) (*models.Snapshot, error) {
	log, err := m.CookedLog(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Compute(log, rng, m.now()), nil
}

// LogCooked appends recipe to the cooked log and notifies on a level-up or
// a streak milestone.
func (m *Manager) LogCooked(ctx context.Context, recipe models.Recipe) (*CookedLoggedEvent, error) {
	if err := models.Validate(&recipe); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}

	before, err := m.Analytics(ctx, models.TimeRangeAll)
	if err != nil {
		return nil, err
	}

	entry := &models.CookedRecipe{Recipe: recipe, CookedAt: m.now()}
	if err := m.database.AppendCooked(ctx, entry, m.cfg.HistoryLimit); err != nil {
		return nil, err
	}

	after, err := m.Analytics(ctx, models.TimeRangeAll)
	if err != nil {
		return nil, err
	}

	event := &CookedLoggedEvent{
		Entry:    entry,
		Snapshot: after,
		LevelUp:  after.Skill.Current.MinDishes > before.Skill.Current.MinDishes,
	}
	logger.Info("recipe cooked",
		"title", recipe.Title,
		"level", after.Skill.Current.Name,
		"streak", after.CurrentStreak,
	)

	m.celebrate(before, after, event.LevelUp)
	m.broadcast(*event)
	return event, nil
}

func (m *Manager) celebrate(before, after *models.Snapshot, levelUp bool) {
	if !m.cfg.Notifications {
		return
	}
	if levelUp {
		m.sendNotification("Level up: "+after.Skill.Current.Name,
			fmt.Sprintf("%d dishes cooked. Keep it going!", after.AllTimeDishes))
	}
	if after.CurrentStreak > before.CurrentStreak && slices.Contains(streakMilestones, after.CurrentStreak) {
		m.sendNotification(fmt.Sprintf("%d-day cooking streak", after.CurrentStreak),
			"You have cooked every day. See you tomorrow!")
	}
}

func (m *Manager) sendNotification(title, body string) {
	if err := m.notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// ScanPantry recognizes ingredients in an image and adds them to the pantry.
func (m *Manager) ScanPantry(ctx context.Context, image []byte, mimeType string) ([]*models.PantryItem, error) {
	names, err := m.ai.RecognizeIngredients(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	return m.AddPantry(ctx, names...)
}

// AddPantry adds items to the pantry.
func (m *Manager) AddPantry(ctx context.Context, names ...string) ([]*models.PantryItem, error) {
	items, err := m.pantry.Add(ctx, names...)
	if len(items) > 0 {
		m.broadcast(PantryChangedEvent{})
	}
	return items, err
}

// RemovePantry removes one item by ID or name.
func (m *Manager) RemovePantry(ctx context.Context, idOrName string) error {
	if err := m.pantry.Remove(ctx, idOrName); err != nil {
		return err
	}
	m.broadcast(PantryChangedEvent{})
	return nil
}

// GenerateRecipes generates recipes. With no ingredients and no dish name,
// the unexpired pantry is used.
func (m *Manager) GenerateRecipes(ctx context.Context, ingredients []string, rc models.RecipeContext) ([]models.Recipe, error) {
	if len(ingredients) == 0 && rc.DishName == "" {
		names, err := m.pantry.Names(ctx)
		if err != nil {
			return nil, err
		}
		ingredients = names
	}
	return m.ai.GenerateRecipes(ctx, ingredients, rc)
}

// SuggestMeal fills the pantry and recent dishes when the request omits them.
func (m *Manager) SuggestMeal(ctx context.Context, req models.MealRequest) (*models.MealSuggestion, error) {
	if len(req.Pantry) == 0 {
		names, err := m.pantry.Names(ctx)
		if err != nil {
			return nil, err
		}
		req.Pantry = names
	}
	if len(req.RecentDishes) == 0 {
		log, err := m.CookedLog(ctx)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(log) && i < 5; i++ {
			req.RecentDishes = append(req.RecentDishes, log[i].Recipe.Title)
		}
	}
	return m.ai.SuggestMeal(ctx, req)
}

// BuildGroceryList builds a shopping list excluding what is in the pantry.
func (m *Manager) BuildGroceryList(ctx context.Context, recipes []models.Recipe) (*models.GroceryList, error) {
	names, err := m.pantry.Names(ctx)
	if err != nil {
		return nil, err
	}
	return m.ai.BuildGroceryList(ctx, recipes, names)
}

// PreviewDish identifies a described dish, with an image when available.
func (m *Manager) PreviewDish(ctx context.Context, description string) (*models.DishPreview, error) {
	return m.ai.PreviewDish(ctx, description)
}

// RotationStatus returns a snapshot of the model and credential cursors.
func (m *Manager) RotationStatus() RotationStatus {
	r := m.ai.Orchestrator().Rotation()
	return RotationStatus{
		Provider:       m.cfg.Provider,
		Models:         r.Models(),
		KeyCount:       r.KeyCount(),
		KeyIndex:       r.KeyIndex(),
		LastModel:      r.LastModel(),
		LastModelIndex: r.LastModelIndex(),
		ImageEnabled:   m.cfg.ImageAPIURL != "",
	}
}

// RecentAICalls returns the latest orchestrator attempts.
func (m *Manager) RecentAICalls(ctx context.Context, limit int) ([]models.AICall, error) {
	return m.database.GetRecentAICalls(ctx, limit)
}

// ModelStats returns per-model attempt statistics.
func (m *Manager) ModelStats(ctx context.Context) ([]models.ModelStats, error) {
	return m.database.GetModelStats(ctx)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)

		if m.watcher != nil {
			if err := m.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

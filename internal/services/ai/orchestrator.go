package ai

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/mise/internal/logger"
)

// Call identifies one (model, credential) trial.
type Call struct {
	Model      string
	Key        string
	ModelIndex int
	KeyIndex   int
}

// Attempt describes a finished trial. It is passed to the Observer.
type Attempt struct {
	Started   time.Time
	Err       error
	Label     string
	RequestID string
	Call      Call
	Duration  time.Duration
	Kind      FailureKind
}

// Observer receives every attempt. It must not block.
type Observer func(Attempt)

// Orchestrator runs operations with model and credential fallback.
type Orchestrator struct {
	rotation       *Rotation
	observer       Observer
	attemptTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers a callback for each attempt.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithAttemptTimeout bounds each individual attempt. Zero means no bound
// beyond the caller's context.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.attemptTimeout = d }
}

// NewOrchestrator creates an orchestrator over the given rotation state.
func NewOrchestrator(rotation *Rotation, opts ...Option) *Orchestrator {
	o := &Orchestrator{rotation: rotation}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rotation returns the shared rotation state.
func (o *Orchestrator) Rotation() *Rotation {
	return o.rotation
}

// Execute runs op against the best available (model, credential) pair.
//
// Models are tried starting at the last one that worked. A terminal failure
// moves on to the next model under the same credential; a retryable failure
// abandons the credential's remaining models. After each credential's model
// loop the next credential is tried, each credential at most once. The first
// success is returned and recorded as the new preferred model. When every
// combination fails, an *ExhaustedError wrapping the last failure is
// returned. Attempts run sequentially, at most models×credentials of them.
//
// Cancelling ctx stops before the next attempt and returns ctx.Err().
func Execute[T any](ctx context.Context, o *Orchestrator, label string, op func(context.Context, Call) (T, error)) (T, error) {
	var zero T
	r := o.rotation
	order := r.TrialOrder()
	startKey := r.KeyIndex()
	nKeys := r.KeyCount()
	requestID := uuid.NewString()

	var lastErr error
	attempts := 0

	for k := 0; k < nKeys; k++ {
		keyIdx := (startKey + k) % nKeys
		r.setKeyIndex(keyIdx)

		for _, modelIdx := range order {
			if err := ctx.Err(); err != nil {
				return zero, err
			}

			call := Call{
				Model:      r.models[modelIdx],
				Key:        r.key(keyIdx),
				ModelIndex: modelIdx,
				KeyIndex:   keyIdx,
			}

			started := time.Now()
			v, err := runAttempt(ctx, o.attemptTimeout, call, op)
			attempts++
			kind := Classify(err)
			o.observe(Attempt{
				Started:   started,
				Err:       err,
				Label:     label,
				RequestID: requestID,
				Call:      call,
				Duration:  time.Since(started),
				Kind:      kind,
			})

			if err == nil {
				r.setLastModel(modelIdx)
				return v, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, ctxErr
			}

			lastErr = err
			logger.Debug("ai attempt failed",
				"label", label,
				"model", call.Model,
				"key_index", keyIdx,
				"kind", kind.String(),
				"error", err,
			)
			if kind == FailureRetryable {
				break
			}
		}

		// Rotate past this credential; with a single credential this is a no-op.
		r.setKeyIndex(keyIdx + 1)
	}

	logger.Warn("ai operation exhausted all models and credentials",
		"label", label,
		"attempts", attempts,
		"error", lastErr,
	)
	return zero, &ExhaustedError{Label: label, Attempts: attempts, Last: lastErr}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, call Call, op func(context.Context, Call) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return op(ctx, call)
}

func (o *Orchestrator) observe(a Attempt) {
	if o.observer != nil {
		o.observer(a)
	}
}

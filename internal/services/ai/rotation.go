package ai

import (
	"errors"
	"sync/atomic"
)

var (
	ErrNoCredentials = errors.New("credential pool is empty")
	ErrNoModels      = errors.New("model priority list is empty")
)

// Rotation holds the credential pool and model priority list plus two
// cursors: the current credential and the last model that worked. The
// cursors are shared hints. Any value is a valid starting point, so
// concurrent callers may race on them without affecting correctness.
type Rotation struct {
	keys      []string
	models    []string
	keyIndex  atomic.Int64
	lastModel atomic.Int64
}

// NewRotation copies keys and models. Both must be non-empty.
func NewRotation(keys, models []string) (*Rotation, error) {
	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	return &Rotation{
		keys:   append([]string(nil), keys...),
		models: append([]string(nil), models...),
	}, nil
}

// Models returns a copy of the model priority list.
func (r *Rotation) Models() []string {
	return append([]string(nil), r.models...)
}

// KeyCount returns the size of the credential pool.
func (r *Rotation) KeyCount() int {
	return len(r.keys)
}

// KeyIndex returns the current credential cursor.
func (r *Rotation) KeyIndex() int {
	return wrap(r.keyIndex.Load(), len(r.keys))
}

// LastModelIndex returns the index of the last model that succeeded.
func (r *Rotation) LastModelIndex() int {
	return wrap(r.lastModel.Load(), len(r.models))
}

// LastModel returns the name of the last model that succeeded.
func (r *Rotation) LastModel() string {
	return r.models[r.LastModelIndex()]
}

// TrialOrder returns model indexes rotated to start at the last working
// model, wrapping around.
func (r *Rotation) TrialOrder() []int {
	start := r.LastModelIndex()
	order := make([]int, len(r.models))
	for i := range order {
		order[i] = (start + i) % len(r.models)
	}
	return order
}

func (r *Rotation) key(i int) string {
	return r.keys[i]
}

func (r *Rotation) setKeyIndex(i int) {
	r.keyIndex.Store(int64(wrap(int64(i), len(r.keys))))
}

func (r *Rotation) setLastModel(i int) {
	r.lastModel.Store(int64(i))
}

// wrap maps any cursor value into [0, n).
func wrap(v int64, n int) int {
	i := int(v % int64(n))
	if i < 0 {
		i += n
	}
	return i
}

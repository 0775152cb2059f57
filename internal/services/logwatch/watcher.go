// Package logwatch reports writes to the database file made by other
// processes, such as "mise cooked" run while the TUI is open.
package logwatch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/mise/internal/logger"
)

// DefaultDebounce coalesces bursts of writes into one event.
const DefaultDebounce = 100 * time.Millisecond

// EventType identifies a watcher event.
type EventType int

const (
	EventChanged EventType = iota
	EventError
)

// Event is sent on the Events channel.
type Event struct {
	Error error
	Path  string
	Type  EventType
}

// Watcher watches a database file and its WAL file.
type Watcher struct {
	mu            sync.Mutex
	watcher       *fsnotify.Watcher
	names         map[string]bool
	events        chan Event
	stop          chan struct{}
	debounceTimer *time.Timer
	path          string
	debounce      time.Duration
	closeOnce     sync.Once
}

// New starts watching path. The parent directory must exist.
func New(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so WAL files created later are seen.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		if closeErr := fw.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	base := filepath.Base(path)
	w := &Watcher{
		watcher:  fw,
		path:     path,
		debounce: debounce,
		names:    map[string]bool{base: true, base + "-wal": true},
		events:   make(chan Event, 16),
		stop:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Events returns the event channel.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.names[filepath.Base(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("database watcher error", "error", err)
			w.send(Event{Type: EventError, Error: err, Path: w.path})

		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.send(Event{Type: EventChanged, Path: w.path})
	})
}

// send delivers without blocking, dropping the oldest event when full.
func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
		return
	default:
	}
	select {
	case <-w.events:
	default:
	}
	select {
	case w.events <- ev:
	default:
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stop)
		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

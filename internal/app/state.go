// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	NotificationSuccess NotificationType = iota
	NotificationError
	NotificationWarning
	NotificationInfo
	// NotificationLoading is shown with the spinner until cleared.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID for the loading notification.
const LoadingNotificationID = "__loading__"

// maxNotifications bounds the toast stack.
const maxNotifications = 5

// recentCallsLimit is how many AI attempts the info tab shows.
const recentCallsLimit = 12

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing toast.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired reports whether the notification outlived its duration.
// A zero duration never expires.
func (n *Notification) IsExpired(now time.Time) bool {
	return n.Duration > 0 && now.Sub(n.CreatedAt) > n.Duration
}

// Resource names an independently loaded piece of state.
type Resource string

const (
	ResourceStats       Resource = "stats"
	ResourceDiagnostics Resource = "diagnostics"
	ResourcePantry      Resource = "pantry"
	ResourceKitchen     Resource = "kitchen"
)

// Diagnostics is the orchestrator information shown on the info tab.
type Diagnostics struct {
	Rotation    services.RotationStatus
	RecentCalls []models.AICall
	ModelStats  []models.ModelStats
}

// State is shared between the root model and the tabs. Commands run in
// goroutines, so every accessor locks.
type State struct {
	mu sync.RWMutex

	snapshot    *models.Snapshot
	recent      []*models.CookedRecipe
	timeRange   models.TimeRange
	diagnostics Diagnostics
	pantry      []models.PantryItem

	recipes  []models.Recipe
	preview  *models.DishPreview
	grocery  *models.GroceryList
	selected int

	loading     map[Resource]bool
	initial     bool
	lastUpdated time.Time

	notifications []Notification
	now           func() time.Time
}

// NewState returns an empty state waiting for its initial load.
func NewState() *State {
	return &State{
		timeRange: models.TimeRangeWeek,
		loading:   make(map[Resource]bool),
		initial:   true,
		now:       time.Now,
	}
}

// SetLoading marks a resource as loading or done.
func (s *State) SetLoading(r Resource, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[r] = true
		return
	}
	delete(s.loading, r)
}

// IsLoading reports whether r is loading.
func (s *State) IsLoading(r Resource) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[r]
}

// AnyLoading returns true if the initial load or any resource is pending.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initial || len(s.loading) > 0
}

func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initial
}

func (s *State) FinishInitialLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = false
}

// SetStats stores the analytics snapshot and the most recent log entries.
func (s *State) SetStats(snap *models.Snapshot, recent []*models.CookedRecipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.recent = recent
	s.lastUpdated = s.now()
}

func (s *State) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Recent returns a copy of the most recent cooked entries.
func (s *State) Recent() []*models.CookedRecipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CookedRecipe, len(s.recent))
	copy(out, s.recent)
	return out
}

func (s *State) TimeRange() models.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeRange
}

// CycleTimeRange advances week → month → all → week and returns the new range.
func (s *State) CycleTimeRange() models.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeRange = s.timeRange.Next()
	return s.timeRange
}

func (s *State) SetDiagnostics(d Diagnostics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = d
}

func (s *State) Diagnostics() Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diagnostics
}

// PushAICall prepends a live attempt so the info tab updates before the next
// diagnostics reload.
func (s *State) PushAICall(call models.AICall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := append([]models.AICall{call}, s.diagnostics.RecentCalls...)
	if len(calls) > recentCallsLimit {
		calls = calls[:recentCallsLimit]
	}
	s.diagnostics.RecentCalls = calls
}

func (s *State) SetPantry(items []models.PantryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pantry = items
}

// Pantry returns a copy of the pantry items.
func (s *State) Pantry() []models.PantryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PantryItem, len(s.pantry))
	copy(out, s.pantry)
	return out
}

// SetRecipes replaces the generated recipes and resets the selection.
func (s *State) SetRecipes(recipes []models.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = recipes
	s.selected = 0
	s.grocery = nil
}

func (s *State) Recipes() []models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

// SelectedRecipe returns the highlighted recipe, or nil when there is none.
func (s *State) SelectedRecipe() *models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected < 0 || s.selected >= len(s.recipes) {
		return nil
	}
	r := s.recipes[s.selected]
	return &r
}

func (s *State) SelectedIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// MoveSelection moves the recipe cursor by delta, wrapping at both ends.
func (s *State) MoveSelection(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.recipes)
	if n == 0 {
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

func (s *State) SetPreview(p *models.DishPreview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = p
}

func (s *State) Preview() *models.DishPreview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

func (s *State) SetGrocery(g *models.GroceryList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grocery = g
}

func (s *State) Grocery() *models.GroceryList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grocery
}

// LastUpdated returns when the stats were last loaded.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddNotification adds a toast and returns its ID. Only the newest
// maxNotifications are kept.
func (s *State) AddNotification(t NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      t,
		Message:   message,
		CreatedAt: s.now(),
		Duration:  duration,
	})
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *State) removeLocked(id string) {
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications drops every expired notification.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	active := s.notifications[:0]
	for _, n := range s.notifications {
		if !n.IsExpired(now) {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// Notifications returns the unexpired notifications, oldest first.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired(now) {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification shows or updates the single loading toast.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}
	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: s.now(),
	})
}

func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(LoadingNotificationID)
}

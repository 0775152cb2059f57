package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/j-veylop/mise/internal/models"
)

func newClockedState(now *time.Time) *State {
	s := NewState()
	s.now = func() time.Time { return *now }
	return s
}

func TestNewState(t *testing.T) {
	s := NewState()
	if !s.IsInitialLoading() || !s.AnyLoading() {
		t.Error("new state should be in initial load")
	}
	if s.TimeRange() != models.TimeRangeWeek {
		t.Errorf("TimeRange = %v, want week", s.TimeRange())
	}
	if s.Snapshot() != nil || s.SelectedRecipe() != nil {
		t.Error("new state should be empty")
	}
}

func TestState_Loading(t *testing.T) {
	s := NewState()
	s.FinishInitialLoad()
	if s.AnyLoading() {
		t.Fatal("nothing should be loading")
	}

	s.SetLoading(ResourceKitchen, true)
	s.SetLoading(ResourceStats, true)
	if !s.IsLoading(ResourceKitchen) || !s.AnyLoading() {
		t.Error("kitchen should be loading")
	}
	s.SetLoading(ResourceKitchen, false)
	if s.IsLoading(ResourceKitchen) {
		t.Error("kitchen should be done")
	}
	if !s.AnyLoading() {
		t.Error("stats still loading")
	}
	s.SetLoading(ResourceStats, false)
	if s.AnyLoading() {
		t.Error("nothing should be loading")
	}
}

func TestState_CycleTimeRange(t *testing.T) {
	s := NewState()
	want := []models.TimeRange{models.TimeRangeMonth, models.TimeRangeAll, models.TimeRangeWeek}
	for _, w := range want {
		if got := s.CycleTimeRange(); got != w {
			t.Errorf("CycleTimeRange() = %v, want %v", got, w)
		}
	}
}

func TestState_SetStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newClockedState(&now)

	recent := []*models.CookedRecipe{{Recipe: models.Recipe{Title: "Soup"}}}
	s.SetStats(&models.Snapshot{TotalDishes: 3}, recent)

	if s.Snapshot().TotalDishes != 3 {
		t.Error("snapshot not stored")
	}
	if !s.LastUpdated().Equal(now) {
		t.Errorf("LastUpdated = %v, want %v", s.LastUpdated(), now)
	}

	got := s.Recent()
	got[0] = nil
	if s.Recent()[0] == nil {
		t.Error("Recent should return a copy")
	}
}

func TestState_RecipeSelection(t *testing.T) {
	s := NewState()
	s.MoveSelection(1)
	if s.SelectedIndex() != 0 {
		t.Error("moving with no recipes should be a no-op")
	}

	s.SetGrocery(&models.GroceryList{})
	s.SetRecipes([]models.Recipe{{Title: "A"}, {Title: "B"}, {Title: "C"}})
	if s.Grocery() != nil {
		t.Error("new recipes should clear the grocery list")
	}

	s.MoveSelection(-1)
	if r := s.SelectedRecipe(); r == nil || r.Title != "C" {
		t.Errorf("selection should wrap backwards to C, got %+v", r)
	}
	s.MoveSelection(2)
	if r := s.SelectedRecipe(); r == nil || r.Title != "B" {
		t.Errorf("selection should wrap forwards to B, got %+v", r)
	}

	r := s.SelectedRecipe()
	r.Title = "changed"
	if s.SelectedRecipe().Title != "B" {
		t.Error("SelectedRecipe should return a copy")
	}

	s.SetRecipes([]models.Recipe{{Title: "X"}})
	if s.SelectedIndex() != 0 {
		t.Error("SetRecipes should reset the selection")
	}
}

func TestState_PushAICall(t *testing.T) {
	s := NewState()
	for i := range recentCallsLimit + 3 {
		s.PushAICall(models.AICall{ID: int64(i)})
	}
	calls := s.Diagnostics().RecentCalls
	if len(calls) != recentCallsLimit {
		t.Fatalf("len = %d, want %d", len(calls), recentCallsLimit)
	}
	if calls[0].ID != int64(recentCallsLimit+2) {
		t.Errorf("newest call should be first, got ID %d", calls[0].ID)
	}
}

func TestState_Notifications(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newClockedState(&now)

	short := s.AddNotification(NotificationInfo, "short", time.Second)
	s.AddNotification(NotificationError, "sticky", 0)
	if n := len(s.Notifications()); n != 2 {
		t.Fatalf("len = %d, want 2", n)
	}

	now = now.Add(2 * time.Second)
	if n := s.Notifications(); len(n) != 1 || n[0].Message != "sticky" {
		t.Errorf("expired notification still visible: %+v", n)
	}
	s.ClearExpiredNotifications()
	s.RemoveNotification(short)
	if n := len(s.Notifications()); n != 1 {
		t.Errorf("len = %d, want 1", n)
	}
}

func TestState_NotificationCap(t *testing.T) {
	s := NewState()
	for i := range maxNotifications + 2 {
		s.AddNotification(NotificationInfo, fmt.Sprintf("n%d", i), 0)
	}
	n := s.Notifications()
	if len(n) != maxNotifications {
		t.Fatalf("len = %d, want %d", len(n), maxNotifications)
	}
	if n[0].Message != "n2" {
		t.Errorf("oldest kept = %q, want n2", n[0].Message)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()
	s.SetLoadingNotification("one")
	s.SetLoadingNotification("two")

	n := s.Notifications()
	if len(n) != 1 || n[0].Message != "two" || n[0].ID != LoadingNotificationID {
		t.Fatalf("loading toast not updated in place: %+v", n)
	}
	s.ClearLoadingNotification()
	if len(s.Notifications()) != 0 {
		t.Error("loading toast not cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := map[NotificationType]string{
		NotificationSuccess:  "success",
		NotificationError:    "error",
		NotificationWarning:  "warning",
		NotificationInfo:     "info",
		NotificationLoading:  "loading",
		NotificationType(99): "unknown",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}

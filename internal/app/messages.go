package app

import (
	"time"

	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Label    string
	Resource Resource
}

// StatsLoadedMsg carries a fresh analytics snapshot.
type StatsLoadedMsg struct {
	Snapshot *models.Snapshot
	Recent   []*models.CookedRecipe
	Error    error
}

// DiagnosticsLoadedMsg carries rotation state and AI attempt history.
type DiagnosticsLoadedMsg struct {
	Error       error
	Diagnostics Diagnostics
}

// PantryLoadedMsg carries the pantry contents.
type PantryLoadedMsg struct {
	Error error
	Items []models.PantryItem
}

// RecipesGeneratedMsg is the result of a recipe generation request.
type RecipesGeneratedMsg struct {
	Error   error
	Recipes []models.Recipe
}

// DishPreviewedMsg is the result of a dish preview request.
type DishPreviewedMsg struct {
	Preview *models.DishPreview
	Error   error
}

// GroceryListMsg is the result of a grocery list request.
type GroceryListMsg struct {
	List  *models.GroceryList
	Error error
}

// CookedMsg is the result of marking a recipe cooked.
type CookedMsg struct {
	Event *services.CookedLoggedEvent
	Error error
}

// RefreshMsg requests a reload. An empty Resource reloads everything.
type RefreshMsg struct {
	Resource Resource
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg hands the subscription channel to the model.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

type ToggleHelpMsg struct{}

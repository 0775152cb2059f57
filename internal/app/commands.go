package app

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/mise/internal/config"
	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = time.Second

	DefaultNotificationDuration = 5 * time.Second
	QuickNotificationDuration   = 3 * time.Second
	LongNotificationDuration    = 10 * time.Second

	// loadTimeout bounds local database reads.
	loadTimeout = 5 * time.Second
)

var errNoServices = errors.New("services not initialized")

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// aiTimeout bounds a whole fallback loop: every (model, key) pair may use the
// full per-attempt timeout.
func aiTimeout(cfg *config.Config) time.Duration {
	attempts := max(len(cfg.Models)*len(cfg.APIKeys), 1)
	perAttempt := cfg.RequestTimeout
	if perAttempt <= 0 {
		perAttempt = time.Minute
	}
	return time.Duration(attempts) * perAttempt
}

func loadStatsCmd(mgr *services.Manager, rng models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return StatsLoadedMsg{Error: errNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		snap, err := mgr.Analytics(ctx, rng)
		if err != nil {
			return StatsLoadedMsg{Error: err}
		}
		log, err := mgr.CookedLog(ctx)
		if err != nil {
			return StatsLoadedMsg{Error: err}
		}
		return StatsLoadedMsg{Snapshot: snap, Recent: log[:min(len(log), 5)]}
	}
}

func loadDiagnosticsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return DiagnosticsLoadedMsg{Error: errNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		calls, err := mgr.RecentAICalls(ctx, recentCallsLimit)
		if err != nil {
			return DiagnosticsLoadedMsg{Error: err}
		}
		stats, err := mgr.ModelStats(ctx)
		if err != nil {
			return DiagnosticsLoadedMsg{Error: err}
		}
		return DiagnosticsLoadedMsg{Diagnostics: Diagnostics{
			Rotation:    mgr.RotationStatus(),
			RecentCalls: calls,
			ModelStats:  stats,
		}}
	}
}

func loadPantryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return PantryLoadedMsg{Error: errNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		items, err := mgr.Pantry().List(ctx)
		return PantryLoadedMsg{Items: items, Error: err}
	}
}

// loadInitialData loads every resource once at startup.
func loadInitialData(mgr *services.Manager, rng models.TimeRange) tea.Cmd {
	return tea.Batch(
		loadStatsCmd(mgr, rng),
		loadDiagnosticsCmd(mgr),
		loadPantryCmd(mgr),
	)
}

// ParseIngredients splits comma-separated input into trimmed names.
func ParseIngredients(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func generateRecipesCmd(mgr *services.Manager, ingredients []string) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return RecipesGeneratedMsg{Error: errNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), aiTimeout(mgr.Config()))
		defer cancel()
		recipes, err := mgr.GenerateRecipes(ctx, ingredients, models.RecipeContext{})
		return RecipesGeneratedMsg{Recipes: recipes, Error: err}
	}
}

func previewDishCmd(mgr *services.Manager, description string) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return DishPreviewedMsg{Error: errNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*aiTimeout(mgr.Config()))
		defer cancel()
		preview, err := mgr.PreviewDish(ctx, description)
		return DishPreviewedMsg{Preview: preview, Error: err}
	}
}

func groceryListCmd(mgr *services.Manager, recipes []models.Recipe) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return GroceryListMsg{Error: errNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), aiTimeout(mgr.Config()))
		defer cancel()
		list, err := mgr.BuildGroceryList(ctx, recipes)
		return GroceryListMsg{List: list, Error: err}
	}
}

func logCookedCmd(mgr *services.Manager, recipe models.Recipe) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return CookedMsg{Error: errNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		event, err := mgr.LogCooked(ctx, recipe)
		return CookedMsg{Event: event, Error: err}
	}
}

// subscribeToServicesCmd subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands exposes the command constructors to the tabs.
type Commands struct {
	manager *services.Manager
	state   *State
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager, state *State) *Commands {
	return &Commands{manager: mgr, state: state}
}

// startLoading marks r as loading and shows label in the loading toast.
func (c *Commands) startLoading(r Resource, label string) tea.Cmd {
	return func() tea.Msg {
		return StartLoadingMsg{Resource: r, Label: label}
	}
}

// LoadStats reloads the snapshot for the current time range.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager, c.state.TimeRange())
}

func (c *Commands) LoadDiagnostics() tea.Cmd {
	return loadDiagnosticsCmd(c.manager)
}

func (c *Commands) LoadPantry() tea.Cmd {
	return loadPantryCmd(c.manager)
}

// GenerateRecipes asks the AI for recipes. Empty input uses the pantry.
func (c *Commands) GenerateRecipes(input string) tea.Cmd {
	return tea.Sequence(
		c.startLoading(ResourceKitchen, "Generating recipes..."),
		generateRecipesCmd(c.manager, ParseIngredients(input)),
	)
}

// PreviewDish identifies a described dish.
func (c *Commands) PreviewDish(description string) tea.Cmd {
	return tea.Sequence(
		c.startLoading(ResourceKitchen, "Identifying dish..."),
		previewDishCmd(c.manager, strings.TrimSpace(description)),
	)
}

// BuildGroceryList builds a shopping list for recipes.
func (c *Commands) BuildGroceryList(recipes []models.Recipe) tea.Cmd {
	return tea.Sequence(
		c.startLoading(ResourceKitchen, "Building grocery list..."),
		groceryListCmd(c.manager, recipes),
	)
}

// MarkCooked appends recipe to the cooked log.
func (c *Commands) MarkCooked(recipe models.Recipe) tea.Cmd {
	return logCookedCmd(c.manager, recipe)
}

func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

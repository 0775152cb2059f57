package kitchen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/mise/internal/app"
	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/services/pantry"
	"github.com/j-veylop/mise/internal/ui/styles"
)

// maxPantryShown caps the pantry card.
const maxPantryShown = 12

// View renders the kitchen tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderPrompt(),
	}
	if m.state.IsLoading(app.ResourceKitchen) {
		sections = append(sections, "  "+m.activity.View(m.now()), "")
	}
	if p := m.state.Preview(); p != nil {
		sections = append(sections, m.renderPreview(p))
	}
	sections = append(sections, m.renderRecipes())
	if g := m.state.Grocery(); g != nil {
		sections = append(sections, m.renderGrocery(g))
	}
	sections = append(sections, m.renderPantry())

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Kitchen")
	subtitle := styles.HelpStyle.Render("What can I cook with what I have?")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderPrompt() string {
	mode := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).
		Render(fmt.Sprintf("[m] %s", m.mode))

	border := styles.InputBorderStyle.Width(m.cardWidth() - 2)
	hint := styles.HelpStyle.Render("press i to type, enter to submit")
	if m.input.Focused() {
		border = border.BorderForeground(styles.Primary)
		hint = styles.HelpStyle.Render("enter to submit, esc to stop typing")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		mode,
		border.Render(m.input.View()),
		hint,
		"",
	)
}

func (m *Model) renderRecipes() string {
	recipes := m.state.Recipes()
	rows := []string{styles.CardTitleStyle.Render("Recipes")}

	if len(recipes) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No recipes yet. Type ingredients and press enter."))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	selected := m.state.SelectedIndex()
	for i, r := range recipes {
		prefix := "  "
		title := r.Title
		if i == selected {
			prefix = styles.FocusedStyle.Render("▸ ")
			title = styles.FocusedStyle.Render(title)
		}
		rows = append(rows, prefix+title+styles.HelpStyle.Render(recipeMeta(r)))
	}

	if r := m.state.SelectedRecipe(); r != nil {
		rows = append(rows, "", renderRecipeDetail(r, m.cardWidth()-6))
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// recipeMeta renders "  · 30 min · easy · Italian".
func recipeMeta(r models.Recipe) string {
	var parts []string
	if r.TotalTime != "" {
		parts = append(parts, r.TotalTime)
	} else if r.CookTime != "" {
		parts = append(parts, r.CookTime)
	}
	if r.Difficulty != "" {
		parts = append(parts, strings.ToLower(r.Difficulty))
	}
	if r.Cuisine != "" {
		parts = append(parts, r.Cuisine)
	}
	if len(parts) == 0 {
		return ""
	}
	return "  · " + strings.Join(parts, " · ")
}

func renderRecipeDetail(r *models.Recipe, width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	var lines []string
	if r.Description != "" {
		lines = append(lines, wrap.Render(r.Description), "")
	}

	lines = append(lines, styles.InfoTextStyle.Render("Ingredients"))
	for _, ing := range r.Ingredients {
		line := "  • " + ing.Name
		if ing.Quantity != "" {
			line += styles.HelpStyle.Render(" (" + ing.Quantity + ")")
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", styles.InfoTextStyle.Render("Steps"))
	for i, step := range r.Instructions {
		lines = append(lines, wrap.Render(fmt.Sprintf("  %d. %s", i+1, step)))
	}

	if n := r.Nutrition; n != nil {
		lines = append(lines, "", styles.HelpStyle.Render(fmt.Sprintf(
			"%.0f kcal · %.0fg protein · %.0fg carbs · %.0fg fat", n.Calories, n.ProteinG, n.CarbsG, n.FatG)))
	}
	lines = append(lines, "", styles.HelpStyle.Render("c: mark cooked   g: grocery list"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderPreview(p *models.DishPreview) string {
	rows := []string{styles.CardTitleStyle.Render("Dish Preview")}

	if id := p.Identification; id != nil {
		rows = append(rows, styles.StatValueStyle.Render(id.DishName))
		meta := fmt.Sprintf("%.0f%% confident", id.Confidence*100)
		if id.Cuisine != "" {
			meta = id.Cuisine + " · " + meta
		}
		rows = append(rows, styles.HelpStyle.Render(meta))
		if id.Description != "" {
			rows = append(rows, "", lipgloss.NewStyle().Width(m.cardWidth()-6).Render(id.Description))
		}
	}

	if img := p.Image; img != nil {
		size := humanize.Bytes(uint64(len(img.Base64) * 3 / 4))
		rows = append(rows, "", styles.SuccessTextStyle.Render(fmt.Sprintf("Generated image: %s, %s", img.MIMEType, size)))
	} else {
		rows = append(rows, "", styles.HelpStyle.Render("No image generated"))
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderGrocery(g *models.GroceryList) string {
	rows := []string{styles.CardTitleStyle.Render("Grocery List")}
	if len(g.Items) == 0 {
		rows = append(rows, styles.SuccessTextStyle.Render("Everything is already in the pantry"))
	}
	for _, item := range g.Items {
		line := "  □ " + item.Name
		if item.Quantity != "" {
			line += " " + styles.HelpStyle.Render(item.Quantity)
		}
		if item.Aisle != "" {
			line += styles.MutedTextStyle.Render("  [" + item.Aisle + "]")
		}
		rows = append(rows, line)
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderPantry() string {
	items := m.state.Pantry()
	rows := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Pantry (%d)", len(items)))}

	if len(items) == 0 {
		rows = append(rows, styles.HelpStyle.Render("Empty. Add items with `mise pantry add` or `mise scan`."))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	now := m.now()
	for i := range items {
		item := &items[i]
		if i == maxPantryShown {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  ...and %d more", len(items)-i)))
			break
		}
		fresh := pantry.FreshnessOf(item, now)
		rows = append(rows, fmt.Sprintf("  %-22s %s %s",
			item.Name,
			styles.MutedTextStyle.Render(fmt.Sprintf("%-8s", item.Category)),
			styles.GetFreshnessStyle(fresh).Render(expiryLabel(item, fresh, now)),
		))
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func expiryLabel(item *models.PantryItem, fresh models.Freshness, now time.Time) string {
	if fresh == models.FreshnessExpired {
		return "expired " + humanize.RelTime(item.ExpiresAt, now, "ago", "from now")
	}
	switch days := item.DaysLeft(now); days {
	case 0:
		return "use today"
	case 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

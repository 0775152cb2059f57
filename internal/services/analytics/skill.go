package analytics

import "github.com/j-veylop/mise/internal/models"

// Ladder is the skill ladder, ascending by MinDishes and starting at zero.
var Ladder = []models.SkillLevel{
	{Name: "Kitchen Newbie", MinDishes: 0},
	{Name: "Home Cook", MinDishes: 5},
	{Name: "Aspiring Chef", MinDishes: 15},
	{Name: "Skilled Cook", MinDishes: 30},
	{Name: "Master Chef", MinDishes: 50},
	{Name: "Culinary Legend", MinDishes: 100},
}

// SkillFor returns the highest rung whose threshold does not exceed total,
// and linear progress toward the next rung clamped to [0, 100].
func SkillFor(total int) models.SkillStatus {
	idx := 0
	for i, lvl := range Ladder {
		if lvl.MinDishes <= total {
			idx = i
		}
	}

	status := models.SkillStatus{Current: Ladder[idx]}
	if idx == len(Ladder)-1 {
		status.Progress = 100
		return status
	}

	next := Ladder[idx+1]
	status.Next = &next
	span := float64(next.MinDishes - status.Current.MinDishes)
	progress := float64(total-status.Current.MinDishes) * 100 / span
	status.Progress = min(max(progress, 0), 100)
	return status
}

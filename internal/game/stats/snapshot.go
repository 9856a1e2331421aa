package stats

import (
	"github.com/emberfall/engine/internal/game/stat"
)

// ModifierLine is one entry in a stat's modifier breakdown.
type ModifierLine struct {
	Source     string
	SourceName string
	Value      float64
	Percentage bool
}

// StatLine is the read-only view of one stat for sheet display.
type StatLine struct {
	ID          stat.ID
	DisplayName string
	Effective   float64
	Base        float64
	Description string
	Modifiers   []ModifierLine
}

// CategoryGroup holds the stat lines of one display category.
type CategoryGroup struct {
	Category string
	Stats    []StatLine
}

// StatusLine is the read-only view of one visible status effect.
type StatusLine struct {
	Name        string
	Type        string
	Description string
	Duration    int
}

// Sheet is the read-only all-stats snapshot exposed to presentation and
// persistence layers. Ordering is deterministic: categories in fixed order,
// stats in declaration order within each.
type Sheet struct {
	Level    int
	Groups   []CategoryGroup
	Statuses []StatusLine
}

// Snapshot builds the character sheet from current state.
func (m *Manager) Snapshot() Sheet {
	byCategory := map[stat.Category][]StatLine{}
	for _, id := range allIDs() {
		eff, err := m.EffectiveValue(id)
		if err != nil {
			continue
		}
		base, _ := m.BaseValue(id)
		line := StatLine{
			ID:          id,
			DisplayName: stat.DisplayName(id),
			Effective:   eff,
			Base:        base,
			Description: stat.Description(id),
		}
		for _, mod := range m.mods.ModifiersFor(id) {
			line.Modifiers = append(line.Modifiers, ModifierLine{
				Source:     mod.Source.String(),
				SourceName: mod.SourceName,
				Value:      mod.Value,
				Percentage: mod.Percentage,
			})
		}
		cat := stat.CategoryOf(id)
		byCategory[cat] = append(byCategory[cat], line)
	}

	sheet := Sheet{Level: m.level}
	for _, cat := range []stat.Category{
		stat.CategoryPrimary, stat.CategoryResources, stat.CategoryCombat, stat.CategoryUtility,
	} {
		sheet.Groups = append(sheet.Groups, CategoryGroup{
			Category: cat.String(),
			Stats:    byCategory[cat],
		})
	}

	for _, eff := range m.effects.Visible() {
		sheet.Statuses = append(sheet.Statuses, StatusLine{
			Name:        eff.Name,
			Type:        eff.Type.String(),
			Description: eff.Description,
			Duration:    eff.Duration,
		})
	}
	return sheet
}

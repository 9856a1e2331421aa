package stats

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/status"
)

// statValueDoc pairs a stat name with a value, keeping serialization order
// stable (maps would serialize in sorted-key order, losing declaration order).
type statValueDoc struct {
	Stat  string  `yaml:"stat"`
	Value float64 `yaml:"value"`
}

type shieldDoc struct {
	ID         string  `yaml:"id"`
	Amount     float64 `yaml:"amount"`
	DamageType string  `yaml:"damage_type,omitempty"`
	Duration   *int    `yaml:"duration,omitempty"`
}

type resistanceDoc struct {
	Key    string                   `yaml:"key"`
	Grants []status.ResistanceGrant `yaml:"grants"`
}

// managerDoc is the aggregate serialized form of a Manager. Status-owned
// modifier groups and resistance contributions are not listed separately:
// they travel inside their owning effects and are re-registered on decode.
type managerDoc struct {
	Level       int                  `yaml:"level"`
	Primaries   []statValueDoc       `yaml:"primaries"`
	Resources   []statValueDoc       `yaml:"resources"`
	Modifiers   []*modifier.Modifier `yaml:"modifiers,omitempty"`
	Groups      []*modifier.Group    `yaml:"modifier_groups,omitempty"`
	Effects     []*status.Effect     `yaml:"status_effects,omitempty"`
	Shields     []shieldDoc          `yaml:"shields,omitempty"`
	Resistances []resistanceDoc      `yaml:"resistances,omitempty"`
}

// EncodeYAML serializes the manager's full aggregate state. Output is stable
// for diffability: fixed field order, declaration-order stats, insertion-order
// collections.
func (m *Manager) EncodeYAML() ([]byte, error) {
	doc := managerDoc{Level: m.level}

	for _, p := range stat.Primaries {
		doc.Primaries = append(doc.Primaries, statValueDoc{Stat: p.String(), Value: m.primaries[p]})
	}
	for _, cur := range stat.ResourcePairs() {
		doc.Resources = append(doc.Resources, statValueDoc{Stat: cur.String(), Value: m.derivedBase[cur]})
	}

	doc.Modifiers = m.mods.Standalone()

	// Effect-owned groups serialize inside their effect, not twice.
	owned := map[string]bool{}
	for _, eff := range m.effects.Active() {
		if eff.Group != nil {
			owned[eff.Group.ID] = true
		}
	}
	for _, g := range m.mods.Groups() {
		if !owned[g.ID] {
			doc.Groups = append(doc.Groups, g)
		}
	}

	doc.Effects = m.effects.Active()

	for _, s := range m.shields {
		doc.Shields = append(doc.Shields, shieldDoc{
			ID: s.ID, Amount: s.Amount, DamageType: s.DamageType, Duration: s.Duration,
		})
	}

	// Status-registered resistance keys are rebuilt by effect re-apply.
	for _, key := range m.resistOrder {
		if len(key) >= 7 && key[:7] == "status_" {
			continue
		}
		doc.Resistances = append(doc.Resistances, resistanceDoc{Key: key, Grants: m.resistances[key]})
	}

	return yaml.Marshal(doc)
}

// DecodeYAML restores a Manager from EncodeYAML output.
//
// Restoration rebuilds state through the public mutation paths: modifiers
// and effects re-register exactly as they originally did, then stored
// resource values are applied last so recalculation cannot disturb them.
//
// Postcondition: Every effective value equals the encoded manager's.
func DecodeYAML(data []byte, cfg derive.Config, logger *zap.Logger) (*Manager, error) {
	var doc managerDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("stats: decoding aggregate: %w", err)
	}

	m := NewManager(cfg, logger)
	if doc.Level >= 1 {
		m.SetLevel(doc.Level)
	}
	for _, pv := range doc.Primaries {
		p, err := stat.ParsePrimary(pv.Stat)
		if err != nil {
			return nil, fmt.Errorf("stats: decoding aggregate: %w", err)
		}
		m.SetBaseValue(p, pv.Value)
	}
	for _, mod := range doc.Modifiers {
		m.AddModifier(mod)
	}
	for _, g := range doc.Groups {
		m.AddModifierGroup(g)
	}
	for _, eff := range doc.Effects {
		m.AddStatusEffect(eff)
	}
	for _, r := range doc.Resistances {
		m.SetResistance(r.Key, r.Grants)
	}
	for _, s := range doc.Shields {
		m.AddShield(&Shield{
			ID: s.ID, Amount: s.Amount, DamageType: s.DamageType, Duration: s.Duration,
		}, status.Replace)
	}
	for _, rv := range doc.Resources {
		d, err := stat.ParseDerived(rv.Stat)
		if err != nil {
			return nil, fmt.Errorf("stats: decoding aggregate: %w", err)
		}
		if _, err := m.SetCurrentResource(d, rv.Value); err != nil {
			return nil, fmt.Errorf("stats: decoding aggregate: %w", err)
		}
	}
	return m, nil
}

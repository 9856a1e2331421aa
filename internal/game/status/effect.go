// Package status implements named, typed, timed status effects: buffs,
// debuffs, crowd control, and damage over time. An effect may own a modifier
// group, deal periodic damage or healing, and grant typed resistances; all
// of it is created and destroyed with the effect.
package status

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/emberfall/engine/internal/game/modifier"
)

// Type classifies a status effect.
type Type int

const (
	Buff Type = iota
	Debuff
	CrowdControl
	DamageOverTime
	Special
)

var typeNames = map[Type]string{
	Buff:           "BUFF",
	Debuff:         "DEBUFF",
	CrowdControl:   "CROWD_CONTROL",
	DamageOverTime: "DAMAGE_OVER_TIME",
	Special:        "SPECIAL",
}

// String returns the canonical serialized name for the type.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "SPECIAL"
}

// ParseType maps a canonical name back to a Type.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("status: unknown effect type %q", name)
}

// MarshalYAML serializes the type by canonical name.
func (t Type) MarshalYAML() (interface{}, error) { return t.String(), nil }

// UnmarshalYAML parses a canonical type name.
func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Stacking is the policy for re-applying a same-named effect.
// The zero value is Replace, matching the default rule.
type Stacking int

const (
	Replace Stacking = iota
	Stack
	Refresh
)

var stackingNames = map[Stacking]string{
	Replace: "replace",
	Stack:   "stack",
	Refresh: "refresh",
}

// String returns the serialized rule name.
func (s Stacking) String() string {
	if n, ok := stackingNames[s]; ok {
		return n
	}
	return "replace"
}

// ParseStacking maps a rule name back to a Stacking. The empty string is the
// default rule, Replace.
func ParseStacking(name string) (Stacking, error) {
	if name == "" {
		return Replace, nil
	}
	for s, n := range stackingNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("status: unknown stacking rule %q", name)
}

// MarshalYAML serializes the rule by name.
func (s Stacking) MarshalYAML() (interface{}, error) { return s.String(), nil }

// UnmarshalYAML parses a stacking rule name.
func (s *Stacking) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStacking(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Periodic is per-tick damage or healing carried by an effect.
type Periodic struct {
	Amount     float64 `yaml:"amount"`
	DamageType string  `yaml:"damage_type,omitempty"`
	Heal       bool    `yaml:"heal,omitempty"`
}

// ResistanceGrant is one typed-resistance contribution carried by an effect:
// a percentage reduction and/or a dice pool subtracted from incoming damage
// of the given type. Contributions are additive per contributing source.
type ResistanceGrant struct {
	DamageType string  `yaml:"damage_type"`
	Percent    float64 `yaml:"percent,omitempty"`
	DicePool   string  `yaml:"dice_pool,omitempty"`
}

// Hooks names the script hooks an effect participates in. Empty names are
// skipped. Hook dispatch goes through the engine's HookRunner; the core has
// no scripting dependency.
type Hooks struct {
	OnApply  string `yaml:"on_apply,omitempty"`
	OnTick   string `yaml:"on_tick,omitempty"`
	OnRemove string `yaml:"on_remove,omitempty"`
}

// Effect is one active status effect instance.
//
// Group, Periodic, Resistances, and Hooks are all optional. The owned Group
// is exclusively this effect's: it is attached to the host when the effect
// is applied and detached when the effect ends.
type Effect struct {
	ID          string
	Name        string
	Description string
	Type        Type
	Duration    int
	Visible     bool
	Stacking    Stacking
	Group       *modifier.Group
	Periodic    *Periodic
	Resistances []ResistanceGrant
	Hooks       Hooks
}

type effectDoc struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Type        Type              `yaml:"type"`
	Duration    int               `yaml:"duration"`
	Visible     bool              `yaml:"visible"`
	Stacking    Stacking          `yaml:"stacking,omitempty"`
	Group       *modifier.Group   `yaml:"group,omitempty"`
	Periodic    *Periodic         `yaml:"periodic,omitempty"`
	Resistances []ResistanceGrant `yaml:"resistances,omitempty"`
	Hooks       *Hooks            `yaml:"hooks,omitempty"`
}

// MarshalYAML serializes the effect with enums by name and optional fields
// omitted when absent.
func (e Effect) MarshalYAML() (interface{}, error) {
	doc := effectDoc{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Type:        e.Type,
		Duration:    e.Duration,
		Visible:     e.Visible,
		Stacking:    e.Stacking,
		Group:       e.Group,
		Periodic:    e.Periodic,
		Resistances: e.Resistances,
	}
	if e.Hooks != (Hooks{}) {
		h := e.Hooks
		doc.Hooks = &h
	}
	return doc, nil
}

// UnmarshalYAML restores an effect from its serialized form.
func (e *Effect) UnmarshalYAML(value *yaml.Node) error {
	var doc effectDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	*e = Effect{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Type:        doc.Type,
		Duration:    doc.Duration,
		Visible:     doc.Visible,
		Stacking:    doc.Stacking,
		Group:       doc.Group,
		Periodic:    doc.Periodic,
		Resistances: doc.Resistances,
	}
	if doc.Hooks != nil {
		e.Hooks = *doc.Hooks
	}
	return nil
}

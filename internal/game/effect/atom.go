package effect

import (
	"fmt"

	"github.com/emberfall/engine/internal/game/status"
)

// Kind discriminates atom variants. Serialized by name in content files.
type Kind string

const (
	KindDamage         Kind = "damage"
	KindHeal           Kind = "heal"
	KindResourceChange Kind = "resource_change"
	KindBuff           Kind = "buff"
	KindDebuff         Kind = "debuff"
	KindStatusApply    Kind = "status_apply"
	KindStatusRemove   Kind = "status_remove"
	KindCleanse        Kind = "cleanse"
	KindShield         Kind = "shield"
)

// Atom is one data-driven unit of effect. Kind selects the variant; the
// other fields are read per kind:
//
//	damage:          Magnitude, DamageType
//	heal:            Magnitude, Resource (default HEALTH)
//	resource_change: Magnitude (signed), Resource
//	buff, debuff:    Name, Modifiers, Duration (0 = until removed)
//	status_apply:    Status (inline definition) or Name (registry lookup),
//	                 Duration override
//	status_remove:   Name (exact match)
//	cleanse:         StatusType filter
//	shield:          Name (pool id), Magnitude, DamageType scope,
//	                 Duration (0 = until consumed), Stacking
type Atom struct {
	Kind Kind `yaml:"kind"`

	Magnitude  *Magnitude `yaml:"magnitude,omitempty"`
	DamageType string     `yaml:"damage_type,omitempty"`
	Resource   string     `yaml:"resource,omitempty"`

	Name      string               `yaml:"name,omitempty"`
	Duration  int                  `yaml:"duration,omitempty"`
	Modifiers []status.ModifierDef `yaml:"modifiers,omitempty"`

	Status     *status.Definition `yaml:"status,omitempty"`
	StatusType string             `yaml:"status_type,omitempty"`
	Stacking   status.Stacking    `yaml:"stacking,omitempty"`
}

// Validate checks the atom's shape for its kind. Interpreters call it per
// atom; content pipelines can call it at load time for earlier feedback.
func (a *Atom) Validate() error {
	switch a.Kind {
	case KindDamage, KindHeal, KindResourceChange, KindShield:
		if err := a.Magnitude.Validate(); err != nil {
			return err
		}
	case KindBuff, KindDebuff:
		if a.Name == "" {
			return fmt.Errorf("effect: %s atom needs a name", a.Kind)
		}
		if len(a.Modifiers) == 0 {
			return fmt.Errorf("effect: %s atom %q needs modifiers", a.Kind, a.Name)
		}
	case KindStatusApply:
		if a.Status == nil && a.Name == "" {
			return fmt.Errorf("effect: status_apply atom needs an inline status or a name")
		}
	case KindStatusRemove:
		if a.Name == "" {
			return fmt.Errorf("effect: status_remove atom needs a name")
		}
	case KindCleanse:
		if _, err := status.ParseType(a.StatusType); err != nil {
			return fmt.Errorf("effect: cleanse atom: %w", err)
		}
	default:
		return fmt.Errorf("effect: unknown atom kind %q", a.Kind)
	}

	if a.Kind == KindShield && a.Name == "" {
		return fmt.Errorf("effect: shield atom needs a name to key its pool")
	}
	return nil
}

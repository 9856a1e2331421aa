// Package modifier implements stat modifiers, modifier groups sharing one
// lifecycle, and the engine that nets them into flat and percentage
// adjustments per stat.
package modifier

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/emberfall/engine/internal/game/stat"
)

// Source identifies where a modifier came from.
type Source int

const (
	SourceRacial Source = iota
	SourceClass
	SourceBackground
	SourceEquipment
	SourceSpell
	SourcePotion
	SourceCondition
	SourceEnvironment
	SourceTraining
	SourceLevelUp
	SourceNarrative
	SourceOther
)

var sourceNames = map[Source]string{
	SourceRacial:      "RACIAL",
	SourceClass:       "CLASS",
	SourceBackground:  "BACKGROUND",
	SourceEquipment:   "EQUIPMENT",
	SourceSpell:       "SPELL",
	SourcePotion:      "POTION",
	SourceCondition:   "CONDITION",
	SourceEnvironment: "ENVIRONMENT",
	SourceTraining:    "TRAINING",
	SourceLevelUp:     "LEVEL_UP",
	SourceNarrative:   "NARRATIVE",
	SourceOther:       "OTHER",
}

// String returns the canonical serialized name for the source.
func (s Source) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return "OTHER"
}

// ParseSource maps a canonical name back to a Source.
func ParseSource(name string) (Source, error) {
	for s, n := range sourceNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("modifier: unknown source %q", name)
}

// Kind classifies a modifier's intended lifetime.
type Kind int

const (
	Permanent Kind = iota
	SemiPermanent
	Temporary
)

var kindNames = map[Kind]string{
	Permanent:     "PERMANENT",
	SemiPermanent: "SEMI_PERMANENT",
	Temporary:     "TEMPORARY",
}

// String returns the canonical serialized name for the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "PERMANENT"
}

// ParseKind maps a canonical name back to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("modifier: unknown kind %q", name)
}

// Modifier is one flat or percentage adjustment to a single stat.
//
// Duration is in ticks; nil means the modifier never expires on its own.
// When Stacks is false, adding a second modifier for the same (stat,
// source name) replaces the first.
type Modifier struct {
	ID         string
	Stat       stat.ID
	Value      float64
	Source     Source
	SourceName string
	Kind       Kind
	Percentage bool
	Duration   *int
	Stacks     bool
}

// Group is a set of modifiers sharing one lifecycle: added and removed
// atomically, with the group duration authoritative over member durations.
type Group struct {
	ID       string
	Name     string
	Source   Source
	Kind     Kind
	Duration *int
	Members  []*Modifier
}

// ensureID assigns a fresh uuid when the caller left ID empty.
func (m *Modifier) ensureID() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
}

// ensureIDs assigns fresh uuids to the group and any members lacking one.
func (g *Group) ensureIDs() {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	for _, m := range g.Members {
		m.ensureID()
	}
}

// DurationTicks returns a pointer to n, for literal duration construction.
func DurationTicks(n int) *int { return &n }

// modifierDoc is the serialized form of a Modifier. Enums travel by name;
// optional fields are omitted when unset.
type modifierDoc struct {
	ID         string  `yaml:"id"`
	Stat       string  `yaml:"stat"`
	Value      float64 `yaml:"value"`
	Source     string  `yaml:"source"`
	SourceName string  `yaml:"source_name,omitempty"`
	Kind       string  `yaml:"kind"`
	Percentage bool    `yaml:"percentage,omitempty"`
	Duration   *int    `yaml:"duration,omitempty"`
	Stacks     bool    `yaml:"stacks,omitempty"`
}

// MarshalYAML serializes the modifier with enums by canonical name.
func (m Modifier) MarshalYAML() (interface{}, error) {
	return modifierDoc{
		ID:         m.ID,
		Stat:       m.Stat.String(),
		Value:      m.Value,
		Source:     m.Source.String(),
		SourceName: m.SourceName,
		Kind:       m.Kind.String(),
		Percentage: m.Percentage,
		Duration:   m.Duration,
		Stacks:     m.Stacks,
	}, nil
}

// UnmarshalYAML restores a modifier from its serialized form.
func (m *Modifier) UnmarshalYAML(value *yaml.Node) error {
	var doc modifierDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	id, err := stat.ParseID(doc.Stat)
	if err != nil {
		return err
	}
	src, err := ParseSource(doc.Source)
	if err != nil {
		return err
	}
	kind, err := ParseKind(doc.Kind)
	if err != nil {
		return err
	}
	*m = Modifier{
		ID:         doc.ID,
		Stat:       id,
		Value:      doc.Value,
		Source:     src,
		SourceName: doc.SourceName,
		Kind:       kind,
		Percentage: doc.Percentage,
		Duration:   doc.Duration,
		Stacks:     doc.Stacks,
	}
	return nil
}

type groupDoc struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Source   string      `yaml:"source"`
	Kind     string      `yaml:"kind"`
	Duration *int        `yaml:"duration,omitempty"`
	Members  []*Modifier `yaml:"members,omitempty"`
}

// MarshalYAML serializes the group, members in insertion order.
func (g Group) MarshalYAML() (interface{}, error) {
	return groupDoc{
		ID:       g.ID,
		Name:     g.Name,
		Source:   g.Source.String(),
		Kind:     g.Kind.String(),
		Duration: g.Duration,
		Members:  g.Members,
	}, nil
}

// UnmarshalYAML restores a group from its serialized form.
func (g *Group) UnmarshalYAML(value *yaml.Node) error {
	var doc groupDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	src, err := ParseSource(doc.Source)
	if err != nil {
		return err
	}
	kind, err := ParseKind(doc.Kind)
	if err != nil {
		return err
	}
	*g = Group{
		ID:       doc.ID,
		Name:     doc.Name,
		Source:   src,
		Kind:     kind,
		Duration: doc.Duration,
		Members:  doc.Members,
	}
	return nil
}

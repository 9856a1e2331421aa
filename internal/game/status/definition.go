package status

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"gopkg.in/yaml.v3"

	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
)

// ModifierDef is the content-file form of one modifier carried by a status
// effect definition. The full modifier is synthesized at instantiation time
// with CONDITION source and the definition's name.
type ModifierDef struct {
	Stat       stat.ID `yaml:"stat"`
	Value      float64 `yaml:"value"`
	Percentage bool    `yaml:"percentage,omitempty"`
}

// Definition is the static definition of a status effect, loaded from YAML.
type Definition struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Type        Type              `yaml:"type"`
	Duration    int               `yaml:"duration"`
	Hidden      bool              `yaml:"hidden,omitempty"`
	Stacking    Stacking          `yaml:"stacking,omitempty"`
	Modifiers   []ModifierDef     `yaml:"modifiers,omitempty"`
	Periodic    *Periodic         `yaml:"periodic,omitempty"`
	Resistances []ResistanceGrant `yaml:"resistances,omitempty"`
	Hooks       Hooks             `yaml:"hooks,omitempty"`
}

// Instantiate builds a fresh Effect from the definition, with new uuids and
// an owned modifier group when the definition carries modifiers.
//
// Postcondition: Returned effects from separate calls never share ids or
// group state.
func (d *Definition) Instantiate() *Effect {
	eff := &Effect{
		ID:          uuid.NewString(),
		Name:        d.Name,
		Description: d.Description,
		Type:        d.Type,
		Duration:    d.Duration,
		Visible:     !d.Hidden,
		Stacking:    d.Stacking,
		Hooks:       d.Hooks,
	}
	if d.Periodic != nil {
		p := *d.Periodic
		eff.Periodic = &p
	}
	if len(d.Resistances) > 0 {
		eff.Resistances = append([]ResistanceGrant(nil), d.Resistances...)
	}
	if len(d.Modifiers) > 0 {
		dur := d.Duration
		g := &modifier.Group{
			ID:       uuid.NewString(),
			Name:     d.Name,
			Source:   modifier.SourceCondition,
			Kind:     modifier.Temporary,
			Duration: &dur,
		}
		for _, md := range d.Modifiers {
			g.Members = append(g.Members, &modifier.Modifier{
				ID:         uuid.NewString(),
				Stat:       md.Stat,
				Value:      md.Value,
				Source:     modifier.SourceCondition,
				SourceName: d.Name,
				Kind:       modifier.Temporary,
				Percentage: md.Percentage,
				Stacks:     true,
			})
		}
		eff.Group = g
	}
	return eff
}

// Registry holds all known status effect definitions keyed by name.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def, overwriting any existing entry with the same name.
// Precondition: def must not be nil and def.Name must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[def.Name] = def
}

// Get returns the definition for name, or (nil, false) if not found.
func (r *Registry) Get(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// All returns a snapshot slice of all registered definitions.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails
// to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading status effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("parsing %q: definition has no name", path)
		}
		reg.Register(&def)
	}
	return reg, nil
}

package combat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rider is an on-hit status a damage type can inflict: landing a hit of the
// damage type rolls Chance on a d100 and, on success, applies the named
// status effect from the content registry.
type Rider struct {
	DamageType string  `yaml:"damage_type"`
	Status     string  `yaml:"status"`
	Chance     float64 `yaml:"chance"`
	// Duration overrides the status definition's duration when > 0.
	Duration int `yaml:"duration,omitempty"`
}

// RiderTable maps damage types to their riders, preserving file order.
type RiderTable struct {
	riders map[string][]Rider
	order  []string
}

type riderDoc struct {
	Riders []Rider `yaml:"riders"`
}

// NewRiderTable builds a table from rider entries.
func NewRiderTable(riders []Rider) *RiderTable {
	t := &RiderTable{riders: make(map[string][]Rider)}
	for _, r := range riders {
		if _, seen := t.riders[r.DamageType]; !seen {
			t.order = append(t.order, r.DamageType)
		}
		t.riders[r.DamageType] = append(t.riders[r.DamageType], r)
	}
	return t
}

// For returns the riders registered for a damage type, in file order.
func (t *RiderTable) For(damageType string) []Rider {
	if t == nil {
		return nil
	}
	return t.riders[damageType]
}

// Len returns the number of rider entries across all damage types.
func (t *RiderTable) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, rs := range t.riders {
		n += len(rs)
	}
	return n
}

// LoadRiderTable reads a rider table from a YAML file. Unknown fields are
// rejected so content typos surface at load time instead of as silently
// inert riders.
func LoadRiderTable(path string) (*RiderTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("combat: opening rider table: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var doc riderDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("combat: decoding rider table %s: %w", path, err)
	}
	for _, r := range doc.Riders {
		if r.DamageType == "" || r.Status == "" {
			return nil, fmt.Errorf("combat: rider table %s: entries need damage_type and status", path)
		}
		if r.Chance <= 0 || r.Chance > 100 {
			return nil, fmt.Errorf("combat: rider table %s: chance %v for %s outside (0, 100]",
				path, r.Chance, r.DamageType)
		}
	}
	return NewRiderTable(doc.Riders), nil
}

package modifier

import "github.com/emberfall/engine/internal/game/stat"

// Value is the net adjustment affecting one stat: a flat addend and a
// percentage applied after it.
type Value struct {
	Flat    float64
	Percent float64
}

// Engine holds standalone modifiers and modifier groups for one character.
// It is not safe for concurrent use; the owning stats manager serialises
// access. Insertion order is preserved so serialization is stable.
type Engine struct {
	standalone []*Modifier
	groups     []*Group
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Add inserts a standalone modifier. When m does not stack, any existing
// standalone non-stacking modifier for the same stat and source name is
// removed first, so only the newest applies.
//
// Precondition: m must not be nil.
// Postcondition: m.ID is non-empty; m is active.
func (e *Engine) Add(m *Modifier) {
	m.ensureID()
	if !m.Stacks {
		kept := e.standalone[:0]
		for _, existing := range e.standalone {
			if !existing.Stacks && existing.Stat == m.Stat && existing.SourceName == m.SourceName {
				continue
			}
			kept = append(kept, existing)
		}
		e.standalone = kept
	}
	e.standalone = append(e.standalone, m)
}

// AddGroup inserts a modifier group. When the group carries a duration it is
// authoritative: every member's duration is overwritten with the group's.
//
// Precondition: g must not be nil.
// Postcondition: g.ID and all member IDs are non-empty; the group is active.
func (e *Engine) AddGroup(g *Group) {
	g.ensureIDs()
	if g.Duration != nil {
		for _, m := range g.Members {
			d := *g.Duration
			m.Duration = &d
		}
	}
	e.groups = append(e.groups, g)
}

// Remove deletes the modifier or group with the given id. Removing a group
// removes all its members. Removing a group member individually is allowed
// (the rest of the group stays).
//
// Postcondition: Returns true iff something was removed.
func (e *Engine) Remove(id string) bool {
	for i, m := range e.standalone {
		if m.ID == id {
			e.standalone = append(e.standalone[:i], e.standalone[i+1:]...)
			return true
		}
	}
	for i, g := range e.groups {
		if g.ID == id {
			e.groups = append(e.groups[:i], e.groups[i+1:]...)
			return true
		}
		for j, m := range g.Members {
			if m.ID == id {
				g.Members = append(g.Members[:j], g.Members[j+1:]...)
				return true
			}
		}
	}
	return false
}

// RemoveBySource removes every group and standalone modifier matching the
// source type and, when name is non-empty, the source/group name. Group
// removal cascades to members.
//
// Postcondition: Returns the number of groups plus standalone modifiers removed.
func (e *Engine) RemoveBySource(src Source, name string) int {
	removed := 0

	keptGroups := e.groups[:0]
	for _, g := range e.groups {
		if g.Source == src && (name == "" || g.Name == name) {
			removed++
			continue
		}
		keptGroups = append(keptGroups, g)
	}
	e.groups = keptGroups

	kept := e.standalone[:0]
	for _, m := range e.standalone {
		if m.Source == src && (name == "" || m.SourceName == name) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	e.standalone = kept

	return removed
}

// ValueFor nets all active modifiers affecting st into a flat addend and a
// percentage. Percentage contributions are additive with each other.
func (e *Engine) ValueFor(st stat.ID) Value {
	var v Value
	for _, m := range e.standalone {
		if m.Stat == st {
			v = v.add(m)
		}
	}
	for _, g := range e.groups {
		for _, m := range g.Members {
			if m.Stat == st {
				v = v.add(m)
			}
		}
	}
	return v
}

func (v Value) add(m *Modifier) Value {
	if m.Percentage {
		v.Percent += m.Value
	} else {
		v.Flat += m.Value
	}
	return v
}

// ModifiersFor returns every active modifier affecting st, standalone first
// then group members, in insertion order. The slice is a new allocation; the
// pointed-to modifiers are shared and must not be mutated by callers.
func (e *Engine) ModifiersFor(st stat.ID) []*Modifier {
	var out []*Modifier
	for _, m := range e.standalone {
		if m.Stat == st {
			out = append(out, m)
		}
	}
	for _, g := range e.groups {
		for _, m := range g.Members {
			if m.Stat == st {
				out = append(out, m)
			}
		}
	}
	return out
}

// AffectedStats returns the set of stats any active modifier touches.
func (e *Engine) AffectedStats() map[stat.ID]struct{} {
	out := make(map[stat.ID]struct{})
	for _, m := range e.standalone {
		out[m.Stat] = struct{}{}
	}
	for _, g := range e.groups {
		for _, m := range g.Members {
			out[m.Stat] = struct{}{}
		}
	}
	return out
}

// Tick advances all durations by one tick. Groups go first: a group's
// duration is decremented, every member's duration is overwritten with the
// group's remaining value, and a group reaching 0 is removed atomically with
// all its members. Standalone modifiers then expire individually.
//
// Postcondition: Returns the ids of every removed group and standalone
// modifier (member ids of removed groups are not listed separately).
func (e *Engine) Tick() []string {
	var expired []string

	keptGroups := e.groups[:0]
	for _, g := range e.groups {
		if g.Duration == nil {
			keptGroups = append(keptGroups, g)
			continue
		}
		*g.Duration--
		for _, m := range g.Members {
			d := *g.Duration
			m.Duration = &d
		}
		if *g.Duration <= 0 {
			expired = append(expired, g.ID)
			continue
		}
		keptGroups = append(keptGroups, g)
	}
	e.groups = keptGroups

	kept := e.standalone[:0]
	for _, m := range e.standalone {
		if m.Duration == nil {
			kept = append(kept, m)
			continue
		}
		*m.Duration--
		if *m.Duration <= 0 {
			expired = append(expired, m.ID)
			continue
		}
		kept = append(kept, m)
	}
	e.standalone = kept

	return expired
}

// Standalone returns the standalone modifiers in insertion order.
// The slice is shared; callers must not mutate it.
func (e *Engine) Standalone() []*Modifier { return e.standalone }

// Groups returns the modifier groups in insertion order.
// The slice is shared; callers must not mutate it.
func (e *Engine) Groups() []*Group { return e.groups }

// Len returns the total count of active modifiers, including group members.
func (e *Engine) Len() int {
	n := len(e.standalone)
	for _, g := range e.groups {
		n += len(g.Members)
	}
	return n
}

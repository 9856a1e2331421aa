package effect

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/combat"
	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
	"github.com/emberfall/engine/internal/game/status"
)

// Outcome records one atom's application to one target, including every
// damage pipeline stage for narrative layers.
type Outcome struct {
	Target string
	Kind   Kind

	Magnitude       float64
	ShieldAbsorbed  float64
	AfterMitigation float64
	ResistDiceTotal float64
	ResistPercent   float64
	Final           float64

	// Applied names an applied status/buff/shield; Removed counts removed
	// status effects for status_remove and cleanse.
	Applied string
	Removed int

	Err error
}

// Report collects per-atom-per-target outcomes. Failures are partial: an
// atom that errors on one target still applies to the others, and later
// atoms still run.
type Report struct {
	Outcomes []Outcome
	Errors   []error
}

// Failed reports whether anything in the batch errored.
func (r *Report) Failed() bool { return len(r.Errors) > 0 }

// Interpreter applies atom sequences. It is stateless between calls.
type Interpreter struct {
	roller   *dice.Roller
	registry *status.Registry
	logger   *zap.Logger
}

// NewInterpreter creates an Interpreter. registry may be nil, restricting
// status_apply atoms to inline definitions; logger may be nil.
func NewInterpreter(roller *dice.Roller, registry *status.Registry, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{roller: roller, registry: registry, logger: logger}
}

// Apply runs every atom against every target, in order. Target selection is
// the caller's concern; the interpreter applies what it is handed.
//
// Postcondition: len(report.Outcomes) has one entry per valid atom-target
// pair; malformed atoms contribute one error and no outcomes.
func (it *Interpreter) Apply(caster *combat.Target, targets []*combat.Target, atoms []Atom) Report {
	var report Report
	var casterStats *stats.Manager
	if caster != nil {
		casterStats = caster.Stats
	}

	for i := range atoms {
		atom := &atoms[i]
		if err := atom.Validate(); err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		for _, t := range targets {
			out := Outcome{Target: t.ID, Kind: atom.Kind}
			if t.Stats == nil {
				out.Err = fmt.Errorf("%w: %q", combat.ErrTargetNotFound, t.ID)
			} else {
				it.applyOne(atom, casterStats, t, &out)
			}
			if out.Err != nil {
				report.Errors = append(report.Errors, out.Err)
			}
			report.Outcomes = append(report.Outcomes, out)
		}
	}
	return report
}

func (it *Interpreter) applyOne(a *Atom, caster *stats.Manager, t *combat.Target, out *Outcome) {
	switch a.Kind {
	case KindDamage:
		it.applyDamage(a, caster, t, out)
	case KindHeal, KindResourceChange:
		it.applyResource(a, caster, t, out)
	case KindBuff, KindDebuff:
		it.applyModifierGroup(a, t, out)
	case KindStatusApply:
		it.applyStatus(a, t, out)
	case KindStatusRemove:
		out.Removed = t.Stats.RemoveStatusEffectsByName(a.Name)
	case KindCleanse:
		// Validate guarantees the type parses.
		st, _ := status.ParseType(a.StatusType)
		out.Removed = t.Stats.RemoveStatusEffectsByType(st)
	case KindShield:
		it.applyShield(a, caster, t, out)
	}
}

// applyDamage runs the full mitigation pipeline: shields absorb first, then
// flat reduction, then resistance dice pools, then resistance percentage,
// then the rounded remainder comes off HEALTH.
func (it *Interpreter) applyDamage(a *Atom, caster *stats.Manager, t *combat.Target, out *Outcome) {
	mag, err := a.Magnitude.Resolve(caster, it.roller)
	if err != nil {
		out.Err = err
		return
	}
	out.Magnitude = mag

	absorbed, remaining := t.Stats.AbsorbDamage(a.DamageType, mag)
	out.ShieldAbsorbed = absorbed

	mitigation := stat.MagicDefense
	if combat.IsPhysical(a.DamageType) {
		mitigation = stat.DamageReduction
	}
	mit, err := t.Stats.EffectiveValue(stat.DerivedID(mitigation))
	if err != nil {
		out.Err = err
		return
	}
	after := remaining - mit
	if after < 0 {
		after = 0
	}
	out.AfterMitigation = after

	for _, pool := range t.Stats.ResistanceDice(a.DamageType) {
		roll, err := it.roller.RollExpr(pool)
		if err != nil {
			it.logger.Warn("resistance dice pool failed to parse",
				zap.String("pool", pool),
				zap.Error(err),
			)
			continue
		}
		out.ResistDiceTotal += float64(roll.Total())
	}
	after -= out.ResistDiceTotal
	if after < 0 {
		after = 0
	}

	out.ResistPercent = t.Stats.ResistancePercent(a.DamageType)
	final := math.Round(after * (1 - out.ResistPercent/100))
	if final < 0 {
		final = 0
	}
	out.Final = final

	if _, err := t.Stats.AdjustResource(stat.Health, -final); err != nil {
		out.Err = err
	}
}

func (it *Interpreter) applyResource(a *Atom, caster *stats.Manager, t *combat.Target, out *Outcome) {
	mag, err := a.Magnitude.Resolve(caster, it.roller)
	if err != nil {
		out.Err = err
		return
	}
	if a.Kind == KindHeal && mag < 0 {
		out.Err = fmt.Errorf("%w: heal magnitude %v is negative", ErrInvalidMagnitude, mag)
		return
	}
	out.Magnitude = mag

	resource, err := resolveResource(a.Resource)
	if err != nil {
		out.Err = err
		return
	}
	got, err := t.Stats.AdjustResource(resource, mag)
	if err != nil {
		out.Err = err
		return
	}
	out.Final = got
}

// resolveResource maps a content-file resource name to a current-resource
// stat, defaulting to HEALTH.
func resolveResource(name string) (stat.Derived, error) {
	if name == "" {
		return stat.Health, nil
	}
	id, err := stat.ResolveName(name)
	if err != nil {
		return 0, err
	}
	if id.Kind != stat.KindDerived || !stat.IsCurrentResource(id.Derived) {
		return 0, fmt.Errorf("effect: %q is not a current resource", name)
	}
	return id.Derived, nil
}

func (it *Interpreter) applyModifierGroup(a *Atom, t *combat.Target, out *Outcome) {
	g := &modifier.Group{
		Name:   a.Name,
		Source: modifier.SourceSpell,
		Kind:   modifier.Temporary,
	}
	if a.Duration > 0 {
		g.Duration = modifier.DurationTicks(a.Duration)
	}
	for _, md := range a.Modifiers {
		g.Members = append(g.Members, &modifier.Modifier{
			Stat:       md.Stat,
			Value:      md.Value,
			Percentage: md.Percentage,
			Source:     modifier.SourceSpell,
			SourceName: a.Name,
			Kind:       modifier.Temporary,
			Stacks:     true,
		})
	}
	t.Stats.AddModifierGroup(g)
	out.Applied = a.Name
}

func (it *Interpreter) applyStatus(a *Atom, t *combat.Target, out *Outcome) {
	def := a.Status
	if def == nil {
		if it.registry == nil {
			out.Err = fmt.Errorf("effect: status_apply %q without a registry", a.Name)
			return
		}
		found, ok := it.registry.Get(a.Name)
		if !ok {
			out.Err = fmt.Errorf("effect: unknown status effect %q", a.Name)
			return
		}
		def = found
	}
	eff := def.Instantiate()
	if a.Duration > 0 {
		eff.Duration = a.Duration
		if eff.Group != nil {
			eff.Group.Duration = modifier.DurationTicks(a.Duration)
		}
	}
	if t.Stats.AddStatusEffect(eff) {
		out.Applied = eff.Name
	}
}

func (it *Interpreter) applyShield(a *Atom, caster *stats.Manager, t *combat.Target, out *Outcome) {
	mag, err := a.Magnitude.Resolve(caster, it.roller)
	if err != nil {
		out.Err = err
		return
	}
	if mag <= 0 {
		out.Err = fmt.Errorf("%w: shield magnitude %v must be positive", ErrInvalidMagnitude, mag)
		return
	}
	out.Magnitude = mag

	s := &stats.Shield{ID: a.Name, Amount: mag, DamageType: a.DamageType}
	if a.Duration > 0 {
		s.Duration = modifier.DurationTicks(a.Duration)
	}
	t.Stats.AddShield(s, a.Stacking)
	out.Applied = a.Name
}

package combat

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/status"
)

// ErrMissingStats flags a target handle without a stats manager. That is a
// programming error in the calling layer, not a gameplay outcome: the action
// aborts with no mutation.
var ErrMissingStats = errors.New("combat: target has no stats manager")

// Config holds the tunable combat constants.
type Config struct {
	// DefendBaseBonus is the flat DEFENSE bonus a defend action grants
	// before the defensive skill is added.
	DefendBaseBonus float64
}

// DefaultConfig returns the shipped combat constants.
func DefaultConfig() Config {
	return Config{DefendBaseBonus: 2}
}

// Resolver resolves combat actions. It is stateless between actions; all
// character state lives in the targets' stats managers.
type Resolver struct {
	roller   *dice.Roller
	riders   *RiderTable
	registry *status.Registry
	cfg      Config
	logger   *zap.Logger
}

// NewResolver creates a Resolver. riders and registry may be nil, disabling
// on-hit rider statuses; logger may be nil.
func NewResolver(roller *dice.Roller, riders *RiderTable, registry *status.Registry, cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{roller: roller, riders: riders, registry: registry, cfg: cfg, logger: logger}
}

// ResolveAttack runs one attack through the full pipeline:
//
//	roll to hit → (miss | hit → roll damage → mitigate → apply) → result
//
// A natural 20 always hits and rolls the damage dice twice; a natural 1
// always misses. Otherwise the attack hits iff roll + attack bonus >= the
// defender's DEFENSE. Damage is mitigated by flat damage reduction
// (physical types) or magic defense (everything else), then by the
// defender's percentage resistance, rounded, clamped at 0, and subtracted
// from current HEALTH.
//
// Postcondition: On any returned error, no target state was mutated.
func (r *Resolver) ResolveAttack(a AttackAction) (*AttackResult, error) {
	if a.Attacker == nil || a.Defender == nil {
		return nil, fmt.Errorf("%w: attack needs an attacker and a defender", ErrTargetNotFound)
	}
	if a.Attacker.Stats == nil || a.Defender.Stats == nil {
		r.logger.Error("attack aborted: target handle without stats manager",
			zap.String("attacker", a.Attacker.ID),
			zap.String("defender", a.Defender.ID),
		)
		return nil, ErrMissingStats
	}
	switch a.AttackStat {
	case stat.MeleeAttack, stat.RangedAttack, stat.MagicAttack:
	default:
		return nil, fmt.Errorf("combat: %s is not an attack stat", a.AttackStat)
	}
	expr, err := dice.Parse(a.DamageDice)
	if err != nil {
		return nil, fmt.Errorf("combat: damage dice: %w", err)
	}

	bonus, err := a.Attacker.Stats.EffectiveValue(stat.DerivedID(a.AttackStat))
	if err != nil {
		return nil, err
	}
	defense, err := a.Defender.Stats.EffectiveValue(stat.DerivedID(stat.Defense))
	if err != nil {
		return nil, err
	}

	roll := r.roller.RollD20(a.Advantage, a.Disadvantage)
	res := &AttackResult{
		Roll:        roll,
		AttackBonus: bonus,
		AttackTotal: float64(roll.Used) + bonus,
		Defense:     defense,
		Critical:    roll.Used == 20,
		Fumble:      roll.Used == 1,
	}
	switch {
	case res.Critical:
		res.Hit = true
	case res.Fumble:
		res.Hit = false
	default:
		res.Hit = res.AttackTotal >= defense
	}

	if !res.Hit {
		r.logger.Info("attack missed",
			zap.String("attacker", a.Attacker.Name),
			zap.String("defender", a.Defender.Name),
			zap.Int("roll", roll.Used),
			zap.Float64("total", res.AttackTotal),
			zap.Float64("defense", defense),
			zap.Bool("fumble", res.Fumble),
		)
		return res, nil
	}

	first := r.roller.Roll(expr)
	res.DamageRolls = append(res.DamageRolls, first)
	raw := float64(first.Total())
	if res.Critical {
		// Critical hits reroll the dice, not the static modifier.
		bonusDice := expr
		bonusDice.Modifier = 0
		second := r.roller.Roll(bonusDice)
		res.DamageRolls = append(res.DamageRolls, second)
		raw += float64(second.Total())
	}
	raw += bonus
	res.RawDamage = raw

	mitigation := stat.MagicDefense
	if IsPhysical(a.DamageType) {
		mitigation = stat.DamageReduction
	}
	mit, err := a.Defender.Stats.EffectiveValue(stat.DerivedID(mitigation))
	if err != nil {
		return nil, err
	}
	after := raw - mit
	if after < 0 {
		after = 0
	}
	res.AfterMitigation = after

	res.ResistPercent = a.Defender.Stats.ResistancePercent(a.DamageType)
	final := math.Round(after * (1 - res.ResistPercent/100))
	if final < 0 {
		final = 0
	}
	res.FinalDamage = final

	remaining, err := a.Defender.Stats.AdjustResource(stat.Health, -final)
	if err != nil {
		return nil, err
	}
	res.HealthRemaining = remaining
	res.Defeated = remaining <= 0

	res.RidersApplied = r.applyRiders(a.Defender, a.DamageType)

	r.logger.Info("attack hit",
		zap.String("attacker", a.Attacker.Name),
		zap.String("defender", a.Defender.Name),
		zap.Int("roll", roll.Used),
		zap.Bool("critical", res.Critical),
		zap.Float64("raw_damage", res.RawDamage),
		zap.Float64("after_mitigation", res.AfterMitigation),
		zap.Float64("resist_percent", res.ResistPercent),
		zap.Float64("final_damage", res.FinalDamage),
		zap.Float64("health_remaining", remaining),
		zap.Bool("defeated", res.Defeated),
		zap.Strings("riders", res.RidersApplied),
	)
	return res, nil
}

// applyRiders rolls each configured rider for the damage type and applies
// the ones that land.
func (r *Resolver) applyRiders(defender *Target, damageType string) []string {
	if r.riders == nil || r.registry == nil {
		return nil
	}
	var applied []string
	for _, rider := range r.riders.For(damageType) {
		chance := r.roller.Source().Intn(100) + 1
		if float64(chance) > rider.Chance {
			continue
		}
		def, ok := r.registry.Get(rider.Status)
		if !ok {
			r.logger.Warn("rider names unknown status effect",
				zap.String("damage_type", damageType),
				zap.String("status", rider.Status),
			)
			continue
		}
		eff := def.Instantiate()
		if rider.Duration > 0 {
			eff.Duration = rider.Duration
			if eff.Group != nil {
				eff.Group.Duration = modifier.DurationTicks(rider.Duration)
			}
		}
		if defender.Stats.AddStatusEffect(eff) {
			applied = append(applied, eff.Name)
		}
	}
	return applied
}

// ResolveDefend applies a one-turn defensive stance: a BUFF status effect
// whose owned modifier group adds DefendBaseBonus + floor(defensiveSkill)
// to DEFENSE until the defender's next turn.
func (r *Resolver) ResolveDefend(target *Target, defensiveSkill float64) (*DefendResult, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: defend needs a target", ErrTargetNotFound)
	}
	if target.Stats == nil {
		r.logger.Error("defend aborted: target handle without stats manager",
			zap.String("target", target.ID),
		)
		return nil, ErrMissingStats
	}

	bonus := r.cfg.DefendBaseBonus + math.Floor(defensiveSkill)
	eff := &status.Effect{
		Name:        "defending",
		Description: "Braced for incoming attacks.",
		Type:        status.Buff,
		Duration:    1,
		Visible:     true,
		Group: &modifier.Group{
			Name:     "defending",
			Source:   modifier.SourceCondition,
			Kind:     modifier.Temporary,
			Duration: modifier.DurationTicks(1),
			Members: []*modifier.Modifier{{
				Stat:       stat.DerivedID(stat.Defense),
				Value:      bonus,
				Source:     modifier.SourceCondition,
				SourceName: "defending",
				Kind:       modifier.Temporary,
				Stacks:     true,
			}},
		},
	}
	if !target.Stats.AddStatusEffect(eff) {
		return nil, fmt.Errorf("combat: defend effect was not applied to %s", target.ID)
	}

	r.logger.Info("defend stance",
		zap.String("target", target.Name),
		zap.Float64("bonus", bonus),
	)
	return &DefendResult{Bonus: bonus, EffectID: eff.ID}, nil
}

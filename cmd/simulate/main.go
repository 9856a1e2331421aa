// Package main provides the simulate binary: it loads the rules content,
// builds two characters, and runs an attack-by-attack duel until one side
// falls, logging every resolution stage.
package main

import (
	"flag"
	"fmt"
	"log"
	mrand "math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/config"
	"github.com/emberfall/engine/internal/game/combat"
	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
	"github.com/emberfall/engine/internal/game/status"
	"github.com/emberfall/engine/internal/observability"
	"github.com/emberfall/engine/internal/scripting"
)

type duelist struct {
	target     *combat.Target
	damageDice string
	damageType string
	attackStat stat.Derived
}

func main() {
	configPath := flag.String("config", "configs/simulate.yaml", "path to configuration file")
	maxRounds := flag.Int("rounds", 50, "maximum combat rounds before calling a draw")
	seed := flag.Int64("seed", 0, "deterministic dice seed; 0 = crypto randomness")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if *seed != 0 {
		src = mrand.New(mrand.NewSource(*seed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	// Load content
	start := time.Now()
	registry, err := status.LoadDirectory(cfg.Content.StatusDir)
	if err != nil {
		logger.Fatal("loading status effect definitions", zap.Error(err))
	}
	riders, err := combat.LoadRiderTable(cfg.Content.RiderTable)
	if err != nil {
		logger.Fatal("loading rider table", zap.Error(err))
	}
	scripts := scripting.NewManager(roller, registry, logger)
	defer scripts.Close()
	scripts.SetInstructionLimit(cfg.Scripting.InstructionLimit)
	if err := scripts.LoadDirectory(cfg.Content.ScriptsDir); err != nil {
		logger.Fatal("loading hook scripts", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("status_effects", len(registry.All())),
		zap.Int("riders", riders.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	rules := cfg.Rules.DeriveConfig()

	marn := newDuelist("Marn", "red", rules, logger, scripts, map[stat.Primary]float64{
		stat.Strength:     15,
		stat.Constitution: 14,
		stat.Dexterity:    12,
	})
	marn.damageDice = "1d8+1"
	marn.damageType = "slashing"
	marn.attackStat = stat.MeleeAttack

	sera := newDuelist("Sera", "blue", rules, logger, scripts, map[stat.Primary]float64{
		stat.Intelligence: 15,
		stat.Will:         14,
		stat.Dexterity:    13,
	})
	sera.damageDice = "2d6"
	sera.damageType = "fire"
	sera.attackStat = stat.MagicAttack

	resolver := combat.NewResolver(roller, riders, registry, cfg.Combat.ResolverConfig(), logger)

	winner := runDuel(resolver, marn, sera, *maxRounds, logger)
	if winner == nil {
		fmt.Println("Draw: round limit reached.")
		return
	}
	fmt.Printf("%s wins.\n", winner.target.Name)
	printSheet(winner.target.Stats)
}

func newDuelist(name, side string, rules derive.Config, logger *zap.Logger, scripts *scripting.Manager, primaries map[stat.Primary]float64) *duelist {
	sm := stats.NewManager(rules, logger.Named(name))
	sm.SetHookRunner(scripts.RunnerFor(sm))
	for p, v := range primaries {
		sm.SetBaseValue(p, v)
	}
	return &duelist{
		target: &combat.Target{
			ID:    uuid.NewString(),
			Name:  name,
			Side:  side,
			Stats: sm,
		},
	}
}

func runDuel(resolver *combat.Resolver, a, b *duelist, maxRounds int, logger *zap.Logger) *duelist {
	for round := 1; round <= maxRounds; round++ {
		logger.Info("round begins", zap.Int("round", round))

		for _, pair := range [][2]*duelist{{a, b}, {b, a}} {
			attacker, defender := pair[0], pair[1]
			result, err := resolver.ResolveAttack(combat.AttackAction{
				Attacker:   attacker.target,
				Defender:   defender.target,
				AttackStat: attacker.attackStat,
				DamageDice: attacker.damageDice,
				DamageType: attacker.damageType,
			})
			if err != nil {
				logger.Error("attack resolution failed", zap.Error(err))
				os.Exit(1)
			}
			narrate(attacker, defender, result)
			if result.Defeated {
				return attacker
			}
		}

		for _, d := range []*duelist{a, b} {
			for _, id := range d.target.Stats.TickDurations() {
				logger.Debug("status effect expired",
					zap.String("target", d.target.Name),
					zap.String("effect_id", id),
				)
			}
			if hp, err := d.target.Stats.CurrentResource(stat.Health); err == nil && hp <= 0 {
				other := a
				if d == a {
					other = b
				}
				return other
			}
		}
	}
	return nil
}

func narrate(attacker, defender *duelist, r *combat.AttackResult) {
	switch {
	case r.Critical:
		fmt.Printf("%s crits %s for %g %s damage (%g remaining)\n",
			attacker.target.Name, defender.target.Name, r.FinalDamage, attacker.damageType, r.HealthRemaining)
	case r.Hit:
		fmt.Printf("%s hits %s for %g %s damage (%g remaining)\n",
			attacker.target.Name, defender.target.Name, r.FinalDamage, attacker.damageType, r.HealthRemaining)
	case r.Fumble:
		fmt.Printf("%s fumbles against %s\n", attacker.target.Name, defender.target.Name)
	default:
		fmt.Printf("%s misses %s (rolled %d+%g vs %g)\n",
			attacker.target.Name, defender.target.Name, r.Roll.Used, r.AttackBonus, r.Defense)
	}
	for _, name := range r.RidersApplied {
		fmt.Printf("  %s is now %s\n", defender.target.Name, name)
	}
}

func printSheet(m *stats.Manager) {
	sheet := m.Snapshot()
	for _, group := range sheet.Groups {
		fmt.Printf("%s:\n", group.Category)
		for _, line := range group.Stats {
			fmt.Printf("  %-18s %g\n", line.DisplayName, line.Effective)
		}
	}
}

package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every roll leaves a debug-level audit
// line with expression, dice values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil; logger may be nil (a no-op logger is
// substituted).
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// RollD20 draws an advantage-aware d20 and logs the audit trail.
func (r *Roller) RollD20(advantage, disadvantage bool) D20Roll {
	roll := RollD20(r.src, advantage, disadvantage)
	r.logger.Debug("d20 roll",
		zap.Ints("rolls", roll.Rolls),
		zap.Int("used", roll.Used),
		zap.Bool("advantage", advantage),
		zap.Bool("disadvantage", disadvantage),
	)
	return roll
}

package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolling.
// All range rolls, chance gates and raw draws are logged at debug level.
//
// Roller itself satisfies Source, so it can be handed to the combat engine
// wherever raw randomness is expected.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced by a no-op logger.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("range roll",
		zap.String("expression", result.Expression),
		zap.Int("value", result.Value),
		zap.Int("multiplier", result.Multiplier),
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

// Chance draws a chance gate for label with probability p and logs the draw.
func (r *Roller) Chance(label string, p float64) bool {
	draw := r.src.Float64()
	hit := draw < p
	r.logger.Debug("chance gate",
		zap.String("gate", label),
		zap.Float64("p", p),
		zap.Float64("draw", draw),
		zap.Bool("hit", hit),
	)
	return hit
}

// Intn draws from the wrapped Source and logs the draw.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("draw", zap.Int("n", n), zap.Int("value", v))
	return v
}

// Float64 draws from the wrapped Source and logs the draw.
func (r *Roller) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("draw", zap.Float64("value", v))
	return v
}

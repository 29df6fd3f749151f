package dice

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse (0 <= Min <= Max); src must be non-nil.
// Postcondition: result.Value is in [expr.Min, expr.Max];
// result.Total() == result.Value * expr.Multiplier.
func Roll(expr Expression, src Source) RollResult {
	value := expr.Min
	if span := expr.Max - expr.Min + 1; span > 1 {
		value += src.Intn(span)
	}
	mult := expr.Multiplier
	if mult < 1 {
		mult = 1
	}
	return RollResult{
		Expression: expr.Raw,
		Value:      value,
		Multiplier: mult,
	}
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: expr must be a valid range expression string; src must be non-nil.
// Postcondition: Returns a RollResult or a parse error.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// Chance reports whether a uniform draw from src falls below p.
// p <= 0 never succeeds and p >= 1 always succeeds, but a draw is consumed either way.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

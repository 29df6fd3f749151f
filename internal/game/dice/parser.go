package dice

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Expression represents a parsed range expression ready to be rolled.
// Precondition: 0 <= Min <= Max and Multiplier >= 1 after successful Parse.
type Expression struct {
	Raw        string // original input string
	Min        int    // inclusive lower bound
	Max        int    // inclusive upper bound
	Multiplier int    // applied to the drawn value, e.g. 3 for "18-30x3"
}

// IsZero reports whether e is the zero Expression (no roll configured).
func (e Expression) IsZero() bool {
	return e.Raw == "" && e.Max == 0
}

// Parse parses a range expression string into an Expression.
// Supported forms: "15", "15-28", "18-30x3".
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	raw := expr
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))

	mult := 1
	if xIdx := strings.Index(s, "x"); xIdx >= 0 {
		m, err := strconv.Atoi(s[xIdx+1:])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid multiplier in %q: %w", raw, err)
		}
		if m < 1 {
			return Expression{}, fmt.Errorf("dice: invalid multiplier in %q: must be >= 1", raw)
		}
		mult = m
		s = s[:xIdx]
	}

	lo, hi := s, s
	if dash := strings.Index(s, "-"); dash >= 0 {
		lo, hi = s[:dash], s[dash+1:]
	}
	lower, err := strconv.Atoi(lo)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid lower bound in %q: %w", raw, err)
	}
	upper, err := strconv.Atoi(hi)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid upper bound in %q: %w", raw, err)
	}
	if lower < 0 {
		return Expression{}, fmt.Errorf("dice: lower bound in %q must be >= 0", raw)
	}
	if upper < lower {
		return Expression{}, fmt.Errorf("dice: upper bound %d below lower bound %d in %q", upper, lower, raw)
	}

	return Expression{
		Raw:        raw,
		Min:        lower,
		Max:        upper,
		Multiplier: mult,
	}, nil
}

// MustParse parses expr and panics on error. Useful for package-level tables.
//
// Precondition: expr must be a valid range expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// UnmarshalYAML lets expressions be written as plain scalars in YAML content.
func (e *Expression) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = parsed
	return nil
}

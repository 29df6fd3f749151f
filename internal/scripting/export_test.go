package scripting

// Exported for scripting_test.
var (
	WithBudget     = withBudget
	EffectiveLimit = effectiveLimit
)

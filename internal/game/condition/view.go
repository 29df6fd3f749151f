package condition

// Active is a display row for one active status.
type Active struct {
	Kind    Kind
	Name    string
	Short   string
	Turns   int
	Harmful bool
}

// Describe lists the active statuses in s with their display names, in decrement order.
// Kinds without a registered Def are listed by identifier.
func (r *Registry) Describe(s Set) []Active {
	var out []Active
	for _, k := range s.Active() {
		row := Active{Kind: k, Name: k.String(), Short: k.String(), Turns: s.Get(k)}
		if d, ok := r.Get(k); ok {
			row.Name = d.Name
			row.Short = d.Short
			row.Harmful = d.Harmful
		}
		out = append(out, row)
	}
	return out
}

package condition

// Set holds the remaining duration, in turns, of every Kind on one character.
// The zero value is an empty Set. Set is a plain value: copying it copies every duration.
//
// Invariant: every duration is >= 0.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	turns [numKinds]int
}

// Get returns the remaining turns for k, or 0 when k is unknown or inactive.
func (s *Set) Get(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return s.turns[k]
}

// Has reports whether k has at least one turn remaining.
func (s *Set) Has(k Kind) bool {
	return s.Get(k) > 0
}

// Extend applies k with extend-if-greater semantics.
//
// Postcondition: Get(k) == max(previous, turns). Returns true when the duration grew.
func (s *Set) Extend(k Kind, turns int) bool {
	if !k.Valid() || turns <= s.turns[k] {
		return false
	}
	s.turns[k] = turns
	return true
}

// Set overwrites the duration of k. Negative values are stored as 0.
func (s *Set) Set(k Kind, turns int) {
	if !k.Valid() {
		return
	}
	s.turns[k] = max(0, turns)
}

// Consume removes one turn from k if any remain.
func (s *Set) Consume(k Kind) {
	if s.Has(k) {
		s.turns[k]--
	}
}

// DecrementAll removes one turn from every active Kind.
//
// Postcondition: no duration goes below 0.
func (s *Set) DecrementAll() {
	for k := range s.turns {
		if s.turns[k] > 0 {
			s.turns[k]--
		}
	}
}

// Clear resets every duration to 0.
func (s *Set) Clear() {
	s.turns = [numKinds]int{}
}

// Active returns the Kinds with turns remaining, in decrement order.
func (s *Set) Active() []Kind {
	var out []Kind
	for k, n := range s.turns {
		if n > 0 {
			out = append(out, Kind(k))
		}
	}
	return out
}

// Empty reports whether no Kind is active.
func (s *Set) Empty() bool {
	return s.turns == [numKinds]int{}
}

package domain

import "maps"

// LetterTotals accumulates per-letter scores for one respondent.
// A letter is present only once it has been credited, so an explicit zero
// and an absent key are distinguishable.
type LetterTotals map[Letter]float64

// Clone returns an independent copy of t. A nil receiver yields an empty,
// non-nil map.
func (t LetterTotals) Clone() LetterTotals {
	out := make(LetterTotals, len(t))
	maps.Copy(out, t)
	return out
}

// Add returns a copy of t with delta credited to l.
func (t LetterTotals) Add(l Letter, delta float64) LetterTotals {
	out := t.Clone()
	out[l] += delta
	return out
}

// Get returns the score for l, or zero when l was never credited.
func (t LetterTotals) Get(l Letter) float64 { return t[l] }

// Equal reports whether t and other hold the same keys with the same values.
// Key order is irrelevant; a key present with value zero is not equal to an
// absent key.
func (t LetterTotals) Equal(other LetterTotals) bool {
	return maps.Equal(t, other)
}

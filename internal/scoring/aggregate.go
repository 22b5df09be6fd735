package scoring

import (
	"math"

	"github.com/ahrav/go-persona/internal/domain"
)

// Apply returns totals with the credit of scheme for position added. The
// input is not modified. A scheme that does not match leaves the totals as
// they were.
func Apply(totals domain.LetterTotals, scheme Scheme, position float64) domain.LetterTotals {
	out := totals.Clone()
	if scheme == nil {
		return out
	}
	deltas, _ := scheme.Credit(position)
	for _, d := range deltas {
		out[d.Letter] += d.Value
	}
	return out
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

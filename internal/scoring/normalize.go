// Package scoring turns raw answers into per-letter totals. It understands
// every scoring-schema shape found in question banks and never fails on
// malformed per-answer data: bad input degrades to a best-effort position or to
// no credit at all.
package scoring

import (
	"math"

	"github.com/spf13/cast"
)

// NormalizeOption turns an untrusted answer value into an option position.
// optionCount <= 0 means the question's option count is unknown.
//
// Integers already in range are returned unchanged. With a known count, an
// integer equal to the count is read as a 1-based pick of the last option
// and larger positive integers are read as 1-based and clamped. With an
// unknown count any non-negative integer is accepted and negatives become 0.
// Everything else, including negative integers against a known count, is
// coerced to a number (0 on failure) and returned as is, so the position may
// be negative, fractional or past the last option. Schemes that index by
// option give such positions no credit; the dimension fallback compares them
// with its midpoint.
func NormalizeOption(chosen any, optionCount int) float64 {
	known := optionCount > 0

	if n, ok := asInteger(chosen); ok {
		switch {
		case !known && n < 0:
			return 0
		case !known:
			return float64(n)
		case n >= 0 && n < int64(optionCount):
			return float64(n)
		case n == int64(optionCount):
			return float64(optionCount - 1)
		case n > 0:
			return float64(clampInt(n-1, 0, int64(optionCount-1)))
		}
		// Negative with a known count is coerced like any other value.
	}

	f, err := cast.ToFloat64E(chosen)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	if !known && f < 0 {
		return 0
	}
	return f
}

// asInteger reports whether v is an integer-valued number. Whole floats
// count, since JSON decoding produces float64 for every number. Strings and
// booleans do not.
func asInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return clampUint(uint64(n)), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return clampUint(n), true
	case float32:
		return wholeFloat(float64(n))
	case float64:
		return wholeFloat(n)
	}
	return 0, false
}

func wholeFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int64(f), true
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt32 {
		return math.MaxInt32
	}
	return int64(u)
}

func clampInt(n, lo, hi int64) int {
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return int(n)
}

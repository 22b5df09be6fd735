package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOption(t *testing.T) {
	tests := []struct {
		name   string
		chosen any
		n      int
		want   float64
	}{
		// In-range integers are untouched.
		{name: "zero", chosen: 0, n: 4, want: 0},
		{name: "last index", chosen: 3, n: 4, want: 3},
		{name: "json float", chosen: float64(2), n: 4, want: 2},
		{name: "int64", chosen: int64(1), n: 2, want: 1},
		{name: "uint8", chosen: uint8(1), n: 2, want: 1},

		// Known count, out of range: read as 1-based.
		{name: "equal to count", chosen: 4, n: 4, want: 3},
		{name: "one past count", chosen: 5, n: 4, want: 3},
		{name: "far past count", chosen: 9, n: 4, want: 3},
		{name: "huge", chosen: uint64(math.MaxUint64), n: 3, want: 2},

		// Unknown count.
		{name: "unknown count keeps index", chosen: 7, n: 0, want: 7},
		{name: "unknown count negative", chosen: -3, n: 0, want: 0},
		{name: "unknown count negative fraction", chosen: -0.5, n: 0, want: 0},
		{name: "unknown count fraction kept", chosen: 2.5, n: 0, want: 2.5},
		{name: "negative count is unknown", chosen: 5, n: -1, want: 5},

		// Coercion path keeps the coerced value.
		{name: "negative with known count", chosen: -2, n: 4, want: -2},
		{name: "numeric string", chosen: "2", n: 4, want: 2},
		{name: "numeric string past count", chosen: "9", n: 4, want: 9},
		{name: "fractional float kept", chosen: 1.7, n: 4, want: 1.7},
		{name: "fractional string kept", chosen: "2.9", n: 4, want: 2.9},
		{name: "negative fraction kept", chosen: -0.5, n: 4, want: -0.5},
		{name: "negative string kept", chosen: "-4", n: 4, want: -4},
		{name: "true", chosen: true, n: 4, want: 1},
		{name: "false", chosen: false, n: 4, want: 0},
		{name: "nil", chosen: nil, n: 4, want: 0},
		{name: "garbage string", chosen: "banana", n: 4, want: 0},
		{name: "NaN", chosen: math.NaN(), n: 4, want: 0},
		{name: "struct", chosen: struct{}{}, n: 4, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOption(tt.chosen, tt.n))
		})
	}
}

func TestNormalizeOption_Infinity(t *testing.T) {
	assert.True(t, math.IsInf(NormalizeOption(math.Inf(1), 4), 1))
	assert.True(t, math.IsInf(NormalizeOption(math.Inf(-1), 4), -1))
	assert.Equal(t, 0.0, NormalizeOption(math.Inf(-1), 0))
}

func TestNormalizeOption_Properties(t *testing.T) {
	for n := 1; n <= 10; n++ {
		for i := 0; i < n; i++ {
			assert.Equal(t, float64(i), NormalizeOption(i, n), "in-range identity n=%d i=%d", n, i)
		}
		assert.Equal(t, float64(n-1), NormalizeOption(n, n), "count maps to last n=%d", n)
		assert.Equal(t, float64(n-1), NormalizeOption(n+5, n), "overflow clamps to last n=%d", n)
		assert.Equal(t, float64(n-1), NormalizeOption(1e9, n), "whole float clamps n=%d", n)

		for _, v := range []any{-10, "x", nil, 3.5, "-4", true, -0.25} {
			assert.GreaterOrEqual(t, NormalizeOption(v, 0), 0.0, "unknown count floors v=%v", v)
		}
	}
}

func TestOptionSlot(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		limit    int
		want     int
		ok       bool
	}{
		{name: "first", position: 0, limit: 2, want: 0, ok: true},
		{name: "last", position: 1, limit: 2, want: 1, ok: true},
		{name: "past end", position: 2, limit: 2},
		{name: "negative", position: -1, limit: 2},
		{name: "fraction", position: 0.7, limit: 2},
		{name: "infinity", position: math.Inf(1), limit: 2},
		{name: "NaN", position: math.NaN(), limit: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := optionSlot(tt.position, tt.limit)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

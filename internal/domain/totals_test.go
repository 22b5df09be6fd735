package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterTotals_CloneIsIndependent(t *testing.T) {
	orig := LetterTotals{LetterE: 1}
	clone := orig.Clone()
	clone[LetterE] = 5
	clone[LetterI] = 1

	assert.Equal(t, 1.0, orig[LetterE])
	assert.NotContains(t, orig, LetterI)

	var nilTotals LetterTotals
	assert.NotNil(t, nilTotals.Clone())
}

func TestLetterTotals_Add(t *testing.T) {
	orig := LetterTotals{LetterT: 1}
	got := orig.Add(LetterT, 2).Add(LetterF, 0)

	assert.Equal(t, 3.0, got.Get(LetterT))
	assert.Contains(t, got, LetterF, "a zero credit still records the key")
	assert.Equal(t, 1.0, orig.Get(LetterT), "Add must not mutate the receiver")
	assert.Zero(t, orig.Get(LetterJ))
}

func TestLetterTotals_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b LetterTotals
		want bool
	}{
		{name: "same keys and values", a: LetterTotals{LetterE: 1, LetterN: 2}, b: LetterTotals{LetterN: 2, LetterE: 1}, want: true},
		{name: "different value", a: LetterTotals{LetterE: 1}, b: LetterTotals{LetterE: 2}, want: false},
		{name: "explicit zero differs from absent", a: LetterTotals{LetterE: 0}, b: LetterTotals{}, want: false},
		{name: "nil equals empty", a: nil, b: LetterTotals{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

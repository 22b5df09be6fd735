package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideType(t *testing.T) {
	tests := []struct {
		name   string
		totals LetterTotals
		want   string
	}{
		{name: "empty totals tie everywhere", totals: LetterTotals{}, want: "INFP"},
		{name: "nil totals", totals: nil, want: "INFP"},
		{
			name:   "first letters win",
			totals: LetterTotals{LetterE: 3, LetterS: 2, LetterT: 1, LetterJ: 0.5},
			want:   "ESTJ",
		},
		{
			name:   "second letters win",
			totals: LetterTotals{LetterI: 1, LetterN: 1, LetterF: 1, LetterP: 1},
			want:   "INFP",
		},
		{
			name:   "explicit ties resolve to second letter",
			totals: LetterTotals{LetterE: 2, LetterI: 2, LetterS: 1, LetterN: 1, LetterT: 4, LetterF: 4, LetterJ: 0, LetterP: 0},
			want:   "INFP",
		},
		{
			name:   "mixed",
			totals: LetterTotals{LetterE: 1, LetterN: 2, LetterT: 5, LetterF: 1, LetterP: 3},
			want:   "ENTP",
		},
		{
			name:   "negative totals compare normally",
			totals: LetterTotals{LetterE: -1, LetterI: -2},
			want:   "ENFP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideType(tt.totals)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 4)
			assert.True(t, ValidTypeCode(got))
		})
	}
}

func TestDecideType_TieOnEachPair(t *testing.T) {
	for i, p := range Pairs {
		t.Run(string(p.First)+string(p.Second), func(t *testing.T) {
			// Break every other pair towards its first letter so only this
			// pair ties.
			totals := LetterTotals{}
			for j, other := range Pairs {
				if j != i {
					totals[other.First] = 1
				}
			}
			totals[p.First] = 2
			totals[p.Second] = 2

			got := DecideType(totals)
			assert.Equal(t, string(p.Second), got[i:i+1])
		})
	}
}

func TestValidTypeCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"INTJ", true},
		{"esfp", true},
		{"ENFJ", true},
		{"NITJ", false},
		{"INT", false},
		{"INTJX", false},
		{"ABCD", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTypeCode(tt.code))
		})
	}
}

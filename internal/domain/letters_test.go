package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLetter(t *testing.T) {
	tests := []struct {
		in     string
		want   Letter
		wantOK bool
	}{
		{"E", LetterE, true},
		{"i", LetterI, true},
		{"p", LetterP, true},
		{"X", "", false},
		{"", "", false},
		{"EI", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLetter(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimension_Letters(t *testing.T) {
	for i, d := range Dimensions {
		t.Run(string(d), func(t *testing.T) {
			assert.True(t, d.Valid())
			p, ok := d.Letters()
			assert.True(t, ok)
			assert.Equal(t, Pairs[i], p)
		})
	}

	t.Run("mixed pair never resolves", func(t *testing.T) {
		for _, d := range []Dimension{"ES", "IE", "ei", "", "EIX"} {
			assert.False(t, d.Valid(), "dimension %q", d)
			_, ok := d.Letters()
			assert.False(t, ok, "dimension %q", d)
		}
	})
}

func TestLooseLetters(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		want   Pair
		wantOK bool
	}{
		{name: "canonical", tag: "EI", want: Pair{LetterE, LetterI}, wantOK: true},
		{name: "lower case with separator", tag: "s/n", want: Pair{LetterS, LetterN}, wantOK: true},
		{name: "surrounding noise", tag: "  t-f  ", want: Pair{LetterT, LetterF}, wantOK: true},
		{name: "extra letters ignored", tag: "JPX", want: Pair{LetterJ, LetterP}, wantOK: true},
		{name: "tag order kept", tag: "IE", want: Pair{LetterI, LetterE}, wantOK: true},
		{name: "invalid second letter", tag: "EX", wantOK: false},
		{name: "too short", tag: "E", wantOK: false},
		{name: "empty", tag: "", wantOK: false},
		{name: "digits only", tag: "12", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LooseLetters(tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

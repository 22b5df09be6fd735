// Package domain contains pure, dependency-free domain models and types
// for the personality scoring engine.
package domain

import "strings"

// Letter is one pole of a personality dimension.
type Letter string

// The eight valid letters, grouped by dimension.
const (
	LetterE Letter = "E"
	LetterI Letter = "I"
	LetterS Letter = "S"
	LetterN Letter = "N"
	LetterT Letter = "T"
	LetterF Letter = "F"
	LetterJ Letter = "J"
	LetterP Letter = "P"
)

// Letters lists every valid letter in canonical order.
var Letters = []Letter{LetterE, LetterI, LetterS, LetterN, LetterT, LetterF, LetterJ, LetterP}

// ParseLetter reports whether s, compared case-insensitively, names a valid
// letter and returns it in canonical upper case.
func ParseLetter(s string) (Letter, bool) {
	l := Letter(strings.ToUpper(s))
	switch l {
	case LetterE, LetterI, LetterS, LetterN, LetterT, LetterF, LetterJ, LetterP:
		return l, true
	}
	return "", false
}

// Dimension names one of the four opposing-letter pairs, e.g. "EI".
type Dimension string

// The four canonical dimensions.
const (
	DimensionEI Dimension = "EI"
	DimensionSN Dimension = "SN"
	DimensionTF Dimension = "TF"
	DimensionJP Dimension = "JP"
)

// Pair is an ordered pair of opposing letters. First is credited for
// options leaning towards the start of a question's option list, Second
// for options towards the end and for ties.
type Pair struct {
	First  Letter
	Second Letter
}

// Pairs holds the dimensions in type-code order: E/I, S/N, T/F, J/P.
var Pairs = []Pair{
	{LetterE, LetterI},
	{LetterS, LetterN},
	{LetterT, LetterF},
	{LetterJ, LetterP},
}

// Dimensions lists the canonical dimensions in type-code order.
var Dimensions = []Dimension{DimensionEI, DimensionSN, DimensionTF, DimensionJP}

// Valid reports whether d is one of the four canonical dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionEI, DimensionSN, DimensionTF, DimensionJP:
		return true
	}
	return false
}

// Letters returns the pair named by d. Only canonical dimensions resolve;
// anything else returns ok == false so that letters are never mixed across
// pairs.
func (d Dimension) Letters() (Pair, bool) {
	for _, p := range Pairs {
		if string(p.First)+string(p.Second) == string(d) {
			return p, true
		}
	}
	return Pair{}, false
}

// LooseLetters derives a pair from a loosely formatted dimension tag such as
// "e/i" or " SN ". The tag is upper-cased, every character outside A-Z is
// dropped, and the first two remaining characters must both be valid
// letters. The two letters are returned in tag order and are not required
// to form a canonical pair.
func LooseLetters(tag string) (Pair, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(tag) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) < 2 {
		return Pair{}, false
	}
	a, okA := ParseLetter(clean[0:1])
	c, okB := ParseLetter(clean[1:2])
	if !okA || !okB {
		return Pair{}, false
	}
	return Pair{First: a, Second: c}, true
}

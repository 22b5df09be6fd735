package domain

import "strings"

// DecideType reduces letter totals to a four-letter type code, one letter per
// pair in Pairs order. The letter with the strictly higher total wins; an
// exact tie resolves to the pair's second letter (I, N, F or P), so the same
// totals always produce the same code.
func DecideType(t LetterTotals) string {
	var b strings.Builder
	b.Grow(len(Pairs))
	for _, p := range Pairs {
		if t.Get(p.First) > t.Get(p.Second) {
			b.WriteString(string(p.First))
			continue
		}
		b.WriteString(string(p.Second))
	}
	return b.String()
}

// ValidTypeCode reports whether code is a four-letter type code whose i-th
// letter belongs to the i-th pair. Case-insensitive.
func ValidTypeCode(code string) bool {
	if len(code) != len(Pairs) {
		return false
	}
	for i, p := range Pairs {
		l, ok := ParseLetter(code[i : i+1])
		if !ok || (l != p.First && l != p.Second) {
			return false
		}
	}
	return true
}

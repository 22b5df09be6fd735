package scoring

import (
	"math"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/ahrav/go-persona/internal/domain"
)

// Kind identifies a scoring-schema shape.
type Kind string

// Supported scoring-schema shapes, listed in matching priority.
const (
	KindDeltaArray        Kind = "delta_array"
	KindOptionLabelMap    Kind = "option_label_map"
	KindLetterMap         Kind = "letter_map"
	KindDimensionFallback Kind = "dimension_fallback"
	KindChain             Kind = "chain"
)

// Scheme is a resolved scoring specification for one question. Credit
// reports the letter deltas for the given option position, and whether this
// scheme structurally matched it. Positions come from NormalizeOption and
// are usually whole option indexes, but may be negative or fractional. A scheme that does not match
// contributes nothing and lets the next scheme in a Chain try.
type Scheme interface {
	Kind() Kind
	Credit(position float64) (deltas []Delta, matched bool)
}

// optionSlot returns the 0-based option index a position selects. Only
// whole, non-negative positions below limit select a slot.
func optionSlot(position float64, limit int) (int, bool) {
	if position < 0 || position != math.Trunc(position) || position >= float64(limit) {
		return 0, false
	}
	return int(position), true
}

// Delta is a single letter credit.
type Delta struct {
	Letter domain.Letter
	Value  float64
}

// DeltaArray is indexed by option position; each entry maps letters to
// numeric deltas. Keys that are not valid letters are dropped at resolve
// time.
type DeltaArray struct {
	Entries [][]Delta
}

// Kind implements Scheme.
func (DeltaArray) Kind() Kind { return KindDeltaArray }

// Credit implements Scheme. A delta array always matches, even when the
// position selects no entry.
func (s DeltaArray) Credit(position float64) ([]Delta, bool) {
	i, ok := optionSlot(position, len(s.Entries))
	if !ok {
		return nil, true
	}
	return s.Entries[i], true
}

// OptionLabelMap maps option labels ("A", "B", ...) to the letters credited
// when that option is picked. Each letter earns +1.
type OptionLabelMap struct {
	Labels map[string][]domain.Letter
}

// Kind implements Scheme.
func (OptionLabelMap) Kind() Kind { return KindOptionLabelMap }

// Credit implements Scheme. It matches only when the label for position is
// a key, even if that key credits no valid letter. Positions that are not
// whole option indexes have no label.
func (s OptionLabelMap) Credit(position float64) ([]Delta, bool) {
	i, ok := optionSlot(position, math.MaxInt32)
	if !ok {
		return nil, false
	}
	letters, ok := s.Labels[domain.OptionLabel(i)]
	if !ok {
		return nil, false
	}
	deltas := make([]Delta, 0, len(letters))
	for _, l := range letters {
		deltas = append(deltas, Delta{Letter: l, Value: 1})
	}
	return deltas, true
}

// LetterValue is the contribution of one letter in a LetterMap: either a
// constant added regardless of option, or a per-option sequence.
type LetterValue struct {
	Letter    domain.Letter
	Constant  float64
	PerOption []float64
	// Indexed selects PerOption over Constant.
	Indexed bool
}

// LetterMap is keyed directly by letters. Only resolved when at least one
// key is a valid letter.
type LetterMap struct {
	Values []LetterValue
}

// Kind implements Scheme.
func (LetterMap) Kind() Kind { return KindLetterMap }

// Credit implements Scheme. Constants apply to every position; per-option
// values only to whole positions inside the sequence.
func (s LetterMap) Credit(position float64) ([]Delta, bool) {
	deltas := make([]Delta, 0, len(s.Values))
	for _, v := range s.Values {
		add := v.Constant
		if v.Indexed {
			add = 0
			if i, ok := optionSlot(position, len(v.PerOption)); ok {
				add = v.PerOption[i]
			}
		}
		deltas = append(deltas, Delta{Letter: v.Letter, Value: add})
	}
	return deltas, true
}

// DimensionFallback infers credit from the question's dimension tag and the
// option's position relative to the midpoint of the option list.
type DimensionFallback struct {
	Pair domain.Pair
	// Valid is false when the dimension tag did not yield two valid letters;
	// such a fallback never credits anything.
	Valid       bool
	OptionCount int
}

// Kind implements Scheme.
func (DimensionFallback) Kind() Kind { return KindDimensionFallback }

// Credit implements Scheme. With n options the midpoint is (n-1)/2: a
// position above it credits the second letter, below it the first, and a
// position equal to it credits nothing.
func (s DimensionFallback) Credit(position float64) ([]Delta, bool) {
	if !s.Valid {
		return nil, true
	}
	n := s.OptionCount
	if n <= 0 {
		n = 2
	}
	midpoint := float64(n-1) / 2
	switch {
	case position > midpoint:
		return []Delta{{Letter: s.Pair.Second, Value: 1}}, true
	case position < midpoint:
		return []Delta{{Letter: s.Pair.First, Value: 1}}, true
	}
	return nil, true
}

// Chain tries each scheme in order and uses the first that matches.
type Chain []Scheme

// Kind implements Scheme.
func (Chain) Kind() Kind { return KindChain }

// Credit implements Scheme.
func (c Chain) Credit(position float64) ([]Delta, bool) {
	for _, s := range c {
		if deltas, ok := s.Credit(position); ok {
			return deltas, true
		}
	}
	return nil, false
}

// ResolveScheme inspects a question's raw scores once and returns the scheme
// used for every answer to that question.
//
//   - a JSON array resolves to a DeltaArray;
//   - a JSON object resolves to a Chain of OptionLabelMap, LetterMap and
//     DimensionFallback, keeping only the map variants whose keys are present;
//   - anything else resolves to a DimensionFallback.
func ResolveScheme(q domain.Question) Scheme {
	fallback := resolveFallback(q)

	raw := strings.TrimSpace(string(q.Scores))
	if raw == "" || !gjson.Valid(raw) {
		return fallback
	}

	scores := gjson.Parse(raw)
	switch {
	case scores.IsArray():
		return resolveDeltaArray(scores)
	case scores.IsObject():
		chain := make(Chain, 0, 3)
		if labels, ok := resolveLabelMap(scores); ok {
			chain = append(chain, labels)
		}
		if letters, ok := resolveLetterMap(scores); ok {
			chain = append(chain, letters)
		}
		return append(chain, fallback)
	}
	return fallback
}

func resolveFallback(q domain.Question) DimensionFallback {
	pair, ok := domain.LooseLetters(string(q.Dimension))
	return DimensionFallback{Pair: pair, Valid: ok, OptionCount: q.OptionCount()}
}

func resolveDeltaArray(scores gjson.Result) DeltaArray {
	items := scores.Array()
	entries := make([][]Delta, len(items))
	for i, item := range items {
		if !item.IsObject() {
			continue
		}
		item.ForEach(func(key, value gjson.Result) bool {
			if l, ok := domain.ParseLetter(key.String()); ok {
				entries[i] = append(entries[i], Delta{Letter: l, Value: toNumber(value)})
			}
			return true
		})
	}
	return DeltaArray{Entries: entries}
}

func resolveLabelMap(scores gjson.Result) (OptionLabelMap, bool) {
	labels := make(map[string][]domain.Letter)
	scores.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if !isOptionLabel(k) {
			return true
		}
		labels[k] = lettersOf(value)
		return true
	})
	return OptionLabelMap{Labels: labels}, len(labels) > 0
}

func resolveLetterMap(scores gjson.Result) (LetterMap, bool) {
	var values []LetterValue
	scores.ForEach(func(key, value gjson.Result) bool {
		l, ok := domain.ParseLetter(key.String())
		if !ok {
			return true
		}
		lv := LetterValue{Letter: l}
		if value.IsArray() {
			lv.Indexed = true
			for _, v := range value.Array() {
				lv.PerOption = append(lv.PerOption, toNumber(v))
			}
		} else {
			lv.Constant = toNumber(value)
		}
		values = append(values, lv)
		return true
	})
	return LetterMap{Values: values}, len(values) > 0
}

// isOptionLabel reports whether k is the label of some option position.
func isOptionLabel(k string) bool {
	for i := 0; i < 8; i++ {
		if domain.OptionLabel(i) == k {
			return true
		}
	}
	n, err := cast.ToIntE(k)
	return err == nil && n >= 8 && domain.OptionLabel(n) == k
}

// lettersOf extracts the letters credited by an option-label value. A string
// contributes each of its characters, an array each of its elements; only
// valid letters survive, compared case-insensitively.
func lettersOf(value gjson.Result) []domain.Letter {
	var candidates []string
	switch {
	case value.IsArray():
		for _, v := range value.Array() {
			candidates = append(candidates, v.String())
		}
	default:
		for _, r := range value.String() {
			candidates = append(candidates, string(r))
		}
	}

	letters := make([]domain.Letter, 0, len(candidates))
	for _, c := range candidates {
		if l, ok := domain.ParseLetter(c); ok {
			letters = append(letters, l)
		}
	}
	return letters
}

// toNumber coerces a JSON value to a float. Missing, null, non-numeric and
// non-finite values count as zero.
func toNumber(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return finite(v.Num)
	case gjson.String:
		f, err := cast.ToFloat64E(strings.TrimSpace(v.Str))
		if err != nil {
			return 0
		}
		return finite(f)
	case gjson.True:
		return 1
	}
	return 0
}

package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// optionLabels are the letter labels given to the first eight options.
// Options beyond the eighth are labelled by their decimal index.
var optionLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// OptionLabel returns the label for the option at the 0-based index i.
func OptionLabel(i int) string {
	if i >= 0 && i < len(optionLabels) {
		return optionLabels[i]
	}
	return strconv.Itoa(i)
}

// Theme groups the questions of a single quiz.
type Theme struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Slug        string `json:"slug" yaml:"slug"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description"`
	// PairTitles optionally names each dimension group for display.
	PairTitles map[Dimension]string `json:"pair_titles,omitempty" yaml:"pair_titles" validate:"omitempty,dive,keys,dimension,endkeys,min=1"`
	Active     bool                 `json:"active" yaml:"active"`
}

// Option is one selectable answer to a question.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Options is the ordered option list of a question. It decodes from either a
// JSON array of strings or an object keyed by option label ({"A": ..., "B": ...}).
type Options []Option

// UnmarshalJSON implements json.Unmarshaler.
func (o *Options) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = OptionsFromList(list)
		return nil
	}

	var byLabel map[string]string
	if err := json.Unmarshal(data, &byLabel); err != nil {
		return fmt.Errorf("options must be a list or a label map: %w", err)
	}
	*o = OptionsFromLabels(byLabel)
	return nil
}

// MarshalJSON implements json.Marshaler. Options encode as a list of texts;
// labels are positional and are rebuilt on decode.
func (o Options) MarshalJSON() ([]byte, error) {
	texts := make([]string, len(o))
	for i, opt := range o {
		texts[i] = opt.Text
	}
	return json.Marshal(texts)
}

// OptionsFromList labels list entries by position.
func OptionsFromList(list []string) Options {
	out := make(Options, len(list))
	for i, text := range list {
		out[i] = Option{Label: OptionLabel(i), Text: text}
	}
	return out
}

// OptionsFromLabels orders a label-keyed map by label position. Labels that
// are not recognised sort after the known ones, alphabetically.
func OptionsFromLabels(byLabel map[string]string) Options {
	out := make(Options, 0, len(byLabel))
	for label, text := range byLabel {
		out = append(out, Option{Label: label, Text: text})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := labelRank(out[i].Label), labelRank(out[j].Label)
		if ri != rj {
			return ri < rj
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func labelRank(label string) int {
	for i, l := range optionLabels {
		if l == label {
			return i
		}
	}
	if n, err := strconv.Atoi(label); err == nil && n >= 0 {
		return n
	}
	return len(optionLabels) + 1<<20
}

// Question is a single scored item in a theme's question bank. Questions are
// read-only to the scoring engine.
type Question struct {
	ThemeID   string    `json:"theme_id" validate:"required"`
	Code      string    `json:"code" validate:"required"`
	Dimension Dimension `json:"dimension" validate:"required,dimension"`
	Title     string    `json:"title,omitempty"`
	Scenario  string    `json:"scenario,omitempty"`
	Options   Options   `json:"options" validate:"min=2"`
	// Scores is the raw scoring specification. It may take any of the
	// shapes understood by the scoring package, or be empty.
	Scores json.RawMessage `json:"scores,omitempty"`
}

// OptionCount returns the number of options, or zero when unknown.
func (q Question) OptionCount() int { return len(q.Options) }

// Answer is a respondent's choice for one question. Option is untrusted and
// may be out of range, 1-based, negative or not a number at all.
type Answer struct {
	Code   string `json:"code" yaml:"code"`
	Option any    `json:"option" yaml:"option"`
}

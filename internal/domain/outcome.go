package domain

import "time"

// Profile describes a personality type. Profiles are keyed by their
// four-letter Type and are read-only to the engine.
type Profile struct {
	Type               string   `json:"type" yaml:"type" validate:"required,typecode"`
	Title              string   `json:"title,omitempty" yaml:"title"`
	Description        string   `json:"description,omitempty" yaml:"description"`
	Traits             []string `json:"traits,omitempty" yaml:"traits"`
	Strengths          []string `json:"strengths,omitempty" yaml:"strengths"`
	Growth             []string `json:"growth,omitempty" yaml:"growth"`
	IdealEnvironments  []string `json:"ideal_environments,omitempty" yaml:"ideal_environments"`
	CommunicationStyle []string `json:"communication_style,omitempty" yaml:"communication_style"`
	CollaborationTips  []string `json:"collaboration_tips,omitempty" yaml:"collaboration_tips"`
}

// Outcome is the product of one scoring computation: the type code, the
// totals that produced it and, when a profile exists for the type, a
// snapshot of the profile's traits.
type Outcome struct {
	PersonalityType string       `json:"personality_type"`
	Scores          LetterTotals `json:"scores"`
	Traits          []string     `json:"traits,omitempty"`
	// Profile is nil when no profile is registered for PersonalityType.
	Profile *Profile `json:"profile,omitempty"`
}

// WithProfile returns a copy of o carrying p and a snapshot of its traits.
// A nil p leaves Traits untouched.
func (o Outcome) WithProfile(p *Profile) Outcome {
	o.Profile = p
	if p != nil && p.Traits != nil {
		o.Traits = append([]string(nil), p.Traits...)
	}
	return o
}

// Result is a stored submission together with its computed outcome.
type Result struct {
	ID        string `json:"id"`
	ThemeID   string `json:"theme_id"`
	Name      string `json:"name"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	PersonalityType string `json:"personality_type"`
	// Summary duplicates PersonalityType for readers of the legacy field.
	Summary string       `json:"summary"`
	Scores  LetterTotals `json:"scores"`
	Traits  []string     `json:"traits,omitempty"`

	Answers []Answer       `json:"answers"`
	Public  bool           `json:"public"`
	Meta    map[string]any `json:"meta,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Profile is attached on read and never stored.
	Profile *Profile `json:"profile,omitempty"`
}

// ApplyOutcome overwrites the computed fields of r with o.
func (r *Result) ApplyOutcome(o Outcome) {
	r.PersonalityType = o.PersonalityType
	r.Summary = o.PersonalityType
	r.Scores = o.Scores.Clone()
	r.Traits = o.Traits
}

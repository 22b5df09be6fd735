package application

import (
	"gopkg.in/yaml.v3"
)

// CatalogConfig is the declarative description of themes, their question
// banks and the personality profiles, as read from a YAML catalog file.
// It is the seed format for stores and can itself serve as a read-only
// question and profile source.
type CatalogConfig struct {
	// Version specifies the catalog schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Themes lists every quiz with its questions.
	Themes []ThemeConfig `yaml:"themes" validate:"dive"`
	// Profiles lists the personality profiles keyed by type code.
	Profiles []ProfileConfig `yaml:"profiles" validate:"dive"`
}

// ThemeConfig describes one theme and its question bank.
type ThemeConfig struct {
	// ID is the stable identifier results refer to.
	ID string `yaml:"id" validate:"required,min=1,max=100"`
	// Slug is the URL-friendly name; derived from Title when omitted.
	Slug        string `yaml:"slug" validate:"omitempty,max=120"`
	Title       string `yaml:"title" validate:"required,min=1,max=255"`
	Description string `yaml:"description" validate:"max=2000"`
	// PairTitles optionally names each dimension group, keyed by dimension.
	PairTitles map[string]string `yaml:"pair_titles" validate:"omitempty,dive,keys,dimension,endkeys,min=1"`
	// Inactive hides a theme from listings without breaking stored results.
	Inactive  bool             `yaml:"inactive"`
	Questions []QuestionConfig `yaml:"questions" validate:"dive"`
}

// QuestionConfig describes one question. Options and Scores stay as raw
// YAML nodes because both accept several shapes.
type QuestionConfig struct {
	// Code is unique within the theme and is what answers refer to.
	Code string `yaml:"code" validate:"required,min=1,max=100"`
	// Dimension must be one of EI, SN, TF, JP.
	Dimension string `yaml:"dimension" validate:"required,dimension"`
	Title     string `yaml:"title"`
	Scenario  string `yaml:"scenario"`
	// Options is either a list of option texts or a map keyed by label
	// (A, B, ...). At least two options are required.
	Options yaml.Node `yaml:"options"`
	// Scores is the scoring specification in any supported shape, or
	// omitted to score by dimension and option position.
	Scores yaml.Node `yaml:"scores"`
}

// ProfileConfig describes one personality profile.
type ProfileConfig struct {
	Type               string   `yaml:"type" validate:"required,typecode"`
	Title              string   `yaml:"title" validate:"max=255"`
	Description        string   `yaml:"description"`
	Traits             []string `yaml:"traits" validate:"dive,min=1"`
	Strengths          []string `yaml:"strengths"`
	Growth             []string `yaml:"growth"`
	IdealEnvironments  []string `yaml:"ideal_environments"`
	CommunicationStyle []string `yaml:"communication_style"`
	CollaborationTips  []string `yaml:"collaboration_tips"`
}

// Package application provides the scoring pipeline and its orchestration
// for the persona engine.
package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestCatalogConfig_UnmarshalYAML tests the YAML unmarshaling of
// CatalogConfig, including the raw nodes kept for options and scores.
func TestCatalogConfig_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		verify  func(t *testing.T, config *CatalogConfig)
	}{
		{
			name: "minimal config",
			yaml: `
version: "1.0.0"
themes:
  - id: t1
    title: Theme
    questions:
      - code: q1
        dimension: EI
        options: [a, b]
`,
			verify: func(t *testing.T, config *CatalogConfig) {
				assert.Equal(t, "1.0.0", config.Version)
				require.Len(t, config.Themes, 1)
				require.Len(t, config.Themes[0].Questions, 1)
				q := config.Themes[0].Questions[0]
				assert.Equal(t, yaml.SequenceNode, q.Options.Kind)
				assert.True(t, q.Scores.IsZero())
			},
		},
		{
			name: "label map options and object scores",
			yaml: `
version: "1.0.0"
themes:
  - id: t1
    title: Theme
    inactive: true
    pair_titles: {EI: Energy}
    questions:
      - code: q1
        dimension: JP
        options: {A: plan, B: wing it}
        scores: {J: [1, 0], P: [0, 1]}
profiles:
  - type: INTJ
    traits: [Strategic]
`,
			verify: func(t *testing.T, config *CatalogConfig) {
				theme := config.Themes[0]
				assert.True(t, theme.Inactive)
				assert.Equal(t, "Energy", theme.PairTitles["EI"])
				assert.Equal(t, yaml.MappingNode, theme.Questions[0].Options.Kind)
				assert.Equal(t, yaml.MappingNode, theme.Questions[0].Scores.Kind)
				require.Len(t, config.Profiles, 1)
				assert.Equal(t, []string{"Strategic"}, config.Profiles[0].Traits)
			},
		},
		{
			name:    "malformed yaml",
			yaml:    "version: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var config CatalogConfig
			err := yaml.Unmarshal([]byte(tt.yaml), &config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.verify != nil {
				tt.verify(t, &config)
			}
		})
	}
}

// TestCatalogConfig_Validation exercises the struct tags, including the
// custom dimension and typecode rules.
func TestCatalogConfig_Validation(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)

	valid := func() CatalogConfig {
		return CatalogConfig{
			Version: "1.0.0",
			Themes: []ThemeConfig{{
				ID:    "t1",
				Title: "Theme",
				Questions: []QuestionConfig{{
					Code:      "q1",
					Dimension: "EI",
				}},
			}},
			Profiles: []ProfileConfig{{Type: "ENFP"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *CatalogConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*CatalogConfig) {}},
		{name: "bad version", mutate: func(c *CatalogConfig) { c.Version = "one" }, wantErr: "semver"},
		{name: "missing theme id", mutate: func(c *CatalogConfig) { c.Themes[0].ID = "" }, wantErr: "ID is required"},
		{name: "bad dimension", mutate: func(c *CatalogConfig) { c.Themes[0].Questions[0].Dimension = "EX" }, wantErr: "not one of EI, SN, TF, JP"},
		{name: "lower case dimension", mutate: func(c *CatalogConfig) { c.Themes[0].Questions[0].Dimension = "ei" }, wantErr: "not one of"},
		{name: "bad pair title key", mutate: func(c *CatalogConfig) { c.Themes[0].PairTitles = map[string]string{"XY": "x"} }, wantErr: "not one of"},
		{name: "bad profile type", mutate: func(c *CatalogConfig) { c.Profiles[0].Type = "NITJ" }, wantErr: "not a four-letter type code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := toValidationError("Catalog", v.Struct(&c))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/ports"
)

// Catalog is an immutable, validated set of themes, questions and profiles
// loaded from YAML. It serves directly as a QuestionSource and a
// ProfileSource, and is the seed input for persistent stores.
type Catalog struct {
	themes    map[string]domain.Theme
	themeIDs  []string
	questions map[string][]domain.Question
	profiles  map[string]domain.Profile
}

var (
	_ ports.QuestionSource = (*Catalog)(nil)
	_ ports.ProfileSource  = (*Catalog)(nil)
)

// CatalogLoader parses and validates catalog files.
type CatalogLoader struct {
	// validator performs struct field validation and the custom dimension
	// and typecode rules.
	validator *validator.Validate
}

// NewCatalogLoader creates a loader with the domain validators registered.
func NewCatalogLoader() (*CatalogLoader, error) {
	v, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &CatalogLoader{validator: v}, nil
}

// LoadFromFile loads a catalog from a YAML file.
func (cl *CatalogLoader) LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return cl.load(data)
}

// LoadFromReader loads a catalog from r.
func (cl *CatalogLoader) LoadFromReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return cl.load(data)
}

func (cl *CatalogLoader) load(data []byte) (*Catalog, error) {
	var config CatalogConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}

	if err := toValidationError("Catalog", cl.validator.Struct(&config)); err != nil {
		return nil, err
	}
	return buildCatalog(&config)
}

// buildCatalog converts a struct-validated config into a Catalog, enforcing
// the rules struct tags cannot express: unique theme ids, unique question
// codes per theme, unique profile types and well-formed options.
func buildCatalog(config *CatalogConfig) (*Catalog, error) {
	c := &Catalog{
		themes:    make(map[string]domain.Theme, len(config.Themes)),
		questions: make(map[string][]domain.Question, len(config.Themes)),
		profiles:  make(map[string]domain.Profile, len(config.Profiles)),
	}
	verr := domain.NewValidationError("Catalog")

	for _, tc := range config.Themes {
		if _, dup := c.themes[tc.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate theme id %q", tc.ID))
			continue
		}
		theme := domain.Theme{
			ID:          tc.ID,
			Slug:        tc.Slug,
			Title:       tc.Title,
			Description: tc.Description,
			Active:      !tc.Inactive,
		}
		if theme.Slug == "" {
			theme.Slug = Slugify(tc.Title)
		}
		if len(tc.PairTitles) > 0 {
			theme.PairTitles = make(map[domain.Dimension]string, len(tc.PairTitles))
			for dim, title := range tc.PairTitles {
				theme.PairTitles[domain.Dimension(dim)] = title
			}
		}
		c.themes[tc.ID] = theme
		c.themeIDs = append(c.themeIDs, tc.ID)

		codes := make(map[string]struct{}, len(tc.Questions))
		questions := make([]domain.Question, 0, len(tc.Questions))
		for _, qc := range tc.Questions {
			if _, dup := codes[qc.Code]; dup {
				verr.AddError(fmt.Sprintf("theme %s: duplicate question code %q", tc.ID, qc.Code))
				continue
			}
			codes[qc.Code] = struct{}{}

			q, err := buildQuestion(tc.ID, qc)
			if err != nil {
				verr.AddError(err.Error())
				continue
			}
			questions = append(questions, q)
		}
		c.questions[tc.ID] = questions
	}

	for _, pc := range config.Profiles {
		code := strings.ToUpper(pc.Type)
		if _, dup := c.profiles[code]; dup {
			verr.AddError(fmt.Sprintf("duplicate profile type %q", code))
			continue
		}
		c.profiles[code] = domain.Profile{
			Type:               code,
			Title:              pc.Title,
			Description:        pc.Description,
			Traits:             pc.Traits,
			Strengths:          pc.Strengths,
			Growth:             pc.Growth,
			IdealEnvironments:  pc.IdealEnvironments,
			CommunicationStyle: pc.CommunicationStyle,
			CollaborationTips:  pc.CollaborationTips,
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return c, nil
}

// buildQuestion decodes the flexible options and scores nodes of qc.
func buildQuestion(themeID string, qc QuestionConfig) (domain.Question, error) {
	options, err := decodeOptions(qc.Options)
	if err != nil {
		return domain.Question{}, domain.NewQuestionError(themeID, qc.Code, err)
	}
	if len(options) < 2 {
		return domain.Question{}, domain.NewQuestionError(themeID, qc.Code,
			fmt.Errorf("needs at least 2 options, got %d", len(options)))
	}

	var scores json.RawMessage
	if !qc.Scores.IsZero() {
		var raw any
		if err := qc.Scores.Decode(&raw); err != nil {
			return domain.Question{}, domain.NewQuestionError(themeID, qc.Code,
				fmt.Errorf("failed to decode scores: %w", err))
		}
		if raw != nil {
			scores, err = json.Marshal(raw)
			if err != nil {
				return domain.Question{}, domain.NewQuestionError(themeID, qc.Code,
					fmt.Errorf("scores are not representable as JSON: %w", err))
			}
		}
	}

	return domain.Question{
		ThemeID:   themeID,
		Code:      qc.Code,
		Dimension: domain.Dimension(qc.Dimension),
		Title:     qc.Title,
		Scenario:  qc.Scenario,
		Options:   options,
		Scores:    scores,
	}, nil
}

// decodeOptions accepts a sequence of texts or a mapping keyed by label.
func decodeOptions(node yaml.Node) (domain.Options, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
		return domain.OptionsFromList(list), nil
	case yaml.MappingNode:
		var byLabel map[string]string
		if err := node.Decode(&byLabel); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
		return domain.OptionsFromLabels(byLabel), nil
	case 0:
		return nil, fmt.Errorf("options are required")
	}
	return nil, fmt.Errorf("options must be a list or a label map")
}

// Theme implements ports.QuestionSource.
func (c *Catalog) Theme(_ context.Context, id string) (domain.Theme, error) {
	t, ok := c.themes[id]
	if !ok {
		return domain.Theme{}, fmt.Errorf("theme %q: %w", id, domain.ErrThemeNotFound)
	}
	return t, nil
}

// Questions implements ports.QuestionSource.
func (c *Catalog) Questions(_ context.Context, themeID string) ([]domain.Question, error) {
	return append([]domain.Question(nil), c.questions[themeID]...), nil
}

// Profile implements ports.ProfileSource.
func (c *Catalog) Profile(_ context.Context, personalityType string) (domain.Profile, bool, error) {
	p, ok := c.profiles[strings.ToUpper(personalityType)]
	return p, ok, nil
}

// Themes returns every theme in file order.
func (c *Catalog) Themes() []domain.Theme {
	out := make([]domain.Theme, 0, len(c.themeIDs))
	for _, id := range c.themeIDs {
		out = append(out, c.themes[id])
	}
	return out
}

// Profiles returns every profile ordered by type code.
func (c *Catalog) Profiles() []domain.Profile {
	out := make([]domain.Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

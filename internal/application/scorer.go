package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/ports"
)

// Submission is one respondent's completed quiz.
type Submission struct {
	ThemeID   string          `json:"theme_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UserID    string          `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Answers   []domain.Answer `json:"answers"`
	Public    bool            `json:"public"`
	Meta      map[string]any  `json:"meta,omitempty"`
}

// Scorer computes outcomes for submissions and stores them. It is safe for
// concurrent use: each computation is independent and the question cache is
// the only shared state.
type Scorer struct {
	questions *QuestionCache
	profiles  ports.ProfileSource
	results   ports.ResultStore
	validate  *validator.Validate
	obs       observability
}

// NewScorer wires a Scorer to its collaborators. results may be nil when the
// Scorer is only used for Score and never for Submit or Get.
func NewScorer(
	questions *QuestionCache,
	profiles ports.ProfileSource,
	results ports.ResultStore,
	opts ...Option,
) (*Scorer, error) {
	if questions == nil {
		return nil, fmt.Errorf("question cache is required: %w", domain.ErrInvalidConfiguration)
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile source is required: %w", domain.ErrInvalidConfiguration)
	}
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	return &Scorer{
		questions: questions,
		profiles:  profiles,
		results:   results,
		validate:  v,
		obs:       applyOptions(opts),
	}, nil
}

// Score computes the outcome of answers against the theme's current question
// set without storing anything. The theme must exist. Unknown question codes
// and malformed options never cause an error.
func (s *Scorer) Score(ctx context.Context, themeID string, answers []domain.Answer) (domain.Outcome, error) {
	if strings.TrimSpace(themeID) == "" {
		verr := domain.NewValidationError("Submission")
		verr.AddError("Submission.ThemeID is required")
		return domain.Outcome{}, verr
	}

	start := time.Now()
	qs, err := s.questions.Load(ctx, themeID)
	if err != nil {
		return domain.Outcome{}, err
	}

	comp := Compute(answers, qs)
	labels := map[string]string{"theme": themeID}
	s.obs.metrics.RecordLatency("compute", time.Since(start), labels)
	s.obs.metrics.RecordHistogram("answers_per_submission", float64(len(answers)), labels)
	s.obs.metrics.RecordGauge("question_cache_entries", float64(s.questions.Len()), nil)
	if comp.Unmatched > 0 {
		s.obs.metrics.RecordCounter("unmatched_answers_total", float64(comp.Unmatched), labels)
		s.obs.logger.Debug("skipped answers with unknown question codes",
			zap.String("theme_id", themeID),
			zap.Int("unmatched", comp.Unmatched),
		)
		for _, code := range comp.UnmatchedCodes {
			if hint := qs.Suggest(code); hint != "" {
				s.obs.logger.Debug("unknown question code",
					zap.String("code", code),
					zap.String("did_you_mean", hint),
				)
			}
		}
	}

	profile := s.lookupProfile(ctx, comp.Outcome.PersonalityType)
	return comp.Outcome.WithProfile(profile), nil
}

// Submit validates sub, computes its outcome and stores the result. The
// returned result carries the resolved profile, or none when the type has
// no registered profile.
func (s *Scorer) Submit(ctx context.Context, sub Submission) (domain.Result, error) {
	ctx, span := s.obs.tracer.Start(ctx, "Scorer.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("persona.theme_id", sub.ThemeID),
		attribute.Int("persona.answers", len(sub.Answers)),
	)

	if s.results == nil {
		return domain.Result{}, fmt.Errorf("result store is required: %w", domain.ErrInvalidConfiguration)
	}
	sub.Name = strings.TrimSpace(sub.Name)
	if err := toValidationError("Submission", s.validate.Struct(sub)); err != nil {
		span.SetStatus(codes.Error, "invalid submission")
		return domain.Result{}, err
	}

	outcome, err := s.Score(ctx, sub.ThemeID, sub.Answers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Result{}, err
	}

	answers := sub.Answers
	if answers == nil {
		answers = []domain.Answer{}
	}
	r := domain.Result{
		ThemeID:   sub.ThemeID,
		Name:      sub.Name,
		UserID:    sub.UserID,
		SessionID: sub.SessionID,
		Answers:   answers,
		Public:    sub.Public,
		Meta:      sub.Meta,
	}
	r.ApplyOutcome(outcome)

	stored, err := s.results.Create(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store result")
		return domain.Result{}, fmt.Errorf("store result: %w", err)
	}
	stored.Profile = outcome.Profile

	span.SetAttributes(attribute.String("persona.type", outcome.PersonalityType))
	span.SetStatus(codes.Ok, "")
	s.obs.metrics.RecordCounter("submissions_total", 1, map[string]string{
		"theme": sub.ThemeID,
		"type":  outcome.PersonalityType,
	})
	s.obs.logger.Info("result stored",
		zap.String("result_id", stored.ID),
		zap.String("theme_id", stored.ThemeID),
		zap.String("type", stored.PersonalityType),
	)
	return stored, nil
}

// Get returns a stored result with its current profile attached.
func (s *Scorer) Get(ctx context.Context, id string) (domain.Result, error) {
	if s.results == nil {
		return domain.Result{}, fmt.Errorf("result store is required: %w", domain.ErrInvalidConfiguration)
	}
	r, err := s.results.Get(ctx, id)
	if err != nil {
		return domain.Result{}, err
	}
	code := r.PersonalityType
	if code == "" {
		code = r.Summary
	}
	r.Profile = s.lookupProfile(ctx, code)
	return r, nil
}

// lookupProfile resolves the profile for a type code. Absence is not an
// error, and a failing source degrades to no profile so that scoring still
// completes.
func (s *Scorer) lookupProfile(ctx context.Context, code string) *domain.Profile {
	return lookupProfile(ctx, s.profiles, s.obs.logger, code)
}

func lookupProfile(ctx context.Context, src ports.ProfileSource, logger *zap.Logger, code string) *domain.Profile {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	p, ok, err := src.Profile(ctx, code)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("profile lookup failed", zap.String("type", code), zap.Error(err))
		}
		return nil
	}
	if !ok {
		return nil
	}
	return &p
}

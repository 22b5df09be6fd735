package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ahrav/go-persona/internal/domain"
	"github.com/ahrav/go-persona/internal/ports"
)

// progressInterval is how many scanned results pass between progress logs.
const progressInterval = 100

// RescoreOptions scopes a rescoring pass.
type RescoreOptions struct {
	// ThemeID restricts the pass to one theme. Empty scans every result.
	ThemeID string
	// DryRun computes and counts changes without writing them.
	DryRun bool
}

// RescoreReport summarizes a rescoring pass.
type RescoreReport struct {
	// Scanned counts results read from the store.
	Scanned int `json:"scanned"`
	// Updated counts results whose type or totals changed. In a dry run they
	// are counted but not written.
	Updated int `json:"updated"`
	// Unchanged counts results that already matched the recomputation.
	Unchanged int `json:"unchanged"`
	// Orphaned counts results whose theme no longer exists. They are left
	// untouched.
	Orphaned int `json:"orphaned"`
	// Duration is the wall time of the pass.
	Duration time.Duration `json:"duration"`
}

// Rescorer recomputes stored results against the current question sets and
// writes back only those whose type or totals changed. Running it twice over
// the same data converges: the second pass updates nothing.
type Rescorer struct {
	questions *QuestionCache
	profiles  ports.ProfileSource
	results   ports.ResultStore
	obs       observability
}

// NewRescorer wires a Rescorer to its collaborators.
func NewRescorer(
	questions *QuestionCache,
	profiles ports.ProfileSource,
	results ports.ResultStore,
	opts ...Option,
) (*Rescorer, error) {
	if questions == nil || profiles == nil || results == nil {
		return nil, fmt.Errorf("rescorer needs questions, profiles and results: %w", domain.ErrInvalidConfiguration)
	}
	return &Rescorer{
		questions: questions,
		profiles:  profiles,
		results:   results,
		obs:       applyOptions(opts),
	}, nil
}

// Run performs one rescoring pass. Results are processed one at a time in
// cursor order; a failure stops the pass and returns the partial report with
// the error. Because each write is conditional and independent, an
// interrupted pass can simply be run again.
func (r *Rescorer) Run(ctx context.Context, opts RescoreOptions) (RescoreReport, error) {
	ctx, span := r.obs.tracer.Start(ctx, "Rescorer.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("persona.theme_id", opts.ThemeID),
		attribute.Bool("persona.dry_run", opts.DryRun),
	)

	start := time.Now()
	report, err := r.run(ctx, opts)
	report.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("persona.scanned", report.Scanned),
		attribute.Int("persona.updated", report.Updated),
	)
	r.obs.metrics.RecordLatency("rescore", report.Duration, map[string]string{"theme": opts.ThemeID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.obs.logger.Error("rescore failed",
			zap.Int("scanned", report.Scanned),
			zap.Int("updated", report.Updated),
			zap.Error(err),
		)
		return report, err
	}

	span.SetStatus(codes.Ok, "")
	r.obs.logger.Info("rescore done",
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("orphaned", report.Orphaned),
		zap.Bool("dry_run", opts.DryRun),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (r *Rescorer) run(ctx context.Context, opts RescoreOptions) (RescoreReport, error) {
	var report RescoreReport

	cur, err := r.results.Scan(ctx, ports.ResultFilter{ThemeID: opts.ThemeID})
	if err != nil {
		return report, fmt.Errorf("open result scan: %w", err)
	}
	defer cur.Close()

	for cur.Next(ctx) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		res := cur.Result()
		changed, err := r.rescoreOne(ctx, res, opts.DryRun)
		switch {
		case errors.Is(err, domain.ErrThemeNotFound):
			report.Orphaned++
			r.obs.logger.Warn("result references a missing theme",
				zap.String("result_id", res.ID),
				zap.String("theme_id", res.ThemeID),
			)
		case err != nil:
			return report, err
		case changed:
			report.Updated++
		default:
			report.Unchanged++
		}

		if report.Scanned%progressInterval == 0 {
			r.obs.logger.Info("rescore progress",
				zap.Int("scanned", report.Scanned),
				zap.Int("updated", report.Updated),
			)
		}
	}
	if err := cur.Err(); err != nil {
		return report, fmt.Errorf("scan results: %w", err)
	}
	return report, nil
}

// rescoreOne recomputes a single stored result and writes it back when its
// type or totals differ. It reports whether the result changed.
func (r *Rescorer) rescoreOne(ctx context.Context, res domain.Result, dryRun bool) (bool, error) {
	qs, err := r.questions.Load(ctx, res.ThemeID)
	if err != nil {
		return false, err
	}

	outcome := Compute(res.Answers, qs).Outcome
	labels := map[string]string{"theme": res.ThemeID}
	r.obs.metrics.RecordCounter("rescore_scanned_total", 1, labels)

	if outcome.PersonalityType == res.PersonalityType && outcome.Scores.Equal(res.Scores) {
		return false, nil
	}

	// Stored traits survive when the new type has no profile.
	outcome.Traits = res.Traits
	outcome = outcome.WithProfile(lookupProfile(ctx, r.profiles, r.obs.logger, outcome.PersonalityType))

	r.obs.logger.Debug("result rescored",
		zap.String("result_id", res.ID),
		zap.String("from", res.PersonalityType),
		zap.String("to", outcome.PersonalityType),
		zap.Bool("dry_run", dryRun),
	)
	if dryRun {
		return true, nil
	}

	if err := r.results.UpdateOutcome(ctx, res.ID, outcome); err != nil {
		return false, fmt.Errorf("update result %s: %w", res.ID, err)
	}
	r.obs.metrics.RecordCounter("rescore_updated_total", 1, labels)
	return true, nil
}

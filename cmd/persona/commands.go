package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-persona/infrastructure/middleware"
	"github.com/ahrav/go-persona/internal/application"
	"github.com/ahrav/go-persona/internal/domain"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Load themes, questions and profiles from a catalog into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(args[0])
			if err != nil {
				return err
			}
			b, err := a.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			report, err := b.store.Seed(cmd.Context(), catalog)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			a.logger.Info("catalog seeded",
				zap.String("path", args[0]),
				zap.Int("themes", report.Themes),
				zap.Int("questions", report.Questions),
				zap.Int("profiles", report.Profiles),
			)
			return a.printJSON(report)
		},
	}
}

func newScoreCmd(a *app) *cobra.Command {
	var (
		themeID     string
		answersPath string
		name        string
		public      bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score answers for a theme, storing the result when --name is given",
		Long: `Reads answers as a JSON array of {"code": ..., "option": ...} objects and
prints the computed outcome. With --name the submission is also stored and the
stored result is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers, err := readAnswers(answersPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			b, err := a.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			cache, err := application.NewQuestionCache(b.questions, a.cfg.CacheSize)
			if err != nil {
				return err
			}
			scorer, err := application.NewScorer(cache, b.profiles, b.results, a.options()...)
			if err != nil {
				return err
			}

			if name == "" {
				outcome, err := scorer.Score(cmd.Context(), themeID, answers)
				if err != nil {
					return err
				}
				return a.printJSON(outcome)
			}

			result, err := scorer.Submit(cmd.Context(), application.Submission{
				ThemeID: themeID,
				Name:    name,
				Answers: answers,
				Public:  public,
			})
			if err != nil {
				return err
			}
			return a.printJSON(result)
		},
	}
	cmd.Flags().StringVar(&themeID, "theme", "", "theme id to score against")
	cmd.Flags().StringVar(&answersPath, "answers", "-", "answers JSON file, or - for stdin")
	cmd.Flags().StringVar(&name, "name", "", "respondent name; stores the result when set")
	cmd.Flags().BoolVar(&public, "public", false, "mark the stored result as public")
	_ = cmd.MarkFlagRequired("theme")
	return cmd
}

func newRescoreCmd(a *app) *cobra.Command {
	var (
		opts      application.RescoreOptions
		maxWrites float64
	)
	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Recompute stored results against the current question banks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if maxWrites < 0 {
				return errors.New("--max-writes must not be negative")
			}
			var extra []middleware.StoreMiddleware
			if maxWrites > 0 {
				extra = append(extra, middleware.RateLimitMiddleware(rate.Limit(maxWrites), 1))
			}
			b, err := a.openBackend(extra...)
			if err != nil {
				return err
			}
			defer b.Close()

			cache, err := application.NewQuestionCache(b.questions, a.cfg.CacheSize)
			if err != nil {
				return err
			}
			rescorer, err := application.NewRescorer(cache, b.profiles, b.results, a.options()...)
			if err != nil {
				return err
			}
			report, err := rescorer.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.printJSON(report)
		},
	}
	cmd.Flags().StringVar(&opts.ThemeID, "theme", "", "only rescore results of this theme")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "count changes without writing them")
	cmd.Flags().Float64Var(&maxWrites, "max-writes", 0, "limit result updates per second (0 = unlimited)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <result-id>",
		Short: "Print a stored result with its current profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			cache, err := application.NewQuestionCache(b.questions, a.cfg.CacheSize)
			if err != nil {
				return err
			}
			scorer, err := application.NewScorer(cache, b.profiles, b.results, a.options()...)
			if err != nil {
				return err
			}
			result, err := scorer.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(result)
		},
	}
}

func readAnswers(path string, stdin io.Reader) ([]domain.Answer, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}

	var answers []domain.Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("answers must be a JSON array of {code, option}: %w", err)
	}
	return answers, nil
}

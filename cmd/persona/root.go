package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ahrav/go-persona/infrastructure/middleware"
	"github.com/ahrav/go-persona/infrastructure/sqlite"
	"github.com/ahrav/go-persona/internal/application"
	"github.com/ahrav/go-persona/internal/config"
	"github.com/ahrav/go-persona/internal/ports"
)

// app carries the state shared by subcommands once configuration is loaded.
type app struct {
	out      io.Writer
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  ports.MetricsCollector
	server   *http.Server
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "persona",
		Short: "Personality-type scoring engine",
		Long: `persona scores questionnaire answers into four-letter personality types.

Question banks and profiles are seeded from a YAML catalog into a SQLite
database. Submissions are scored against the current bank, and stored results
can be rescored after the bank changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.shutdown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default .personarc.yaml in the working directory)")
	flags.String("db", "", "SQLite database path")
	flags.String("catalog", "", "YAML catalog to read questions and profiles from instead of the database")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while the command runs")

	bindings := map[string]string{
		"db_path":      "db",
		"catalog":      "catalog",
		"log_level":    "log-level",
		"verbose":      "verbose",
		"metrics_addr": "metrics-addr",
	}
	for key, flag := range bindings {
		// Only bound flags the user set override file and environment values.
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newSeedCmd(a),
		newScoreCmd(a),
		newRescoreCmd(a),
		newShowCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	a.logger = logger

	a.registry = prometheus.NewRegistry()
	a.metrics = middleware.NewPrometheusMetrics(a.registry)
	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}
	return nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	// Command output goes to stdout; logs stay on stderr.
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("addr", addr))
}

func (a *app) shutdown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.server.Shutdown(ctx)
		cancel()
	}
	_ = a.logger.Sync()
}

// Writes that hit a locked database are retried with backoff.
const (
	writeRetries    = 3
	writeRetryDelay = 20 * time.Millisecond
	writeRetryMax   = 500 * time.Millisecond
)

// backend is the set of sources a command works against.
type backend struct {
	store     *sqlite.Store
	questions ports.QuestionSource
	profiles  ports.ProfileSource
	results   ports.ResultStore
}

func (b *backend) Close() error { return b.store.Close() }

// openBackend opens the database and, when a catalog is configured, uses it
// as the question and profile source in place of the database.
// Extra middlewares wrap the result store outside tracing and retries.
func (a *app) openBackend(extra ...middleware.StoreMiddleware) (*backend, error) {
	store, err := sqlite.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.cfg.DBPath, err)
	}
	mws := append(append([]middleware.StoreMiddleware(nil), extra...),
		middleware.TracingMiddleware(otel.Tracer("persona")),
		middleware.RetryMiddleware(writeRetries, writeRetryDelay, writeRetryMax),
	)
	b := &backend{
		store:     store,
		questions: store,
		profiles:  store,
		results:   middleware.ChainStore(store, mws...),
	}

	if a.cfg.Catalog != "" {
		catalog, err := loadCatalog(a.cfg.Catalog)
		if err != nil {
			store.Close()
			return nil, err
		}
		b.questions, b.profiles = catalog, catalog
		a.logger.Debug("using catalog as question source", zap.String("path", a.cfg.Catalog))
	}
	return b, nil
}

func (a *app) options() []application.Option {
	return []application.Option{
		application.WithLogger(a.logger),
		application.WithMetrics(a.metrics),
	}
}

func loadCatalog(path string) (*application.Catalog, error) {
	loader, err := application.NewCatalogLoader()
	if err != nil {
		return nil, err
	}
	catalog, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return catalog, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

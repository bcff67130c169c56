package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/openfroyo/lzconfig/pkg/policy"
	"github.com/openfroyo/lzconfig/pkg/stores"
	"github.com/openfroyo/lzconfig/pkg/telemetry"
	"github.com/spf13/cobra"
)

// ErrInvalid is returned once the validation report has been printed.
var ErrInvalid = errors.New("configuration is invalid")

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	logLevel      string
	logFormat     string
	traceExporter string
	traceEndpoint string
	historyDB     string
	metricsAddr   string
	policyPaths   []string
	noPolicies    bool
	jsonOutput    bool

	version string

	tel *telemetry.Telemetry
}

// Execute runs the root command with args (without the program name).
func Execute(ctx context.Context, args []string, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &globalOptions{version: version}

	rootCmd := &cobra.Command{
		Use:   "lzconfig",
		Short: "lzconfig - landing zone global configuration validator",
		Long: `lzconfig loads, defaults and validates the global-config.yaml document of a
landing zone deployment.

Features:
  - Typed schema with aggregated structural errors
  - Partition-aware home region checks
  - Organization policies in Rego (OPA)
  - Validation history in SQLite
  - Prometheus metrics and OpenTelemetry tracing`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupTelemetry()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.shutdown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "console", "log format (console, json)")
	flags.StringVar(&opts.traceExporter, "trace-exporter", "none", "trace exporter (none, stdout, otlp)")
	flags.StringVar(&opts.traceEndpoint, "trace-endpoint", "localhost:4317", "OTLP collector endpoint")
	flags.StringVar(&opts.historyDB, "history-db", "lzconfig.db", "validation history database path")
	flags.StringSliceVar(&opts.policyPaths, "policy", nil, "additional Rego policy files or directories")
	flags.BoolVar(&opts.noPolicies, "no-policies", false, "skip organization policy evaluation")
	flags.BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newShowCommand(opts))
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newWatchCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newPoliciesCommand(opts))

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// telemetryConfig maps the persistent flags onto a telemetry configuration.
func (o *globalOptions) telemetryConfig() *telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = o.version
	cfg.Logging.Level = o.logLevel
	cfg.Logging.Format = o.logFormat
	cfg.Tracing.Exporter = o.traceExporter
	cfg.Tracing.Enabled = o.traceExporter != "" && o.traceExporter != "none"
	cfg.Tracing.Endpoint = o.traceEndpoint
	if o.metricsAddr != "" {
		cfg.Metrics.ListenAddress = o.metricsAddr
	}
	return cfg
}

func (o *globalOptions) setupTelemetry() error {
	tel, err := telemetry.NewTelemetry(o.telemetryConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	o.tel = tel
	return nil
}

func (o *globalOptions) shutdown() error {
	if o.tel == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := o.tel.Shutdown(ctx)
	o.tel = nil
	return err
}

// policyEngine builds the policy engine with the built-in and user policies.
func (o *globalOptions) policyEngine(ctx context.Context) (*policy.Engine, error) {
	engine, err := policy.NewEngine(o.tel.Logger.Zerolog(),
		policy.WithEngineTracer(o.tel.Tracer),
		policy.WithEngineMetrics(o.tel.Metrics),
	)
	if err != nil {
		return nil, err
	}

	if len(o.policyPaths) > 0 {
		if err := engine.LoadPolicies(ctx, o.policyPaths); err != nil {
			return nil, fmt.Errorf("failed to load policies: %w", err)
		}
	}
	return engine, nil
}

// newLoader builds a configuration loader wired to telemetry and, unless
// disabled, the policy engine. The engine is nil when policies are off.
func (o *globalOptions) newLoader(ctx context.Context) (*config.Loader, *policy.Engine, error) {
	loaderOpts := []config.Option{
		config.WithLogger(o.tel.Logger.Zerolog()),
		config.WithMetrics(o.tel.Metrics),
		config.WithTracer(o.tel.Tracer),
	}

	var engine *policy.Engine
	if !o.noPolicies {
		var err error
		engine, err = o.policyEngine(ctx)
		if err != nil {
			return nil, nil, err
		}
		loaderOpts = append(loaderOpts, config.WithRules(engine.Rule()))
	}

	return config.NewLoader(loaderOpts...), engine, nil
}

// openStore opens and migrates the validation history database.
func (o *globalOptions) openStore(ctx context.Context) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{Path: o.historyDB})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

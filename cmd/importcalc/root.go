package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/importcalc/internal/config"
	"github.com/Simplici0/importcalc/internal/currency"
	"github.com/Simplici0/importcalc/internal/db"
	"github.com/Simplici0/importcalc/internal/llm"
	"github.com/Simplici0/importcalc/internal/logging"
	"github.com/Simplici0/importcalc/internal/migrations"
	"github.com/Simplici0/importcalc/internal/pricing"
	"github.com/Simplici0/importcalc/internal/seed"
	"github.com/Simplici0/importcalc/internal/store"
	"github.com/Simplici0/importcalc/internal/vehicle"
)

// keptSnapshots bounds the rate history kept in sqlite; only the latest row is ever read.
const keptSnapshots = 100

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "importcalc",
		Short: "Landed-cost calculator for vehicles imported from Dubai into the EU",
		Long: `importcalc compares the free zone, standard and BPM-exempt import routes
for a vehicle shipped from Dubai to Rotterdam.

Examples:
  importcalc serve
  importcalc estimate --price 20000 --co2 150 --year 2021 --fuel diesel
  importcalc rates`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newEstimateCmd(), newRatesCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	database, err := openDatabase(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	schedule, err := pricing.LoadSchedule(cfg.FeeSchedulePath)
	if err != nil {
		return fmt.Errorf("load fee schedule: %w", err)
	}

	srv, err := newServer(schedule, newRateCache(cfg, database, logger), newAnalyzer(cfg, logger), logger, cfg.ReferenceYear)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	return srv.serve(ctx, cfg.Addr())
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDev(),
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logging: %w", err)
	}
	return cfg, logger, nil
}

// openDatabase opens sqlite, applies migrations, seeds the baseline rates and trims old snapshots.
func openDatabase(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrations.Up(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	stats, err := seed.Run(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}
	pruned, err := store.NewRateStore(database).Prune(ctx, keptSnapshots)
	if err != nil {
		logger.Warn("prune rate snapshots", zap.Error(err))
	}
	logger.Info("database ready",
		zap.String("path", path),
		zap.Int("seeded", stats.Inserts),
		zap.Int64("pruned", pruned))
	return database, nil
}

func newRateCache(cfg config.Config, database *sql.DB, logger *zap.Logger) *currency.Cache {
	opts := []currency.Option{
		currency.WithTTL(cfg.RatesTTL),
		currency.WithLogger(logger.Named("rates")),
	}
	if database != nil {
		opts = append(opts, currency.WithStore(store.NewRateStore(database)))
	}
	return currency.NewCache(currency.NewHTTPProvider(cfg.RatesURL, cfg.RatesTimeout), opts...)
}

// newAnalyzer returns nil when no credential is configured; the AI endpoints then answer 503.
func newAnalyzer(cfg config.Config, logger *zap.Logger) *vehicle.Analyzer {
	if !cfg.AIEnabled() {
		logger.Info("vision model disabled: ANTHROPIC_API_KEY is not set")
		return nil
	}
	client, err := llm.NewAnthropic(llm.AnthropicConfig{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.AIMaxTokens,
		Timeout:   cfg.AITimeout,
	})
	if err != nil {
		logger.Warn("vision model disabled", zap.Error(err))
		return nil
	}
	return vehicle.NewAnalyzer(client)
}

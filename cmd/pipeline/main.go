// Command pipeline runs the full feature synthesis pipeline: staged
// facts in, featured grid and symbol catalog out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"bristolgate/internal/catalog"
	"bristolgate/internal/config"
	"bristolgate/internal/exporter"
	"bristolgate/internal/grid"
	"bristolgate/internal/infrastructure"
	"bristolgate/internal/pipeline"
	"bristolgate/internal/regime"
	"bristolgate/internal/staging"
	"bristolgate/pkg/contracts"
)

func main() {
	outDir := flag.String("out", "", "output directory for CSV artifacts (overrides config)")
	xlsxFiles := flag.String("xlsx", "", "comma-separated workbook paths used as staging sources instead of ClickHouse")
	regimeColumn := flag.String("regime", "", "regime indicator column (overrides config)")
	metricsAddr := flag.String("metrics", "", "listen address for the Prometheus endpoint (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Pipeline.OutputDir = *outDir
	}
	if *regimeColumn != "" {
		cfg.Pipeline.RegimeColumn = *regimeColumn
	}
	if *metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = *metricsAddr
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	metricsSrv, err := providers.ServeMetrics(cfg.Telemetry.MetricsAddr)
	if err != nil {
		logger.Error("Failed to start metrics endpoint", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if err := metricsSrv.Shutdown(context.Background()); err != nil {
			logger.Warn("Metrics endpoint shutdown failed", "error", err)
		}
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	if err := run(ctx, cfg, providers, *xlsxFiles); err != nil {
		logger.ErrorContext(ctx, "Pipeline run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, xlsxFiles string) error {
	sources, store, cleanup, err := buildStaging(cfg, xlsxFiles)
	if err != nil {
		return err
	}
	defer cleanup()

	startDate, err := cfg.Pipeline.StartTime()
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	var regimeOpts []regime.Option
	if cfg.Pipeline.JitterSeed != 0 {
		regimeOpts = append(regimeOpts, regime.WithJitterSeed(cfg.Pipeline.JitterSeed))
	}

	stages := pipeline.DefaultStages(sources, pipeline.StagesConfig{
		Build: grid.BuildOptions{
			RegimeColumn: cfg.Pipeline.RegimeColumn,
			MinDate:      startDate,
		},
		Definitions:       catalog.Definitions(),
		DomainDefinitions: catalog.DomainDefinitions(),
		Workers:           cfg.Pipeline.Workers,
		YearLength:        cfg.Pipeline.YearLength,
		RegimeColumn:      cfg.Pipeline.RegimeColumn,
		RegimeOptions:     regimeOpts,
		Exporter:          exporter.NewGridCSVStore(cfg.Pipeline.OutputDir),
	})

	var managerOpts []pipeline.ManagerOption
	if providers.Meter != nil {
		metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return fmt.Errorf("creating pipeline metrics: %w", err)
		}
		managerOpts = append(managerOpts, pipeline.WithMetrics(metrics))
	}
	if providers.Tracer != nil {
		managerOpts = append(managerOpts, pipeline.WithTracer(providers.Tracer))
	}

	state, report, err := pipeline.NewManager(stages, managerOpts...).Run(ctx, store)
	if err != nil {
		return err
	}

	for _, path := range state.Artifacts {
		fmt.Println(path)
	}
	slog.InfoContext(ctx, "run summary",
		slog.String("run_id", report.RunID),
		slog.Int("facts", state.FactsLoaded),
		slog.Int("series_created", state.Aggregation.Created),
		slog.Int("domain_series_created", state.Domain.Created),
		slog.Int("features_created", state.Features.Created),
		slog.Int("features_skipped", state.Features.Skipped),
		slog.Int("regime_episodes", state.Regime.Episodes),
		slog.Duration("duration", report.Duration))
	return nil
}

// buildStaging wires fact sources and the catalog store. Workbook
// paths on the command line replace the ClickHouse staging tables and
// pair with an in-memory catalog.
func buildStaging(cfg *config.Config, xlsxFiles string) ([]staging.FactSource, staging.CatalogStore, func(), error) {
	if xlsxFiles != "" {
		var sources []staging.FactSource
		for _, path := range strings.Split(xlsxFiles, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			symbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			sources = append(sources, staging.NewWorkbookSource(path, symbol))
		}
		if len(sources) == 0 {
			return nil, nil, nil, fmt.Errorf("no usable workbook paths in -xlsx")
		}
		return sources, staging.NewMemoryCatalog(), func() {}, nil
	}

	if len(cfg.ClickHouse.QuoteTables) == 0 && len(cfg.ClickHouse.MetricTables) == 0 {
		return nil, nil, nil, fmt.Errorf("no staging sources configured: set clickhouse tables or pass -xlsx")
	}

	client, err := staging.NewClient(
		staging.WithHost(cfg.ClickHouse.Host),
		staging.WithPort(cfg.ClickHouse.Port),
		staging.WithDatabase(cfg.ClickHouse.Database),
		staging.WithCredentials(cfg.ClickHouse.Username, cfg.ClickHouse.Password),
		staging.WithMaxConnections(cfg.ClickHouse.MaxConnections, cfg.ClickHouse.MaxConnections/2),
		staging.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to clickhouse: %w", err)
	}

	var sources []staging.FactSource
	for _, table := range cfg.ClickHouse.QuoteTables {
		sources = append(sources, staging.NewQuoteTableSource(client, table))
	}
	for _, table := range cfg.ClickHouse.MetricTables {
		sources = append(sources, staging.NewMetricTableSource(client, table))
	}

	store := staging.NewClickHouseCatalog(client, cfg.ClickHouse.SymbolTable)
	cleanup := func() { _ = client.Close() }
	return sources, store, cleanup, nil
}

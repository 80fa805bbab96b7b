package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/conviction/internal/clients/dart"
	"github.com/aristath/conviction/internal/clients/ebest"
	"github.com/aristath/conviction/internal/clients/krx"
	"github.com/aristath/conviction/internal/config"
	"github.com/aristath/conviction/internal/database"
	"github.com/aristath/conviction/internal/modules/reports"
	reporthandlers "github.com/aristath/conviction/internal/modules/reports/handlers"
	"github.com/aristath/conviction/internal/modules/risk"
	"github.com/aristath/conviction/internal/modules/scoring"
	"github.com/aristath/conviction/internal/modules/universe"
	universehandlers "github.com/aristath/conviction/internal/modules/universe/handlers"
	"github.com/aristath/conviction/internal/modules/valuation"
	valuationhandlers "github.com/aristath/conviction/internal/modules/valuation/handlers"
	"github.com/aristath/conviction/internal/reliability"
	"github.com/aristath/conviction/internal/scheduler"
	"github.com/aristath/conviction/internal/server"
	"github.com/aristath/conviction/internal/services"
	"github.com/aristath/conviction/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		errLog := logger.New("error", false)
		errLog.Fatal().Err(err).Msg("configuration invalid")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	log.Info().Msg("starting conviction server")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
	}

	universeDB, err := database.New(cfg.UniverseDBPath, database.ProfileStandard)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open universe database")
	}
	defer universeDB.Close()
	if err := database.InitUniverseSchema(universeDB); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize universe schema")
	}

	reportsDB, err := database.New(cfg.ReportsDBPath, database.ProfileAppend)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open reports database")
	}
	defer reportsDB.Close()
	if err := database.InitReportsSchema(reportsDB); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize reports schema")
	}

	// Repositories and the valuation policy registry.
	universeRepo := universe.NewRepository(universeDB, log)
	reportsRepo := reports.NewRepository(reportsDB, log)
	registry := valuation.NewOverrideRegistry()
	if err := universeRepo.LoadRegistry(context.Background(), registry); err != nil {
		log.Fatal().Err(err).Msg("failed to load valuation policies")
	}

	// External data providers.
	timeout := time.Duration(cfg.HTTPTimeoutSecs) * time.Second
	marketClient := krx.New(cfg.MarketAPIBaseURL, timeout, log)
	// Filing registry first, brokerage statements as the fallback source.
	filingChain := services.NewFilingChain(log).
		Append("dart", dart.New(cfg.FilingAPIBaseURL, cfg.FilingAPIKey, timeout, log)).
		Append("ebest", ebest.New(cfg.BrokerAPIBaseURL, cfg.BrokerAPIKey, timeout, log))

	// Engines and pipeline.
	valuationEngine := valuation.NewEngine(valuation.DefaultConfig(), registry, log)
	riskEngine := risk.NewEngine(risk.DefaultConfig(), log)
	aggregator := scoring.NewAggregator(scoring.DefaultConfig(), log)
	markdown := reports.NewMarkdownWriter(cfg.ReportsDir, log)

	analysisService := services.NewAnalysisService(
		services.AnalysisConfig{
			FiscalYear:        cfg.FiscalYear,
			HistoryDays:       cfg.HistoryDays,
			StalenessWarnDays: cfg.StalenessWarnDays,
			StalenessMaxDays:  cfg.StalenessMaxDays,
			BatchConcurrency:  cfg.BatchConcurrency,
		},
		marketClient, filingChain, universeRepo,
		valuationEngine, riskEngine, aggregator,
		reportsRepo, markdown, log,
	)

	var backupService scheduler.Backupper
	if cfg.BackupEnabled {
		svc, err := reliability.NewBackupService(context.Background(), reliability.BackupConfig{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Retention: cfg.BackupRetention,
		}, []*database.DB{universeDB, reportsDB}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize backup service")
		}
		backupService = svc
	}

	sched := scheduler.New(scheduler.Config{
		AnalysisCron: cfg.AnalysisCron,
		BackupCron:   cfg.BackupCron,
	}, analysisService, backupService, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	srv := server.New(server.Config{Host: cfg.Host, Port: cfg.Port}, server.Handlers{
		Valuation: valuationhandlers.NewHandler(registry, universeRepo, log),
		Reports:   reporthandlers.NewHandler(reportsRepo, log),
		Universe:  universehandlers.NewHandler(universeRepo, log),
		Analysis:  server.NewAnalysisHandler(analysisService, log),
		System:    server.NewSystemHandler([]*database.DB{universeDB, reportsDB}, log),
	}, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// Package scheduler runs the recurring batch jobs.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/services"
	"github.com/aristath/conviction/pkg/logger"
)

// Backupper is what the scheduler needs from the backup service.
type Backupper interface {
	Run(ctx context.Context) error
}

// Config holds the cron expressions (with seconds field).
type Config struct {
	AnalysisCron string
	BackupCron   string
}

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	analysis *services.AnalysisService
	backup   Backupper
	log      zerolog.Logger
}

// New creates a scheduler. backup may be nil when backups are disabled.
func New(cfg Config, analysis *services.AnalysisService, backup Backupper, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		analysis: analysis,
		backup:   backup,
		log:      logger.Service(log, "scheduler"),
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.AnalysisCron, s.runAnalysis); err != nil {
		return err
	}
	if s.backup != nil {
		if _, err := s.cron.AddFunc(s.cfg.BackupCron, s.runBackup); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.log.Info().
		Str("analysis_cron", s.cfg.AnalysisCron).
		Bool("backup_enabled", s.backup != nil).
		Msg("scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runAnalysis() {
	s.log.Info().Msg("scheduled batch analysis starting")
	result, err := s.analysis.AnalyzeAll(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled batch analysis failed")
		return
	}
	s.log.Info().
		Int("analyzed", result.Analyzed).
		Int("failed", result.Failed).
		Msg("scheduled batch analysis finished")
}

func (s *Scheduler) runBackup() {
	s.log.Info().Msg("scheduled backup starting")
	if err := s.backup.Run(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("scheduled backup failed")
	}
}

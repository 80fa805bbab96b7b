package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopBackup struct{}

func (noopBackup) Run(context.Context) error { return nil }

func TestStartRejectsBadCron(t *testing.T) {
	s := New(Config{AnalysisCron: "not a cron"}, nil, nil, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStartRejectsBadBackupCron(t *testing.T) {
	cfg := Config{AnalysisCron: "0 30 18 * * 1-5", BackupCron: "never"}
	s := New(cfg, nil, noopBackup{}, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	// Schedules far in the future so no job fires during the test.
	cfg := Config{AnalysisCron: "0 0 0 1 1 *", BackupCron: "0 0 0 1 1 *"}
	s := New(cfg, nil, noopBackup{}, zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}

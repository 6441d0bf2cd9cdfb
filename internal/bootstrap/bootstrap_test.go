package bootstrap_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamberlog/internal/bootstrap"
	"chamberlog/internal/modules/timeline/domain"
	"chamberlog/internal/platform/config"
	apperrors "chamberlog/internal/platform/errors"
)

func newApp(t *testing.T, dataDir string) *bootstrap.App {
	t.Helper()
	cfg, err := config.Load(dataDir)
	require.NoError(t, err)
	app, err := bootstrap.New(cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestCLIActionsPersistAcrossProcesses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dataDir := t.TempDir()

	first := newApp(t, dataDir)
	_, err := first.TimelineCLI.Board(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)

	created, err := first.TimelineCLI.NewSession(ctx, "drill-1", 0)
	require.NoError(t, err)
	assert.True(t, created.Created)
	_, err = first.TimelineCLI.SetEvent(ctx, "inicio_hipoxia", "10:00:00")
	require.NoError(t, err)
	_, err = first.TimelineCLI.SetEvent(ctx, "fin_hipoxia", "10:04:30")
	require.NoError(t, err)
	_, err = first.TimelineCLI.SetParticipant(ctx, "3", "00:03:10")
	require.NoError(t, err)

	second := newApp(t, dataDir)
	current, err := second.TimelineCLI.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "drill-1", current)
	board, err := second.TimelineCLI.Board(ctx)
	require.NoError(t, err)
	assert.False(t, board.Dirty)
	for _, row := range board.Totals {
		if row.ID == domain.RuleHypoxia {
			assert.Equal(t, "00:04:30", row.Value)
		}
	}
	assert.Equal(t, "00:03:10", board.Participants[2].Value)

	sessions, err := second.ArchiveCLI.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "drill-1", sessions[0].SessionID)

	exported, err := second.TimelineCLI.Export(ctx)
	require.NoError(t, err)
	assert.FileExists(t, exported.Path)
}

func TestCLIRejectsBadInputWithoutSaving(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dataDir := t.TempDir()
	app := newApp(t, dataDir)
	_, err := app.TimelineCLI.NewSession(ctx, "", 4)
	require.NoError(t, err)

	_, err = app.TimelineCLI.SetEvent(ctx, "inicio_hipoxia", "25:00:00")
	require.ErrorIs(t, err, apperrors.ErrInvalidFormat)
	_, err = app.TimelineCLI.CalculateParticipant(ctx, "1")
	require.ErrorIs(t, err, apperrors.ErrMissingReference)

	sessions, err := app.ArchiveCLI.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestBuildProfileFromConfig(t *testing.T) {
	t.Parallel()
	p, err := bootstrap.BuildProfile(nil)
	require.NoError(t, err)
	assert.Len(t, p.Roster, 8)

	round, err := bootstrap.BuildProfile(bootstrap.ProfileConfig(p))
	require.NoError(t, err)
	assert.Equal(t, p.Events, round.Events)
	assert.Equal(t, p.Rules, round.Rules)
	assert.Equal(t, p.Reference, round.Reference)

	_, err = bootstrap.BuildProfile(&config.ProfileConfig{
		Events:    []config.EventConfig{{Key: "a"}},
		Rules:     []config.RuleConfig{{ID: "r", Start: "a", End: "missing"}},
		Roster:    []string{"1"},
		Reference: "a",
	})
	require.Error(t, err)
}

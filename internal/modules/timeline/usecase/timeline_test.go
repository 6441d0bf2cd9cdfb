package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	archivedto "chamberlog/internal/modules/archive/dto"
	"chamberlog/internal/modules/timeline/domain"
	"chamberlog/internal/modules/timeline/dto"
	timelinein "chamberlog/internal/modules/timeline/port/in"
	"chamberlog/internal/modules/timeline/service"
	"chamberlog/internal/modules/timeline/usecase"
	"chamberlog/internal/platform/clock"
	apperrors "chamberlog/internal/platform/errors"
	"chamberlog/internal/platform/logging"
)

type fakeArchive struct {
	snapshots map[string]archivedto.SnapshotOutput
	saves     int
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{snapshots: map[string]archivedto.SnapshotOutput{}}
}

func (f *fakeArchive) Save(_ context.Context, input archivedto.SaveInput) (archivedto.SnapshotOutput, error) {
	f.saves++
	out := archivedto.SnapshotOutput{
		SessionID:           input.SessionID,
		Path:                "/sessions/" + input.SessionID + ".json",
		EventTimes:          input.EventTimes,
		ParticipantEndTimes: input.ParticipantEndTimes,
		ManualElapsed:       input.ManualElapsed,
		ComputedTotals:      input.ComputedTotals,
	}
	f.snapshots[input.SessionID] = out
	return out, nil
}

func (f *fakeArchive) Load(_ context.Context, sessionID string) (archivedto.SnapshotOutput, error) {
	snap, ok := f.snapshots[sessionID]
	if !ok {
		return archivedto.SnapshotOutput{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, sessionID)
	}
	return snap, nil
}

func (f *fakeArchive) Delete(context.Context, string) error { return nil }

func (f *fakeArchive) List(context.Context, archivedto.ListInput) ([]archivedto.SummaryOutput, error) {
	return nil, nil
}

func (f *fakeArchive) Reindex(context.Context) error { return nil }

func (f *fakeArchive) DeriveID(_ context.Context, input archivedto.DeriveIDInput) (string, error) {
	if input.Explicit != "" {
		return input.Explicit, nil
	}
	if input.Number <= 0 {
		return "", apperrors.ErrInvalidInput
	}
	return fmt.Sprintf("%d-26", input.Number), nil
}

type fakeCurrent struct {
	current *domain.CurrentSession
}

func (f *fakeCurrent) SaveCurrent(_ context.Context, current domain.CurrentSession) error {
	f.current = &current
	return nil
}

func (f *fakeCurrent) LoadCurrent(context.Context) (domain.CurrentSession, error) {
	if f.current == nil {
		return domain.CurrentSession{}, apperrors.ErrNoCurrentSession
	}
	return *f.current, nil
}

func (f *fakeCurrent) ClearCurrent(context.Context) error {
	f.current = nil
	return nil
}

type fakeExporter struct {
	reports []domain.Report
}

func (f *fakeExporter) Export(_ context.Context, report domain.Report) (string, error) {
	f.reports = append(f.reports, report)
	return "/reports/" + report.SessionID + ".md", nil
}

type harness struct {
	usecase  timelinein.Usecase
	clock    *clock.FakeClock
	archive  *fakeArchive
	current  *fakeCurrent
	exporter *fakeExporter
}

func newHarness(t *testing.T) harness {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local))
	engine := service.NewEngine(domain.DefaultProfile(), clk, logging.Discard(), time.Second)
	h := harness{clock: clk, archive: newFakeArchive(), current: &fakeCurrent{}, exporter: &fakeExporter{}}
	h.usecase = usecase.NewInteractor(engine, h.archive, h.current, h.exporter, clk, logging.Discard())
	return h
}

func eventRow(board dto.BoardOutput, key string) dto.EventRow {
	for _, row := range board.Events {
		if row.Key == key {
			return row
		}
	}
	return dto.EventRow{}
}

func totalRow(board dto.BoardOutput, id string) dto.TotalRow {
	for _, row := range board.Totals {
		if row.ID == id {
			return row
		}
	}
	return dto.TotalRow{}
}

func TestNewSessionStartsEmptyAndRemembersCurrent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.usecase.NewSession(ctx, dto.NewSessionInput{Number: 5})
	require.NoError(t, err)
	assert.Equal(t, "5-26", out.SessionID)
	assert.True(t, out.Created)
	assert.False(t, out.Board.Dirty)
	assert.Equal(t, domain.Placeholder, eventRow(out.Board, "inicio_hipoxia").Value)
	assert.Equal(t, domain.ZeroDuration, totalRow(out.Board, domain.RuleHypoxia).Value)
	require.NotNil(t, h.current.current)
	assert.Equal(t, "5-26", h.current.current.SessionID)

	_, err = h.usecase.NewSession(ctx, dto.NewSessionInput{})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestOpenRejectedWhileDirtyUnlessForced(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.usecase.Open(ctx, dto.OpenInput{SessionID: "1-26"})
	require.NoError(t, err)
	_, err = h.usecase.RecordEvent(ctx, "inicio_hipoxia")
	require.NoError(t, err)

	_, err = h.usecase.Open(ctx, dto.OpenInput{SessionID: "2-26"})
	require.ErrorIs(t, err, apperrors.ErrUnsavedChanges)
	current, err := h.usecase.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1-26", current)

	out, err := h.usecase.Open(ctx, dto.OpenInput{SessionID: "2-26", Force: true})
	require.NoError(t, err)
	assert.False(t, out.Board.Dirty)
	assert.False(t, eventRow(out.Board, "inicio_hipoxia").Set)
}

func TestSaveThenOpenRestoresState(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.usecase.Open(ctx, dto.OpenInput{SessionID: "3-26"})
	require.NoError(t, err)
	_, err = h.usecase.RecordEvent(ctx, "inicio_hipoxia")
	require.NoError(t, err)
	h.clock.Set(time.Date(2026, 3, 2, 10, 4, 30, 0, time.Local))
	_, err = h.usecase.CalculateParticipant(ctx, "1")
	require.NoError(t, err)
	_, err = h.usecase.SetEvent(ctx, dto.EventInput{Key: "fin_hipoxia", Value: "10:04:30"})
	require.NoError(t, err)

	saved, err := h.usecase.Save(ctx)
	require.NoError(t, err)
	assert.True(t, saved.Clean)
	assert.Equal(t, "/sessions/3-26.json", saved.Path)
	board, err := h.usecase.Board(ctx)
	require.NoError(t, err)
	assert.False(t, board.Dirty)

	stored := h.archive.snapshots["3-26"]
	assert.Equal(t, "10:00:00", stored.EventTimes["inicio_hipoxia"])
	assert.Equal(t, "10:04:30", stored.ParticipantEndTimes["1"])
	assert.Equal(t, "00:04:30", stored.ComputedTotals[domain.RuleHypoxia])

	_, err = h.usecase.Open(ctx, dto.OpenInput{SessionID: "other"})
	require.NoError(t, err)
	out, err := h.usecase.Open(ctx, dto.OpenInput{SessionID: "3-26"})
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, "00:04:30", totalRow(out.Board, domain.RuleHypoxia).Value)
	assert.Equal(t, "00:04:30", out.Board.Participants[0].Value)
}

func TestReloadRejectedWhileDirty(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.usecase.Reload(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)

	_, err = h.usecase.Open(ctx, dto.OpenInput{SessionID: "4-26"})
	require.NoError(t, err)
	_, err = h.usecase.RecordEvent(ctx, "ingreso_alumnos")
	require.NoError(t, err)
	_, err = h.usecase.Reload(ctx)
	require.ErrorIs(t, err, apperrors.ErrUnsavedChanges)

	_, err = h.usecase.Save(ctx)
	require.NoError(t, err)
	h.archive.snapshots["4-26"] = archivedto.SnapshotOutput{
		SessionID:  "4-26",
		EventTimes: map[string]string{"ingreso_alumnos": "07:30:00"},
	}
	out, err := h.usecase.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "07:30:00", eventRow(out.Board, "ingreso_alumnos").Value)
}

func TestSetEventFormatErrorReturnsPreviousValue(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.usecase.Open(ctx, dto.OpenInput{SessionID: "5-26"})
	require.NoError(t, err)
	_, err = h.usecase.SetEvent(ctx, dto.EventInput{Key: "inicio_ascenso", Value: "08:15:00"})
	require.NoError(t, err)

	out, err := h.usecase.SetEvent(ctx, dto.EventInput{Key: "inicio_ascenso", Value: "8.15"})
	require.ErrorIs(t, err, apperrors.ErrInvalidFormat)
	assert.Equal(t, "08:15:00", out.Row.Value)
	assert.Equal(t, string(domain.StyleError), out.Row.Style)

	_, err = h.usecase.SetEvent(ctx, dto.EventInput{Key: "nope", Value: "08:15:00"})
	require.ErrorIs(t, err, apperrors.ErrUnknownEvent)
}

func TestCalculateWithoutReferenceLeavesParticipantLive(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.usecase.Open(ctx, dto.OpenInput{SessionID: "6-26"})
	require.NoError(t, err)

	out, err := h.usecase.CalculateParticipant(ctx, "2")
	require.ErrorIs(t, err, apperrors.ErrMissingReference)
	assert.Equal(t, domain.Placeholder, out.Row.Value)
	assert.False(t, out.Board.Dirty)
}

func TestExportHandsFullyDefinedReport(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.usecase.Export(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)

	_, err = h.usecase.Open(ctx, dto.OpenInput{SessionID: "7-26"})
	require.NoError(t, err)
	_, err = h.usecase.RecordEvent(ctx, "inicio_hipoxia")
	require.NoError(t, err)
	out, err := h.usecase.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/reports/7-26.md", out.Path)

	require.Len(t, h.exporter.reports, 1)
	report := h.exporter.reports[0]
	assert.Len(t, report.Totals, 5)
	assert.Equal(t, domain.ZeroDuration, report.Totals[domain.RuleHypoxia])
	assert.Len(t, report.Participants, 8)
	assert.Equal(t, domain.ZeroDuration, report.Participants["8"])
	assert.Equal(t, "10:00:00", report.EventTimes["inicio_hipoxia"])
}

func TestStartLiveDeliversBoardsUntilStopped(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.usecase.Open(ctx, dto.OpenInput{SessionID: "8-26"})
	require.NoError(t, err)
	_, err = h.usecase.RecordEvent(ctx, "inicio_hipoxia")
	require.NoError(t, err)

	var boards []dto.BoardOutput
	stop := h.usecase.StartLive(func(board dto.BoardOutput) { boards = append(boards, board) })
	h.clock.Advance(time.Second)
	require.Len(t, boards, 1)
	assert.True(t, boards[0].Running)
	assert.True(t, boards[0].Participants[0].Live)
	assert.Equal(t, "00:00:01", boards[0].Participants[0].Value)

	stop()
	stop()
	h.clock.Advance(5 * time.Second)
	assert.Len(t, boards, 1)
	board, err := h.usecase.Board(ctx)
	require.NoError(t, err)
	assert.False(t, board.Running)
}

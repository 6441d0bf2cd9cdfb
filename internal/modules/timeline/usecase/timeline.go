package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	archivedto "chamberlog/internal/modules/archive/dto"
	archivein "chamberlog/internal/modules/archive/port/in"
	"chamberlog/internal/modules/timeline/domain"
	"chamberlog/internal/modules/timeline/dto"
	timelinein "chamberlog/internal/modules/timeline/port/in"
	timelineout "chamberlog/internal/modules/timeline/port/out"
	"chamberlog/internal/modules/timeline/service"
	"chamberlog/internal/platform/clock"
	apperrors "chamberlog/internal/platform/errors"
)

type Interactor struct {
	engine   *service.Engine
	archive  archivein.Usecase
	current  timelineout.CurrentSessionStore
	exporter timelineout.ReportExporter
	clock    clock.Clock
	logger   *slog.Logger
}

func NewInteractor(engine *service.Engine, archive archivein.Usecase, current timelineout.CurrentSessionStore, exporter timelineout.ReportExporter, clock clock.Clock, logger *slog.Logger) timelinein.Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{engine: engine, archive: archive, current: current, exporter: exporter, clock: clock, logger: logger}
}

func (i *Interactor) NewSession(ctx context.Context, input dto.NewSessionInput) (dto.SessionOutput, error) {
	id, err := i.archive.DeriveID(ctx, archivedto.DeriveIDInput{Explicit: input.SessionID, Number: input.Number})
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return i.Open(ctx, dto.OpenInput{SessionID: id, Force: input.Force})
}

// Open applies the archived snapshot for the session, or an empty timeline
// when none exists. Unsaved changes block it unless forced.
func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.SessionOutput, error) {
	id := strings.TrimSpace(input.SessionID)
	if id == "" {
		return dto.SessionOutput{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if i.engine.Dirty() && !input.Force {
		return dto.SessionOutput{}, fmt.Errorf("%w: session %s", apperrors.ErrUnsavedChanges, i.engine.SessionID())
	}
	out := dto.SessionOutput{SessionID: id}
	snap, err := i.archive.Load(ctx, id)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		i.engine.Reset(id)
		out.Created = true
	case err != nil:
		return dto.SessionOutput{}, err
	default:
		out.Problems = append(out.Problems, snap.Problems...)
		for _, problem := range i.engine.Restore(id, toState(snap)) {
			out.Problems = append(out.Problems, problem.Error())
		}
	}
	if err := i.current.SaveCurrent(ctx, domain.CurrentSession{SessionID: id, OpenedAt: i.clock.Now()}); err != nil {
		return dto.SessionOutput{}, err
	}
	out.Board = i.board()
	return out, nil
}

func (i *Interactor) Resume(ctx context.Context) (dto.SessionOutput, error) {
	current, err := i.current.LoadCurrent(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return i.Open(ctx, dto.OpenInput{SessionID: current.SessionID})
}

func (i *Interactor) Current(ctx context.Context) (string, error) {
	if id := i.engine.SessionID(); id != "" {
		return id, nil
	}
	current, err := i.current.LoadCurrent(ctx)
	if err != nil {
		return "", err
	}
	return current.SessionID, nil
}

// Reload re-reads the working session from the archive after an external
// change. It never discards unsaved edits.
func (i *Interactor) Reload(ctx context.Context) (dto.SessionOutput, error) {
	id := i.engine.SessionID()
	if id == "" {
		return dto.SessionOutput{}, apperrors.ErrNoCurrentSession
	}
	if i.engine.Dirty() {
		i.logger.Warn("reload rejected with unsaved changes", "session", id)
		return dto.SessionOutput{}, fmt.Errorf("%w: session %s", apperrors.ErrUnsavedChanges, id)
	}
	snap, err := i.archive.Load(ctx, id)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	out := dto.SessionOutput{SessionID: id, Problems: append([]string(nil), snap.Problems...)}
	for _, problem := range i.engine.Restore(id, toState(snap)) {
		out.Problems = append(out.Problems, problem.Error())
	}
	out.Board = i.board()
	return out, nil
}

// Save archives a snapshot. The dirty flag clears only if nothing changed
// while the archive was writing.
func (i *Interactor) Save(ctx context.Context) (dto.SaveOutput, error) {
	id := i.engine.SessionID()
	if id == "" {
		return dto.SaveOutput{}, apperrors.ErrNoCurrentSession
	}
	state, revision := i.engine.Snapshot()
	saved, err := i.archive.Save(ctx, archivedto.SaveInput{
		SessionID:           id,
		EventTimes:          state.EventTimes,
		ParticipantEndTimes: state.ParticipantEndTimes,
		ManualElapsed:       state.ManualElapsed,
		ComputedTotals:      state.ComputedTotals,
	})
	if err != nil {
		return dto.SaveOutput{}, err
	}
	clean := i.engine.MarkSaved(id, revision)
	if !clean {
		i.logger.Info("session changed during save", "session", id)
	}
	return dto.SaveOutput{SessionID: id, SavedAt: saved.SavedAt, Path: saved.Path, Clean: clean}, nil
}

func (i *Interactor) Export(ctx context.Context) (dto.ExportOutput, error) {
	report := i.engine.Report()
	if report.SessionID == "" {
		return dto.ExportOutput{}, apperrors.ErrNoCurrentSession
	}
	path, err := i.exporter.Export(ctx, report)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	i.logger.Info("session exported", "session", report.SessionID, "path", path)
	return dto.ExportOutput{SessionID: report.SessionID, Path: path}, nil
}

func (i *Interactor) RecordEvent(_ context.Context, key string) (dto.EventOutput, error) {
	if _, err := i.engine.RecordEvent(domain.EventKey(key)); err != nil {
		return dto.EventOutput{}, err
	}
	return i.eventOutput(key), nil
}

// SetEvent returns the board even on a format error so the caller can show
// the previous value again.
func (i *Interactor) SetEvent(_ context.Context, input dto.EventInput) (dto.EventOutput, error) {
	_, err := i.engine.SetEventManual(domain.EventKey(input.Key), input.Value)
	if errors.Is(err, apperrors.ErrUnknownEvent) {
		return dto.EventOutput{}, err
	}
	return i.eventOutput(input.Key), err
}

func (i *Interactor) ClearEvent(_ context.Context, key string) (dto.EventOutput, error) {
	if err := i.engine.ClearEvent(domain.EventKey(key)); err != nil {
		return dto.EventOutput{}, err
	}
	return i.eventOutput(key), nil
}

func (i *Interactor) Recompute(_ context.Context) (dto.BoardOutput, error) {
	i.engine.Recompute()
	return i.board(), nil
}

func (i *Interactor) CalculateParticipant(_ context.Context, id string) (dto.ParticipantOutput, error) {
	_, err := i.engine.CalculateParticipant(domain.ParticipantID(id))
	if errors.Is(err, apperrors.ErrUnknownParticipant) {
		return dto.ParticipantOutput{}, err
	}
	return i.participantOutput(id), err
}

func (i *Interactor) SetParticipant(_ context.Context, input dto.ParticipantInput) (dto.ParticipantOutput, error) {
	_, err := i.engine.SetParticipantManual(domain.ParticipantID(input.ID), input.Value)
	if errors.Is(err, apperrors.ErrUnknownParticipant) {
		return dto.ParticipantOutput{}, err
	}
	return i.participantOutput(input.ID), err
}

func (i *Interactor) ResetParticipant(_ context.Context, id string) (dto.ParticipantOutput, error) {
	if err := i.engine.ResetParticipant(domain.ParticipantID(id)); err != nil {
		return dto.ParticipantOutput{}, err
	}
	return i.participantOutput(id), nil
}

func (i *Interactor) Board(_ context.Context) (dto.BoardOutput, error) {
	return i.board(), nil
}

func (i *Interactor) StartLive(listener func(dto.BoardOutput)) func() {
	unsubscribe := i.engine.OnTick(func(board domain.Board) {
		listener(toBoardOutput(board, true))
	})
	i.engine.Start()
	var once sync.Once
	return func() {
		once.Do(func() {
			i.engine.Stop()
			unsubscribe()
		})
	}
}

func (i *Interactor) board() dto.BoardOutput {
	return toBoardOutput(i.engine.Board(), i.engine.Running())
}

func (i *Interactor) eventOutput(key string) dto.EventOutput {
	board := i.board()
	out := dto.EventOutput{Board: board}
	for _, row := range board.Events {
		if row.Key == key {
			out.Row = row
			break
		}
	}
	return out
}

func (i *Interactor) participantOutput(id string) dto.ParticipantOutput {
	board := i.board()
	out := dto.ParticipantOutput{Board: board}
	for _, row := range board.Participants {
		if row.ID == id {
			out.Row = row
			break
		}
	}
	return out
}

func toState(snap archivedto.SnapshotOutput) domain.State {
	return domain.State{
		EventTimes:          snap.EventTimes,
		ParticipantEndTimes: snap.ParticipantEndTimes,
		ManualElapsed:       snap.ManualElapsed,
		ComputedTotals:      snap.ComputedTotals,
	}
}

func toBoardOutput(board domain.Board, running bool) dto.BoardOutput {
	out := dto.BoardOutput{
		SessionID:    board.SessionID,
		Dirty:        board.Dirty,
		Reference:    string(board.Reference),
		ReferenceSet: board.ReferenceSet,
		Running:      running,
		Events:       make([]dto.EventRow, 0, len(board.Events)),
		Totals:       make([]dto.TotalRow, 0, len(board.Totals)),
		Participants: make([]dto.ParticipantRow, 0, len(board.Participants)),
	}
	for _, row := range board.Events {
		value := domain.Placeholder
		if row.Set {
			value = row.Time.String()
		}
		out.Events = append(out.Events, dto.EventRow{Key: string(row.Key), Label: row.Label, Value: value, Set: row.Set, Style: string(row.Style)})
	}
	for _, row := range board.Totals {
		out.Totals = append(out.Totals, dto.TotalRow{ID: row.ID, Label: row.Label, Value: row.Result.String(), Available: row.Result.Available})
	}
	for _, view := range board.Participants {
		value := domain.Placeholder
		if view.Available {
			value = view.Elapsed.String()
		}
		out.Participants = append(out.Participants, dto.ParticipantRow{
			ID:        string(view.Participant),
			Value:     value,
			Available: view.Available,
			Style:     string(view.Style),
			Live:      view.Live,
		})
	}
	return out
}

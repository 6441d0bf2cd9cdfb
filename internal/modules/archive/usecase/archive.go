package usecase

import (
	"context"

	"chamberlog/internal/modules/archive/domain"
	"chamberlog/internal/modules/archive/dto"
	archivein "chamberlog/internal/modules/archive/port/in"
	"chamberlog/internal/modules/archive/service"
)

type Interactor struct {
	svc *service.ArchiveService
}

func NewInteractor(svc *service.ArchiveService) archivein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Save(ctx context.Context, input dto.SaveInput) (dto.SnapshotOutput, error) {
	snap, path, err := i.svc.Save(ctx, domain.Snapshot{
		SessionID:           input.SessionID,
		EventTimes:          input.EventTimes,
		ParticipantEndTimes: input.ParticipantEndTimes,
		ManualElapsed:       input.ManualElapsed,
		ComputedTotals:      input.ComputedTotals,
	})
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	out := toSnapshotOutput(snap, nil)
	out.Path = path
	return out, nil
}

func (i *Interactor) Load(ctx context.Context, sessionID string) (dto.SnapshotOutput, error) {
	snap, problems, err := i.svc.Load(ctx, sessionID)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	return toSnapshotOutput(snap, problems), nil
}

func (i *Interactor) Delete(ctx context.Context, sessionID string) error {
	return i.svc.Delete(ctx, sessionID)
}

func (i *Interactor) List(ctx context.Context, input dto.ListInput) ([]dto.SummaryOutput, error) {
	summaries, err := i.svc.List(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SummaryOutput, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, dto.SummaryOutput{
			SessionID:        s.SessionID,
			SavedAt:          s.SavedAt,
			EventCount:       s.EventCount,
			ParticipantCount: s.ParticipantCount,
			Totals:           s.Totals,
		})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context) error {
	return i.svc.Reindex(ctx)
}

func (i *Interactor) DeriveID(_ context.Context, input dto.DeriveIDInput) (string, error) {
	return i.svc.DeriveID(input.Explicit, input.Number)
}

func toSnapshotOutput(snap domain.Snapshot, problems []error) dto.SnapshotOutput {
	out := dto.SnapshotOutput{
		SessionID:           snap.SessionID,
		SavedAt:             snap.SavedAt,
		EventTimes:          snap.EventTimes,
		ParticipantEndTimes: snap.ParticipantEndTimes,
		ManualElapsed:       snap.ManualElapsed,
		ComputedTotals:      snap.ComputedTotals,
	}
	for _, problem := range problems {
		out.Problems = append(out.Problems, problem.Error())
	}
	return out
}

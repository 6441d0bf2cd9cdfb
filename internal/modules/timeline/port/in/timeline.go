package in

import (
	"context"

	"chamberlog/internal/modules/timeline/dto"
)

type Usecase interface {
	NewSession(ctx context.Context, input dto.NewSessionInput) (dto.SessionOutput, error)
	Open(ctx context.Context, input dto.OpenInput) (dto.SessionOutput, error)
	Resume(ctx context.Context) (dto.SessionOutput, error)
	Current(ctx context.Context) (string, error)
	Reload(ctx context.Context) (dto.SessionOutput, error)
	Save(ctx context.Context) (dto.SaveOutput, error)
	Export(ctx context.Context) (dto.ExportOutput, error)

	RecordEvent(ctx context.Context, key string) (dto.EventOutput, error)
	SetEvent(ctx context.Context, input dto.EventInput) (dto.EventOutput, error)
	ClearEvent(ctx context.Context, key string) (dto.EventOutput, error)
	Recompute(ctx context.Context) (dto.BoardOutput, error)

	CalculateParticipant(ctx context.Context, id string) (dto.ParticipantOutput, error)
	SetParticipant(ctx context.Context, input dto.ParticipantInput) (dto.ParticipantOutput, error)
	ResetParticipant(ctx context.Context, id string) (dto.ParticipantOutput, error)

	Board(ctx context.Context) (dto.BoardOutput, error)

	// StartLive begins live ticking; every refreshed board goes to listener
	// until the returned stop func is called.
	StartLive(listener func(dto.BoardOutput)) (stop func())
}

package in

import (
	"context"

	"chamberlog/internal/modules/timeline/dto"
	timelinein "chamberlog/internal/modules/timeline/port/in"
)

// CLIHandler runs one action per process: it resumes the current session,
// applies the action, and saves.
type CLIHandler struct {
	usecase timelinein.Usecase
}

func NewCLIHandler(usecase timelinein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) NewSession(ctx context.Context, sessionID string, number int) (dto.SessionOutput, error) {
	return h.usecase.NewSession(ctx, dto.NewSessionInput{SessionID: sessionID, Number: number})
}

func (h CLIHandler) Open(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	return h.usecase.Open(ctx, dto.OpenInput{SessionID: sessionID})
}

func (h CLIHandler) Current(ctx context.Context) (string, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Board(ctx context.Context) (dto.BoardOutput, error) {
	if _, err := h.usecase.Resume(ctx); err != nil {
		return dto.BoardOutput{}, err
	}
	return h.usecase.Recompute(ctx)
}

func (h CLIHandler) Export(ctx context.Context) (dto.ExportOutput, error) {
	if _, err := h.usecase.Resume(ctx); err != nil {
		return dto.ExportOutput{}, err
	}
	return h.usecase.Export(ctx)
}

func (h CLIHandler) RecordEvent(ctx context.Context, key string) (dto.EventOutput, error) {
	return saveAfter(ctx, h.usecase, func() (dto.EventOutput, error) {
		return h.usecase.RecordEvent(ctx, key)
	})
}

func (h CLIHandler) SetEvent(ctx context.Context, key, value string) (dto.EventOutput, error) {
	return saveAfter(ctx, h.usecase, func() (dto.EventOutput, error) {
		return h.usecase.SetEvent(ctx, dto.EventInput{Key: key, Value: value})
	})
}

func (h CLIHandler) ClearEvent(ctx context.Context, key string) (dto.EventOutput, error) {
	return saveAfter(ctx, h.usecase, func() (dto.EventOutput, error) {
		return h.usecase.ClearEvent(ctx, key)
	})
}

func (h CLIHandler) CalculateParticipant(ctx context.Context, id string) (dto.ParticipantOutput, error) {
	return saveAfter(ctx, h.usecase, func() (dto.ParticipantOutput, error) {
		return h.usecase.CalculateParticipant(ctx, id)
	})
}

func (h CLIHandler) SetParticipant(ctx context.Context, id, value string) (dto.ParticipantOutput, error) {
	return saveAfter(ctx, h.usecase, func() (dto.ParticipantOutput, error) {
		return h.usecase.SetParticipant(ctx, dto.ParticipantInput{ID: id, Value: value})
	})
}

func (h CLIHandler) ResetParticipant(ctx context.Context, id string) (dto.ParticipantOutput, error) {
	return saveAfter(ctx, h.usecase, func() (dto.ParticipantOutput, error) {
		return h.usecase.ResetParticipant(ctx, id)
	})
}

func saveAfter[T any](ctx context.Context, usecase timelinein.Usecase, action func() (T, error)) (T, error) {
	var zero T
	if _, err := usecase.Resume(ctx); err != nil {
		return zero, err
	}
	out, err := action()
	if err != nil {
		return out, err
	}
	if _, err := usecase.Save(ctx); err != nil {
		return zero, err
	}
	return out, nil
}

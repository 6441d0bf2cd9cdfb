package in

import (
	"context"

	"chamberlog/internal/modules/timeline/dto"
	timelinein "chamberlog/internal/modules/timeline/port/in"
)

// TUIHandler keeps one working session in memory; saving is explicit.
type TUIHandler struct {
	usecase timelinein.Usecase
}

func NewTUIHandler(usecase timelinein.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Resume(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h TUIHandler) NewSession(ctx context.Context, sessionID string, number int, force bool) (dto.SessionOutput, error) {
	return h.usecase.NewSession(ctx, dto.NewSessionInput{SessionID: sessionID, Number: number, Force: force})
}

func (h TUIHandler) Open(ctx context.Context, sessionID string, force bool) (dto.SessionOutput, error) {
	return h.usecase.Open(ctx, dto.OpenInput{SessionID: sessionID, Force: force})
}

func (h TUIHandler) Reload(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.Reload(ctx)
}

func (h TUIHandler) Save(ctx context.Context) (dto.SaveOutput, error) {
	return h.usecase.Save(ctx)
}

func (h TUIHandler) Export(ctx context.Context) (dto.ExportOutput, error) {
	return h.usecase.Export(ctx)
}

func (h TUIHandler) Board(ctx context.Context) (dto.BoardOutput, error) {
	return h.usecase.Board(ctx)
}

func (h TUIHandler) Recompute(ctx context.Context) (dto.BoardOutput, error) {
	return h.usecase.Recompute(ctx)
}

func (h TUIHandler) RecordEvent(ctx context.Context, key string) (dto.EventOutput, error) {
	return h.usecase.RecordEvent(ctx, key)
}

func (h TUIHandler) SetEvent(ctx context.Context, key, value string) (dto.EventOutput, error) {
	return h.usecase.SetEvent(ctx, dto.EventInput{Key: key, Value: value})
}

func (h TUIHandler) ClearEvent(ctx context.Context, key string) (dto.EventOutput, error) {
	return h.usecase.ClearEvent(ctx, key)
}

func (h TUIHandler) CalculateParticipant(ctx context.Context, id string) (dto.ParticipantOutput, error) {
	return h.usecase.CalculateParticipant(ctx, id)
}

func (h TUIHandler) SetParticipant(ctx context.Context, id, value string) (dto.ParticipantOutput, error) {
	return h.usecase.SetParticipant(ctx, dto.ParticipantInput{ID: id, Value: value})
}

func (h TUIHandler) ResetParticipant(ctx context.Context, id string) (dto.ParticipantOutput, error) {
	return h.usecase.ResetParticipant(ctx, id)
}

func (h TUIHandler) StartLive(listener func(dto.BoardOutput)) func() {
	return h.usecase.StartLive(listener)
}

package in

import (
	"context"

	"chamberlog/internal/modules/archive/dto"
	archivein "chamberlog/internal/modules/archive/port/in"
)

type CLIHandler struct {
	usecase archivein.Usecase
}

func NewCLIHandler(usecase archivein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, query string) ([]dto.SummaryOutput, error) {
	return h.usecase.List(ctx, dto.ListInput{Query: query})
}

func (h CLIHandler) Show(ctx context.Context, sessionID string) (dto.SnapshotOutput, error) {
	return h.usecase.Load(ctx, sessionID)
}

func (h CLIHandler) Delete(ctx context.Context, sessionID string) error {
	return h.usecase.Delete(ctx, sessionID)
}

func (h CLIHandler) DeriveID(ctx context.Context, explicit string, number int) (string, error) {
	return h.usecase.DeriveID(ctx, dto.DeriveIDInput{Explicit: explicit, Number: number})
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}

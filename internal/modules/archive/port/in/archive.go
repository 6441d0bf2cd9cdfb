package in

import (
	"context"

	"chamberlog/internal/modules/archive/dto"
)

type Usecase interface {
	Save(ctx context.Context, input dto.SaveInput) (dto.SnapshotOutput, error)
	Load(ctx context.Context, sessionID string) (dto.SnapshotOutput, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context, input dto.ListInput) ([]dto.SummaryOutput, error)
	Reindex(ctx context.Context) error
	DeriveID(ctx context.Context, input dto.DeriveIDInput) (string, error)
}

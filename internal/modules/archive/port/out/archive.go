package out

import (
	"context"

	"chamberlog/internal/modules/archive/domain"
)

// DocumentStore persists whole session documents. The archive owns only its
// slice of each document.
type DocumentStore interface {
	Read(ctx context.Context, sessionID string) (domain.Document, error)
	Write(ctx context.Context, sessionID string, doc domain.Document) (string, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// SnapshotIndex is the derived listing of archived sessions.
type SnapshotIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, summary domain.Summary) error
	Remove(ctx context.Context, sessionID string) (bool, error)
	List(ctx context.Context, query string) ([]domain.Summary, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chamberlog/internal/modules/archive/domain"
	archiveout "chamberlog/internal/modules/archive/port/out"
	"chamberlog/internal/platform/clock"
	apperrors "chamberlog/internal/platform/errors"
)

type ArchiveService struct {
	clock  clock.Clock
	store  archiveout.DocumentStore
	index  archiveout.SnapshotIndex
	logger *slog.Logger
}

func NewArchiveService(clock clock.Clock, store archiveout.DocumentStore, index archiveout.SnapshotIndex, logger *slog.Logger) *ArchiveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveService{clock: clock, store: store, index: index, logger: logger}
}

// Save merges snap into the session document, replacing any earlier snapshot
// for the same id, and refreshes the index row.
func (s *ArchiveService) Save(ctx context.Context, snap domain.Snapshot) (domain.Snapshot, string, error) {
	if err := domain.ValidateSessionID(snap.SessionID); err != nil {
		return domain.Snapshot{}, "", err
	}
	existing, err := s.store.Read(ctx, snap.SessionID)
	switch {
	case err == nil, errors.Is(err, apperrors.ErrNotFound):
	case errors.Is(err, apperrors.ErrCorruptedValue):
		s.logger.Warn("replacing unreadable session document", "session", snap.SessionID, "err", err)
		existing = nil
	default:
		return domain.Snapshot{}, "", err
	}
	snap.SavedAt = s.clock.Now()
	doc, err := snap.MergeInto(existing)
	if err != nil {
		return domain.Snapshot{}, "", err
	}
	path, err := s.store.Write(ctx, snap.SessionID, doc)
	if err != nil {
		return domain.Snapshot{}, "", err
	}
	if err := s.index.Upsert(ctx, snap.Summary()); err != nil {
		return domain.Snapshot{}, "", err
	}
	s.logger.Info("session archived", "session", snap.SessionID, "path", path)
	return snap, path, nil
}

// Load returns the archived slice without applying it anywhere.
func (s *ArchiveService) Load(ctx context.Context, sessionID string) (domain.Snapshot, []error, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return domain.Snapshot{}, nil, err
	}
	doc, err := s.store.Read(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, nil, err
	}
	snap, problems := domain.SnapshotFromDocument(sessionID, doc)
	for _, problem := range problems {
		s.logger.Error("archived session value", "session", sessionID, "err", problem)
	}
	return snap, problems, nil
}

// Delete removes the document and its index row. It reports ErrNotFound only
// when neither existed.
func (s *ArchiveService) Delete(ctx context.Context, sessionID string) error {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return err
	}
	docErr := s.store.Delete(ctx, sessionID)
	if docErr != nil && !errors.Is(docErr, apperrors.ErrNotFound) {
		return docErr
	}
	removed, err := s.index.Remove(ctx, sessionID)
	if err != nil {
		return err
	}
	if docErr != nil && !removed {
		return fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

func (s *ArchiveService) List(ctx context.Context, query string) ([]domain.Summary, error) {
	return s.index.List(ctx, query)
}

// Reindex rebuilds the listing index from the documents on disk. Unreadable
// documents are logged and left out of the listing.
func (s *ArchiveService) Reindex(ctx context.Context) error {
	ids, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	summaries := make([]domain.Summary, 0, len(ids))
	for _, id := range ids {
		doc, err := s.store.Read(ctx, id)
		if errors.Is(err, apperrors.ErrCorruptedValue) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("reindex skipped session", "session", id, "err", err)
			continue
		}
		if err != nil {
			return err
		}
		snap, problems := domain.SnapshotFromDocument(id, doc)
		for _, problem := range problems {
			s.logger.Warn("reindex session value", "session", id, "err", problem)
		}
		summaries = append(summaries, snap.Summary())
	}
	if err := s.index.Reset(ctx); err != nil {
		return err
	}
	for _, summary := range summaries {
		if err := s.index.Upsert(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

func (s *ArchiveService) DeriveID(explicit string, number int) (string, error) {
	return domain.DeriveSessionID(explicit, number, s.clock.Now())
}

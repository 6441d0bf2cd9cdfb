package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chamberlog/internal/modules/archive/domain"
	archiveout "chamberlog/internal/modules/archive/port/out"
	apperrors "chamberlog/internal/platform/errors"
)

// FileDocumentStore keeps one JSON document per session under dir.
type FileDocumentStore struct {
	dir string
}

func NewFileDocumentStore(dir string) archiveout.DocumentStore {
	return &FileDocumentStore{dir: dir}
}

func (s *FileDocumentStore) Read(_ context.Context, sessionID string) (domain.Document, error) {
	payload, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	doc := domain.Document{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode session %s: %v", apperrors.ErrCorruptedValue, sessionID, err)
	}
	return doc, nil
}

// Write replaces the document through a temp file so readers never see a
// partial write.
func (s *FileDocumentStore) Write(_ context.Context, sessionID string, doc domain.Document) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create sessions dir: %w", err)
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session %s: %w", sessionID, err)
	}
	path := s.path(sessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write session %s: %w", sessionID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("replace session %s: %w", sessionID, err)
	}
	return path, nil
}

func (s *FileDocumentStore) Delete(_ context.Context, sessionID string) error {
	if err := os.Remove(s.path(sessionID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
		}
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *FileDocumentStore) List(_ context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob sessions: %w", err)
	}
	sort.Strings(matches)
	out := make([]string, 0, len(matches))
	for _, path := range matches {
		out = append(out, strings.TrimSuffix(filepath.Base(path), ".json"))
	}
	return out, nil
}

func (s *FileDocumentStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"chamberlog/internal/modules/timeline/domain"
	timelineout "chamberlog/internal/modules/timeline/port/out"
	apperrors "chamberlog/internal/platform/errors"
)

type FileCurrentSessionStore struct {
	path string
}

func NewFileCurrentSessionStore(path string) timelineout.CurrentSessionStore {
	return &FileCurrentSessionStore{path: path}
}

func (s *FileCurrentSessionStore) SaveCurrent(_ context.Context, current domain.CurrentSession) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create current session dir: %w", err)
	}
	payload, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal current session: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write current session: %w", err)
	}
	return nil
}

func (s *FileCurrentSessionStore) LoadCurrent(_ context.Context) (domain.CurrentSession, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.CurrentSession{}, apperrors.ErrNoCurrentSession
		}
		return domain.CurrentSession{}, fmt.Errorf("read current session: %w", err)
	}
	current := domain.CurrentSession{}
	if err := json.Unmarshal(payload, &current); err != nil {
		return domain.CurrentSession{}, fmt.Errorf("decode current session: %w", err)
	}
	if current.SessionID == "" {
		return domain.CurrentSession{}, apperrors.ErrNoCurrentSession
	}
	return current, nil
}

func (s *FileCurrentSessionStore) ClearCurrent(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear current session: %w", err)
	}
	return nil
}

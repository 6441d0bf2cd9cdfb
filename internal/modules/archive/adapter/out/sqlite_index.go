package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chamberlog/internal/modules/archive/domain"
	archiveout "chamberlog/internal/modules/archive/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteSnapshotIndex struct {
	db *sql.DB
}

func NewSQLiteSnapshotIndex(dbPath string) (archiveout.SnapshotIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLiteSnapshotIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteSnapshotIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  session_id TEXT PRIMARY KEY,
  saved_at TEXT NOT NULL,
  event_count INTEGER NOT NULL,
  participant_count INTEGER NOT NULL,
  totals_json TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotIndex) Upsert(ctx context.Context, summary domain.Summary) error {
	totals, err := json.Marshal(summary.Totals)
	if err != nil {
		return fmt.Errorf("encode totals: %w", err)
	}
	const stmt = `
INSERT INTO sessions (session_id, saved_at, event_count, participant_count, totals_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  saved_at=excluded.saved_at,
  event_count=excluded.event_count,
  participant_count=excluded.participant_count,
  totals_json=excluded.totals_json;
`
	_, err = s.db.ExecContext(ctx, stmt,
		summary.SessionID,
		summary.SavedAt.UTC().Format(time.RFC3339),
		summary.EventCount,
		summary.ParticipantCount,
		string(totals),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotIndex) Remove(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, fmt.Errorf("remove session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove session: %w", err)
	}
	return n > 0, nil
}

// List returns sessions whose id contains query, most recently saved first.
func (s *SQLiteSnapshotIndex) List(ctx context.Context, query string) ([]domain.Summary, error) {
	const stmt = `
SELECT session_id, saved_at, event_count, participant_count, totals_json
FROM sessions
WHERE session_id LIKE '%' || ? || '%' ESCAPE '\'
ORDER BY saved_at DESC, session_id ASC;
`
	rows, err := s.db.QueryContext(ctx, stmt, likeEscaper.Replace(query))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []domain.Summary{}
	for rows.Next() {
		var (
			summary domain.Summary
			savedAt string
			totals  string
		)
		if err := rows.Scan(&summary.SessionID, &savedAt, &summary.EventCount, &summary.ParticipantCount, &totals); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		summary.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
		summary.Totals = map[string]string{}
		if err := json.Unmarshal([]byte(totals), &summary.Totals); err != nil {
			return nil, fmt.Errorf("decode totals for %s: %w", summary.SessionID, err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (s *SQLiteSnapshotIndex) Close() error {
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

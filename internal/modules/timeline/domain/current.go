package domain

import "time"

// CurrentSession points at the working session the CLI and TUI resume.
type CurrentSession struct {
	SessionID string    `json:"session_id"`
	OpenedAt  time.Time `json:"opened_at"`
}

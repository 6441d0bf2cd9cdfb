package dto

import "time"

type EventRow struct {
	Key   string
	Label string
	Value string
	Set   bool
	Style string
}

type TotalRow struct {
	ID        string
	Label     string
	Value     string
	Available bool
}

type ParticipantRow struct {
	ID        string
	Value     string
	Available bool
	Style     string
	Live      bool
}

type BoardOutput struct {
	SessionID    string
	Dirty        bool
	Reference    string
	ReferenceSet bool
	Running      bool
	Events       []EventRow
	Totals       []TotalRow
	Participants []ParticipantRow
}

type NewSessionInput struct {
	SessionID string
	Number    int
	Force     bool
}

type OpenInput struct {
	SessionID string
	Force     bool
}

type SessionOutput struct {
	SessionID string
	Created   bool
	Problems  []string
	Board     BoardOutput
}

type EventInput struct {
	Key   string
	Value string
}

type EventOutput struct {
	Row   EventRow
	Board BoardOutput
}

type ParticipantInput struct {
	ID    string
	Value string
}

type ParticipantOutput struct {
	Row   ParticipantRow
	Board BoardOutput
}

type SaveOutput struct {
	SessionID string
	SavedAt   time.Time
	Path      string
	Clean     bool
}

type ExportOutput struct {
	SessionID string
	Path      string
}

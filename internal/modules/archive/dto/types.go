package dto

import "time"

type SaveInput struct {
	SessionID           string
	EventTimes          map[string]string
	ParticipantEndTimes map[string]string
	ManualElapsed       map[string]string
	ComputedTotals      map[string]string
}

type SnapshotOutput struct {
	SessionID           string
	SavedAt             time.Time
	Path                string
	EventTimes          map[string]string
	ParticipantEndTimes map[string]string
	ManualElapsed       map[string]string
	ComputedTotals      map[string]string
	Problems            []string
}

type ListInput struct {
	Query string
}

type SummaryOutput struct {
	SessionID        string
	SavedAt          time.Time
	EventCount       int
	ParticipantCount int
	Totals           map[string]string
}

type DeriveIDInput struct {
	Explicit string
	Number   int
}

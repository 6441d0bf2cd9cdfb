package domain

import "time"

// Board is the full display state handed to the presentation layer.
type Board struct {
	SessionID    string
	Dirty        bool
	Reference    EventKey
	ReferenceSet bool
	Events       []EventRow
	Totals       []TotalRow
	Participants []ParticipantView
}

type EventRow struct {
	Key   EventKey
	Label string
	Time  TimeOfDay
	Set   bool
	Style Style
}

type TotalRow struct {
	ID     string
	Label  string
	Result Result
}

// BuildBoard assembles display rows in catalog order.
func BuildBoard(profile Profile, events *EventClock, tracker *Tracker, totals map[string]Result) Board {
	board := Board{Reference: profile.Reference}
	_, board.ReferenceSet = events.Time(profile.Reference)
	for _, rec := range events.Records() {
		board.Events = append(board.Events, EventRow{
			Key:   rec.Key,
			Label: profile.EventLabel(rec.Key),
			Time:  rec.Time,
			Set:   rec.Set,
			Style: events.Style(rec.Key),
		})
	}
	for _, rule := range profile.Rules {
		board.Totals = append(board.Totals, TotalRow{ID: rule.ID, Label: rule.Label, Result: totals[rule.ID]})
	}
	board.Participants = tracker.Views(events)
	return board
}

// State is the persisted slice of one session's timeline.
type State struct {
	EventTimes          map[string]string
	ParticipantEndTimes map[string]string
	ManualElapsed       map[string]string
	ComputedTotals      map[string]string
}

// Report is what the export layer receives. Every map is fully populated;
// unavailable values are ZeroDuration.
type Report struct {
	SessionID       string
	GeneratedAt     time.Time
	EventTimes      map[string]string
	Totals          map[string]string
	Participants    map[string]string
	EventOrder      []EventDef
	TotalOrder      []DurationRule
	ParticipantList []ParticipantID
}

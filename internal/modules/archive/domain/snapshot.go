package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "chamberlog/internal/platform/errors"
)

const SchemaVersion = 1

// Keys of the timeline slice inside a session document. Other collaborators'
// keys are kept as they are.
const (
	KeySchemaVersion       = "schema_version"
	KeySessionID           = "session_id"
	KeySavedAt             = "saved_at"
	KeyEventTimes          = "event_times"
	KeyParticipantEndTimes = "participant_elapsed_end_times"
	KeyManualElapsed       = "manual_participant_elapsed"
	KeyComputedTotals      = "computed_totals"
)

// Document is the whole persisted record of one session.
type Document map[string]json.RawMessage

// Snapshot is the timeline slice of a session document.
type Snapshot struct {
	SessionID           string
	SavedAt             time.Time
	EventTimes          map[string]string
	ParticipantEndTimes map[string]string
	ManualElapsed       map[string]string
	ComputedTotals      map[string]string
}

// Summary is one row of the archive listing index.
type Summary struct {
	SessionID        string
	SavedAt          time.Time
	EventCount       int
	ParticipantCount int
	Totals           map[string]string
}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateSessionID accepts ids that are safe as file names.
func ValidateSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) || strings.Contains(id, "..") || len(id) > 64 {
		return fmt.Errorf("%w: session id %q", apperrors.ErrInvalidInput, id)
	}
	return nil
}

// DeriveSessionID returns explicit when given, otherwise "{number}-{yy}" for
// the year of now.
func DeriveSessionID(explicit string, number int, now time.Time) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		if err := ValidateSessionID(id); err != nil {
			return "", err
		}
		return id, nil
	}
	if number <= 0 {
		return "", fmt.Errorf("%w: sequence number must be positive, got %d", apperrors.ErrInvalidInput, number)
	}
	return fmt.Sprintf("%d-%02d", number, now.Year()%100), nil
}

func (s Snapshot) Summary() Summary {
	return Summary{
		SessionID:        s.SessionID,
		SavedAt:          s.SavedAt,
		EventCount:       len(s.EventTimes),
		ParticipantCount: countParticipants(s.ParticipantEndTimes, s.ManualElapsed),
		Totals:           copyStrings(s.ComputedTotals),
	}
}

// MergeInto writes the timeline slice into doc, replacing only its own keys.
// A nil doc starts a new document.
func (s Snapshot) MergeInto(doc Document) (Document, error) {
	out := make(Document, len(doc)+7)
	for k, v := range doc {
		out[k] = v
	}
	fields := []struct {
		key   string
		value any
	}{
		{KeySchemaVersion, SchemaVersion},
		{KeySessionID, s.SessionID},
		{KeySavedAt, s.SavedAt.Format(time.RFC3339)},
		{KeyEventTimes, nonNil(s.EventTimes)},
		{KeyParticipantEndTimes, nonNil(s.ParticipantEndTimes)},
		{KeyManualElapsed, nonNil(s.ManualElapsed)},
		{KeyComputedTotals, nonNil(s.ComputedTotals)},
	}
	for _, f := range fields {
		raw, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.key, err)
		}
		out[f.key] = raw
	}
	return out, nil
}

// SnapshotFromDocument extracts the timeline slice. Missing keys are empty;
// sections or entries with the wrong shape are reported and dropped one by
// one, so valid siblings survive.
func SnapshotFromDocument(sessionID string, doc Document) (Snapshot, []error) {
	snap := Snapshot{SessionID: sessionID}
	var problems []error
	if raw, ok := doc[KeySavedAt]; ok {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			if savedAt, err := time.Parse(time.RFC3339, text); err == nil {
				snap.SavedAt = savedAt
			} else {
				problems = append(problems, fmt.Errorf("%w: %s=%q", apperrors.ErrCorruptedValue, KeySavedAt, text))
			}
		}
	}
	read := func(key string) map[string]string {
		raw, ok := doc[key]
		if !ok {
			return map[string]string{}
		}
		entries := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &entries); err != nil {
			problems = append(problems, fmt.Errorf("%w: %s: %v", apperrors.ErrCorruptedValue, key, err))
			return map[string]string{}
		}
		values := make(map[string]string, len(entries))
		for name, entry := range entries {
			var text string
			if err := json.Unmarshal(entry, &text); err != nil {
				problems = append(problems, fmt.Errorf("%w: %s.%s=%s", apperrors.ErrCorruptedValue, key, name, entry))
				continue
			}
			values[name] = text
		}
		return values
	}
	snap.EventTimes = read(KeyEventTimes)
	snap.ParticipantEndTimes = read(KeyParticipantEndTimes)
	snap.ManualElapsed = read(KeyManualElapsed)
	snap.ComputedTotals = read(KeyComputedTotals)
	return snap, problems
}

func countParticipants(maps ...map[string]string) int {
	seen := map[string]struct{}{}
	for _, m := range maps {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

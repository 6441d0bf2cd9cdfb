package domain

import (
	"fmt"

	apperrors "chamberlog/internal/platform/errors"
)

// ParticipantElapsed is the committed state of one participant. A manual value
// wins over an end time. Calculated false means the participant is live
// ticking.
type ParticipantElapsed struct {
	Participant ParticipantID
	EndTime     TimeOfDay
	HasEndTime  bool
	Manual      Duration
	HasManual   bool
	Calculated  bool
}

// Elapsed returns the committed value. An end time is measured against the
// current reference so a later reference correction is reflected.
func (p ParticipantElapsed) Elapsed(times EventTimes, reference EventKey) (Duration, bool) {
	if p.HasManual {
		return p.Manual, true
	}
	if !p.HasEndTime {
		return 0, false
	}
	ref, ok := times.Time(reference)
	if !ok {
		return 0, false
	}
	return ref.Until(p.EndTime), true
}

// ParticipantView is what the presentation layer shows for one participant.
type ParticipantView struct {
	Participant ParticipantID
	Elapsed     Duration
	Available   bool
	Live        bool
	Style       Style
}

// Tracker holds committed elapsed values for a fixed roster plus the transient
// running values produced by ticks.
type Tracker struct {
	profile Profile
	entries map[ParticipantID]ParticipantElapsed
	running map[ParticipantID]Duration
	invalid map[ParticipantID]bool
}

func NewTracker(profile Profile) *Tracker {
	t := &Tracker{profile: profile}
	t.clearAll()
	return t
}

func (t *Tracker) Entry(id ParticipantID) (ParticipantElapsed, error) {
	if err := t.check(id); err != nil {
		return ParticipantElapsed{}, err
	}
	return t.entries[id], nil
}

// CalculateNow commits now as the end time for id and stops its live ticking.
// A manual value, if present, still wins for display. Without a recorded
// reference nothing changes.
func (t *Tracker) CalculateNow(id ParticipantID, times EventTimes, now TimeOfDay) (Duration, error) {
	if err := t.check(id); err != nil {
		return 0, err
	}
	ref, ok := times.Time(t.profile.Reference)
	if !ok {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrMissingReference, t.profile.Reference)
	}
	entry := t.entries[id]
	entry.EndTime, entry.HasEndTime, entry.Calculated = now, true, true
	t.entries[id] = entry
	delete(t.running, id)
	delete(t.invalid, id)
	return ref.Until(now), nil
}

// SetManual commits an operator-entered elapsed value. Blank input resets.
// On a format error the entry is unchanged and tagged as an error.
func (t *Tracker) SetManual(id ParticipantID, text string) (Duration, bool, error) {
	if err := t.check(id); err != nil {
		return 0, false, err
	}
	if IsBlank(text) {
		changed, err := t.Reset(id)
		return 0, changed, err
	}
	parsed, err := ParseDuration(text)
	if err != nil {
		t.invalid[id] = true
		return 0, false, fmt.Errorf("participant %s: %w", id, err)
	}
	prev := t.entries[id]
	next := prev
	next.Manual, next.HasManual, next.Calculated = parsed, true, true
	t.entries[id] = next
	delete(t.running, id)
	delete(t.invalid, id)
	return parsed, prev != next, nil
}

// Reset drops the end time and manual value and resumes live ticking.
func (t *Tracker) Reset(id ParticipantID) (bool, error) {
	if err := t.check(id); err != nil {
		return false, err
	}
	prev := t.entries[id]
	t.entries[id] = ParticipantElapsed{Participant: id}
	delete(t.invalid, id)
	return prev != t.entries[id], nil
}

// Tick refreshes the running value of a live participant. Committed
// participants are left alone and report their committed value. Ticking with
// no reference recorded keeps the idle placeholder.
func (t *Tracker) Tick(id ParticipantID, times EventTimes, now TimeOfDay) (Duration, bool, error) {
	if err := t.check(id); err != nil {
		return 0, false, err
	}
	entry := t.entries[id]
	if entry.Calculated {
		d, ok := entry.Elapsed(times, t.profile.Reference)
		return d, ok, nil
	}
	ref, ok := times.Time(t.profile.Reference)
	if !ok {
		delete(t.running, id)
		return 0, false, nil
	}
	running := ref.Until(now)
	t.running[id] = running
	return running, true, nil
}

// TickAll ticks every live participant.
func (t *Tracker) TickAll(times EventTimes, now TimeOfDay) {
	for _, id := range t.profile.Roster {
		if !t.entries[id].Calculated {
			_, _, _ = t.Tick(id, times, now)
		}
	}
}

func (t *Tracker) View(id ParticipantID, times EventTimes) ParticipantView {
	entry := t.entries[id]
	view := ParticipantView{Participant: id, Style: StyleUnset}
	switch {
	case t.invalid[id]:
		view.Style = StyleError
		if !entry.Calculated {
			view.Elapsed, view.Available = t.running[id]
			view.Live = view.Available
			break
		}
		view.Elapsed, view.Available = entry.Elapsed(times, t.profile.Reference)
	case entry.HasManual:
		view.Elapsed, view.Available, view.Style = entry.Manual, true, StyleManual
	case entry.HasEndTime:
		view.Elapsed, view.Available = entry.Elapsed(times, t.profile.Reference)
		view.Style = StyleRecorded
		if !view.Available {
			view.Style = StyleError
		}
	default:
		if running, ok := t.running[id]; ok {
			view.Elapsed, view.Available, view.Live = running, true, true
		}
	}
	return view
}

func (t *Tracker) Views(times EventTimes) []ParticipantView {
	out := make([]ParticipantView, 0, len(t.profile.Roster))
	for _, id := range t.profile.Roster {
		out = append(out, t.View(id, times))
	}
	return out
}

// Committed returns every committed elapsed value formatted for export. Live
// and unset participants export as a zero duration.
func (t *Tracker) Committed(times EventTimes) map[string]string {
	out := make(map[string]string, len(t.profile.Roster))
	for _, id := range t.profile.Roster {
		d, ok := t.entries[id].Elapsed(times, t.profile.Reference)
		if !ok {
			out[string(id)] = ZeroDuration
			continue
		}
		out[string(id)] = d.String()
	}
	return out
}

// Export returns the persisted end times and manual values.
func (t *Tracker) Export() (endTimes, manual map[string]string) {
	endTimes, manual = map[string]string{}, map[string]string{}
	for id, entry := range t.entries {
		if entry.HasEndTime {
			endTimes[string(id)] = entry.EndTime.String()
		}
		if entry.HasManual {
			manual[string(id)] = entry.Manual.String()
		}
	}
	return endTimes, manual
}

// Restore replaces all entries from persisted values. Participants with either
// value come back as calculated. Bad values restore as unset and are reported.
func (t *Tracker) Restore(endTimes, manual map[string]string) []error {
	t.clearAll()
	var problems []error
	for raw, text := range endTimes {
		id := ParticipantID(raw)
		if !t.profile.HasParticipant(id) {
			problems = append(problems, fmt.Errorf("%w: participant %q is not in the roster", apperrors.ErrCorruptedValue, raw))
			continue
		}
		if IsBlank(text) {
			continue
		}
		parsed, err := ParseTimeOfDay(text)
		if err != nil {
			t.invalid[id] = true
			problems = append(problems, fmt.Errorf("%w: participant end time %s=%q", apperrors.ErrCorruptedValue, raw, text))
			continue
		}
		entry := t.entries[id]
		entry.EndTime, entry.HasEndTime, entry.Calculated = parsed, true, true
		t.entries[id] = entry
	}
	for raw, text := range manual {
		id := ParticipantID(raw)
		if !t.profile.HasParticipant(id) {
			problems = append(problems, fmt.Errorf("%w: participant %q is not in the roster", apperrors.ErrCorruptedValue, raw))
			continue
		}
		if IsBlank(text) {
			continue
		}
		parsed, err := ParseDuration(text)
		if err != nil {
			t.invalid[id] = true
			problems = append(problems, fmt.Errorf("%w: manual elapsed %s=%q", apperrors.ErrCorruptedValue, raw, text))
			continue
		}
		entry := t.entries[id]
		entry.Manual, entry.HasManual, entry.Calculated = parsed, true, true
		t.entries[id] = entry
	}
	return problems
}

func (t *Tracker) clearAll() {
	t.entries = make(map[ParticipantID]ParticipantElapsed, len(t.profile.Roster))
	for _, id := range t.profile.Roster {
		t.entries[id] = ParticipantElapsed{Participant: id}
	}
	t.running = map[ParticipantID]Duration{}
	t.invalid = map[ParticipantID]bool{}
}

func (t *Tracker) check(id ParticipantID) error {
	if !t.profile.HasParticipant(id) {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownParticipant, id)
	}
	return nil
}

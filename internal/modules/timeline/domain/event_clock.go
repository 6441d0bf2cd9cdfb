package domain

import (
	"fmt"

	apperrors "chamberlog/internal/platform/errors"
)

type Origin int

const (
	OriginRecorded Origin = iota + 1
	OriginManual
)

// EventRecord holds the single time value of one catalog event.
type EventRecord struct {
	Key    EventKey
	Time   TimeOfDay
	Set    bool
	Origin Origin
}

// EventTimes is the read side of an EventClock.
type EventTimes interface {
	Time(key EventKey) (TimeOfDay, bool)
}

// EventClock stores at most one time per catalog event. Record is first write
// wins; SetManual always overwrites.
type EventClock struct {
	profile Profile
	records map[EventKey]EventRecord
	invalid map[EventKey]bool
}

func NewEventClock(profile Profile) *EventClock {
	return &EventClock{
		profile: profile,
		records: make(map[EventKey]EventRecord, len(profile.Events)),
		invalid: map[EventKey]bool{},
	}
}

func (c *EventClock) Time(key EventKey) (TimeOfDay, bool) {
	rec, ok := c.records[key]
	if !ok || !rec.Set {
		return 0, false
	}
	return rec.Time, true
}

func (c *EventClock) Get(key EventKey) (EventRecord, error) {
	if err := c.check(key); err != nil {
		return EventRecord{}, err
	}
	rec, ok := c.records[key]
	if !ok {
		return EventRecord{Key: key}, nil
	}
	return rec, nil
}

// Record stores now for key unless a value is already present, in which case
// the existing value is returned. changed reports whether anything was stored.
func (c *EventClock) Record(key EventKey, now TimeOfDay) (value TimeOfDay, changed bool, err error) {
	if err := c.check(key); err != nil {
		return 0, false, err
	}
	if existing, ok := c.Time(key); ok {
		return existing, false, nil
	}
	delete(c.invalid, key)
	c.records[key] = EventRecord{Key: key, Time: now, Set: true, Origin: OriginRecorded}
	return now, true, nil
}

// SetManual parses text and overwrites the record. Blank input clears it. On a
// format error the record is unchanged, the previous record is returned, and
// the key is tagged as an error until its next successful change.
func (c *EventClock) SetManual(key EventKey, text string) (EventRecord, bool, error) {
	if err := c.check(key); err != nil {
		return EventRecord{}, false, err
	}
	if IsBlank(text) {
		changed, err := c.Clear(key)
		return EventRecord{Key: key}, changed, err
	}
	parsed, err := ParseTimeOfDay(text)
	if err != nil {
		c.invalid[key] = true
		prev, _ := c.Get(key)
		return prev, false, fmt.Errorf("event %s: %w", key, err)
	}
	delete(c.invalid, key)
	prev := c.records[key]
	rec := EventRecord{Key: key, Time: parsed, Set: true, Origin: OriginManual}
	c.records[key] = rec
	return rec, prev != rec, nil
}

// Clear unsets key regardless of its value.
func (c *EventClock) Clear(key EventKey) (bool, error) {
	if err := c.check(key); err != nil {
		return false, err
	}
	delete(c.invalid, key)
	rec, ok := c.records[key]
	delete(c.records, key)
	return ok && rec.Set, nil
}

// MarkInvalid tags key as an error without touching its value.
func (c *EventClock) MarkInvalid(key EventKey) {
	if c.profile.HasEvent(key) {
		c.invalid[key] = true
	}
}

func (c *EventClock) Style(key EventKey) Style {
	if c.invalid[key] {
		return StyleError
	}
	rec, ok := c.records[key]
	switch {
	case !ok || !rec.Set:
		return StyleUnset
	case rec.Origin == OriginManual:
		return StyleManual
	default:
		return StyleRecorded
	}
}

// Records lists every catalog event in catalog order, set or not.
func (c *EventClock) Records() []EventRecord {
	out := make([]EventRecord, 0, len(c.profile.Events))
	for _, ev := range c.profile.Events {
		rec, ok := c.records[ev.Key]
		if !ok {
			rec = EventRecord{Key: ev.Key}
		}
		out = append(out, rec)
	}
	return out
}

// Export returns the recorded times as HH:MM:SS keyed by event. Unset events
// are absent.
func (c *EventClock) Export() map[string]string {
	out := make(map[string]string, len(c.records))
	for key, rec := range c.records {
		if rec.Set {
			out[string(key)] = rec.Time.String()
		}
	}
	return out
}

// Restore replaces every record from persisted values. Unknown keys are
// skipped; unparsable values restore as unset and are reported. Restored
// values count as recorded since their origin is not persisted.
func (c *EventClock) Restore(values map[string]string) []error {
	c.records = make(map[EventKey]EventRecord, len(c.profile.Events))
	c.invalid = map[EventKey]bool{}
	var problems []error
	for raw, text := range values {
		key := EventKey(raw)
		if !c.profile.HasEvent(key) {
			problems = append(problems, fmt.Errorf("%w: event %q is not in the catalog", apperrors.ErrCorruptedValue, raw))
			continue
		}
		if IsBlank(text) {
			continue
		}
		parsed, err := ParseTimeOfDay(text)
		if err != nil {
			c.invalid[key] = true
			problems = append(problems, fmt.Errorf("%w: event %s=%q", apperrors.ErrCorruptedValue, raw, text))
			continue
		}
		c.records[key] = EventRecord{Key: key, Time: parsed, Set: true, Origin: OriginRecorded}
	}
	return problems
}

func (c *EventClock) check(key EventKey) error {
	if !c.profile.HasEvent(key) {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownEvent, key)
	}
	return nil
}

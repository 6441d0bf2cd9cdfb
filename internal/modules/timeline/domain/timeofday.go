package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "chamberlog/internal/platform/errors"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a same-day wall-clock time in whole seconds since midnight.
type TimeOfDay int

// Duration is a non-negative span in whole seconds.
type Duration int

// Placeholder is what an unset time renders as in input fields. Submitting it
// back clears the value.
const Placeholder = "--:--:--"

// ZeroDuration is how an unavailable duration is handed to exporters.
const ZeroDuration = "00:00:00"

func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d:%02d out of range", apperrors.ErrInvalidFormat, hour, minute, second)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// ParseTimeOfDay parses HH:MM:SS. A single-digit hour is accepted.
func ParseTimeOfDay(text string) (TimeOfDay, error) {
	h, m, s, err := splitClock(text)
	if err != nil {
		return 0, err
	}
	return NewTimeOfDay(h, m, s)
}

func (t TimeOfDay) String() string {
	return formatClock(int(t))
}

// Until returns the span from t to end. An end earlier than t is taken to be
// on the following day.
func (t TimeOfDay) Until(end TimeOfDay) Duration {
	diff := int(end) - int(t)
	if diff < 0 {
		diff += secondsPerDay
	}
	return Duration(diff)
}

// ParseDuration parses an elapsed HH:MM:SS value. Hours run 00..99 since an
// elapsed value is not a clock reading.
func ParseDuration(text string) (Duration, error) {
	h, m, s, err := splitClock(text)
	if err != nil {
		return 0, err
	}
	if m > 59 || s > 59 {
		return 0, fmt.Errorf("%w: %q out of range", apperrors.ErrInvalidFormat, text)
	}
	return Duration(h*3600 + m*60 + s), nil
}

func (d Duration) String() string {
	if d < 0 {
		d = 0
	}
	return formatClock(int(d))
}

// IsBlank reports whether text means "no value": empty or a placeholder.
func IsBlank(text string) bool {
	switch strings.TrimSpace(text) {
	case "", Placeholder, "__:__:__":
		return true
	}
	return false
}

func splitClock(text string) (int, int, int, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q is not HH:MM:SS", apperrors.ErrInvalidFormat, text)
	}
	values := make([]int, 3)
	for i, part := range parts {
		minLen, maxLen := 2, 2
		if i == 0 {
			minLen = 1
		}
		if len(part) < minLen || len(part) > maxLen || !allDigits(part) {
			return 0, 0, 0, fmt.Errorf("%w: %q is not HH:MM:SS", apperrors.ErrInvalidFormat, text)
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q is not HH:MM:SS", apperrors.ErrInvalidFormat, text)
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatClock(total int) string {
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

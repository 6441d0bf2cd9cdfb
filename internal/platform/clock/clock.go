package clock

import "time"

// Clock abstracts time to keep usecases and the live ticker deterministic in
// tests.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once after d elapses. The returned Timer cancels the
	// pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop reports whether the call was cancelled before it fired.
	Stop() bool
}

// SystemClock reads local wall-clock time. Training timelines are recorded in
// the operator's local time, not UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamberlog/internal/modules/timeline/domain"
	apperrors "chamberlog/internal/platform/errors"
)

func newTrackerFixture(t *testing.T) (*domain.Tracker, *domain.EventClock) {
	t.Helper()
	profile := domain.DefaultProfile()
	return domain.NewTracker(profile), domain.NewEventClock(profile)
}

func TestCalculateNowScenario(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)
	_, _, err := clock.SetManual(domain.EventHypoxiaStart, "10:00:00")
	require.NoError(t, err)

	got, err := tracker.CalculateNow("3", clock, mustTime(t, "10:04:30"))
	require.NoError(t, err)
	assert.Equal(t, "00:04:30", got.String())

	entry, err := tracker.Entry("3")
	require.NoError(t, err)
	assert.True(t, entry.Calculated)
	assert.True(t, entry.HasEndTime)
	assert.Equal(t, domain.StyleRecorded, tracker.View("3", clock).Style)
}

func TestCalculateNowWithoutReference(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)
	_, err := tracker.CalculateNow("1", clock, mustTime(t, "10:04:30"))
	require.ErrorIs(t, err, apperrors.ErrMissingReference)
	entry, _ := tracker.Entry("1")
	assert.False(t, entry.Calculated)
	assert.False(t, entry.HasEndTime)
}

func TestCommittedEndTimeFollowsReferenceCorrection(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)
	_, _, _ = clock.SetManual(domain.EventHypoxiaStart, "10:00:00")
	_, err := tracker.CalculateNow("1", clock, mustTime(t, "10:04:30"))
	require.NoError(t, err)

	_, _, _ = clock.SetManual(domain.EventHypoxiaStart, "10:01:00")
	view := tracker.View("1", clock)
	assert.Equal(t, "00:03:30", view.Elapsed.String())

	_, _ = clock.Clear(domain.EventHypoxiaStart)
	view = tracker.View("1", clock)
	assert.False(t, view.Available)
	assert.Equal(t, domain.StyleError, view.Style)
}

func TestTickRunsOnlyForLiveParticipants(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)

	_, running, err := tracker.Tick("2", clock, mustTime(t, "10:00:05"))
	require.NoError(t, err)
	assert.False(t, running, "no reference keeps the idle placeholder")
	assert.False(t, tracker.View("2", clock).Available)

	_, _, _ = clock.SetManual(domain.EventHypoxiaStart, "10:00:00")
	first, running, err := tracker.Tick("2", clock, mustTime(t, "10:00:05"))
	require.NoError(t, err)
	require.True(t, running)
	second, _, _ := tracker.Tick("2", clock, mustTime(t, "10:00:06"))
	assert.Greater(t, second, first)

	view := tracker.View("2", clock)
	assert.True(t, view.Live)
	entry, _ := tracker.Entry("2")
	assert.False(t, entry.Calculated, "ticking never commits")
	endTimes, manual := tracker.Export()
	assert.Empty(t, endTimes)
	assert.Empty(t, manual)
}

func TestManualOverridesTickUntilReset(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)
	_, _, _ = clock.SetManual(domain.EventHypoxiaStart, "10:00:00")

	_, changed, err := tracker.SetManual("4", "00:07:15")
	require.NoError(t, err)
	assert.True(t, changed)

	tracker.TickAll(clock, mustTime(t, "10:30:00"))
	view := tracker.View("4", clock)
	assert.Equal(t, "00:07:15", view.Elapsed.String())
	assert.Equal(t, domain.StyleManual, view.Style)
	assert.False(t, view.Live)

	_, err = tracker.CalculateNow("4", clock, mustTime(t, "10:31:00"))
	require.NoError(t, err)
	assert.Equal(t, "00:07:15", tracker.View("4", clock).Elapsed.String(), "manual wins over end time")

	changed, err = tracker.Reset("4")
	require.NoError(t, err)
	assert.True(t, changed)
	tracker.TickAll(clock, mustTime(t, "10:30:01"))
	view = tracker.View("4", clock)
	assert.True(t, view.Live)
	assert.Equal(t, "00:30:01", view.Elapsed.String())
}

func TestSetManualRejectsBadFormat(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)
	_, _, err := tracker.SetManual("5", "00:07:15")
	require.NoError(t, err)

	_, changed, err := tracker.SetManual("5", "7 minutes")
	require.ErrorIs(t, err, apperrors.ErrInvalidFormat)
	assert.False(t, changed)
	view := tracker.View("5", clock)
	assert.Equal(t, domain.StyleError, view.Style)
	assert.Equal(t, "00:07:15", view.Elapsed.String(), "previous value is re-surfaced")

	_, _, err = tracker.SetManual("9", "00:01:00")
	require.ErrorIs(t, err, apperrors.ErrUnknownParticipant)
}

func TestRejectedManualKeepsLiveValueTicking(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)
	_, _, _ = clock.SetManual(domain.EventHypoxiaStart, "10:00:00")
	_, _, err := tracker.Tick("1", clock, mustTime(t, "10:01:00"))
	require.NoError(t, err)

	_, _, err = tracker.SetManual("1", "abc")
	require.ErrorIs(t, err, apperrors.ErrInvalidFormat)
	view := tracker.View("1", clock)
	assert.Equal(t, domain.StyleError, view.Style)
	assert.True(t, view.Live)
	assert.True(t, view.Available)
	assert.Equal(t, "00:01:00", view.Elapsed.String())

	tracker.TickAll(clock, mustTime(t, "10:02:00"))
	view = tracker.View("1", clock)
	assert.Equal(t, domain.StyleError, view.Style)
	assert.True(t, view.Live)
	assert.Equal(t, "00:02:00", view.Elapsed.String())

	_, _ = tracker.Reset("1")
	tracker.TickAll(clock, mustTime(t, "10:02:01"))
	view = tracker.View("1", clock)
	assert.Equal(t, domain.StyleUnset, view.Style)
	assert.True(t, view.Live)
}

func TestTrackerExportRestoreAndCommitted(t *testing.T) {
	t.Parallel()
	tracker, clock := newTrackerFixture(t)
	_, _, _ = clock.SetManual(domain.EventHypoxiaStart, "10:00:00")
	_, _ = tracker.CalculateNow("1", clock, mustTime(t, "10:04:30"))
	_, _, _ = tracker.SetManual("2", "00:07:15")

	endTimes, manual := tracker.Export()
	assert.Equal(t, map[string]string{"1": "10:04:30"}, endTimes)
	assert.Equal(t, map[string]string{"2": "00:07:15"}, manual)

	committed := tracker.Committed(clock)
	assert.Len(t, committed, 8)
	assert.Equal(t, "00:04:30", committed["1"])
	assert.Equal(t, "00:07:15", committed["2"])
	assert.Equal(t, domain.ZeroDuration, committed["8"])

	restored, _ := newTrackerFixture(t)
	problems := restored.Restore(endTimes, map[string]string{"2": "00:07:15", "3": "bad", "42": "00:00:01"})
	require.Len(t, problems, 2)
	e1, _ := restored.Entry("1")
	assert.True(t, e1.Calculated)
	e3, _ := restored.Entry("3")
	assert.False(t, e3.Calculated)
	assert.Equal(t, domain.StyleError, restored.View("3", clock).Style)
}

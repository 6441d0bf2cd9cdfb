package service

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"chamberlog/internal/modules/timeline/domain"
	"chamberlog/internal/platform/clock"
	apperrors "chamberlog/internal/platform/errors"
)

// Engine owns the timeline of one working session: the event clock, the
// participant tracker, cached totals, the dirty flag and the live ticker.
// Every operation runs under one lock together with the recomputation it
// triggers, so ticks and saves never see a half-applied change.
type Engine struct {
	profile  domain.Profile
	clock    clock.Clock
	logger   *slog.Logger
	ticker   *Ticker
	interval time.Duration

	mu        sync.Mutex
	sessionID string
	events    *domain.EventClock
	tracker   *domain.Tracker
	totals    map[string]domain.Result
	dirty     bool
	revision  uint64

	notifyMu  sync.Mutex
	stopped   bool
	listeners map[int]func(domain.Board)
	nextID    int
}

func NewEngine(profile domain.Profile, clk clock.Clock, logger *slog.Logger, interval time.Duration) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		profile:   profile,
		clock:     clk,
		logger:    logger,
		interval:  interval,
		events:    domain.NewEventClock(profile),
		tracker:   domain.NewTracker(profile),
		listeners: map[int]func(domain.Board){},
		stopped:   true,
	}
	e.totals = domain.ComputeAll(profile.Rules, e.events)
	e.ticker = NewTicker(clk, interval, e.tick)
	return e
}

func (e *Engine) Profile() domain.Profile { return e.profile }

// Start begins live ticking. Callers must pair it with Stop on teardown.
func (e *Engine) Start() {
	e.notifyMu.Lock()
	e.stopped = false
	e.notifyMu.Unlock()
	e.ticker.Start()
}

// Stop cancels the ticker. Once it returns no listener is notified by a tick
// again until Start. Listeners must not call Stop themselves.
func (e *Engine) Stop() {
	e.ticker.Stop()
	e.notifyMu.Lock()
	e.stopped = true
	e.notifyMu.Unlock()
}

func (e *Engine) Running() bool { return e.ticker.Running() }

// OnTick registers a listener for refreshed boards and returns its
// unsubscribe func.
func (e *Engine) OnTick(listener func(domain.Board)) func() {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener
	return func() {
		e.notifyMu.Lock()
		delete(e.listeners, id)
		e.notifyMu.Unlock()
	}
}

func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Reset replaces the working state with an empty timeline for sessionID.
func (e *Engine) Reset(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionID = sessionID
	e.events = domain.NewEventClock(e.profile)
	e.tracker = domain.NewTracker(e.profile)
	e.recomputeLocked()
	e.dirty = false
	e.revision++
}

func (e *Engine) RecordEvent(key domain.EventKey) (domain.EventRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, changed, err := e.events.Record(key, e.nowLocked())
	if err != nil {
		return domain.EventRecord{}, err
	}
	if changed {
		e.mutatedLocked()
	}
	return e.events.Get(key)
}

// SetEventManual returns the record as stored afterwards. On ErrInvalidFormat
// the returned record is the previous value for the caller to show again.
func (e *Engine) SetEventManual(key domain.EventKey, text string) (domain.EventRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, changed, err := e.events.SetManual(key, text)
	if err != nil {
		return rec, err
	}
	if changed {
		e.mutatedLocked()
	}
	return rec, nil
}

func (e *Engine) ClearEvent(key domain.EventKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed, err := e.events.Clear(key)
	if err != nil {
		return err
	}
	if changed {
		e.mutatedLocked()
	}
	return nil
}

// Recompute re-derives every total on demand.
func (e *Engine) Recompute() map[string]domain.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recomputeLocked()
	return copyResults(e.totals)
}

func (e *Engine) CalculateParticipant(id domain.ParticipantID) (domain.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.tracker.CalculateNow(id, e.events, e.nowLocked())
	if err != nil {
		if errors.Is(err, apperrors.ErrMissingReference) {
			e.logger.Warn("participant calculation without reference", "participant", id, "reference", e.profile.Reference)
		}
		return 0, err
	}
	e.mutatedLocked()
	return d, nil
}

func (e *Engine) SetParticipantManual(id domain.ParticipantID, text string) (domain.ParticipantView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, changed, err := e.tracker.SetManual(id, text)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownParticipant) {
			return domain.ParticipantView{}, err
		}
		return e.tracker.View(id, e.events), err
	}
	if changed {
		e.mutatedLocked()
	}
	return e.tracker.View(id, e.events), nil
}

func (e *Engine) ResetParticipant(id domain.ParticipantID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed, err := e.tracker.Reset(id)
	if err != nil {
		return err
	}
	if changed {
		e.mutatedLocked()
	}
	return nil
}

// Tick refreshes live participants once and returns the board. It does not
// touch stored data or the dirty flag.
func (e *Engine) Tick() domain.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.TickAll(e.events, e.nowLocked())
	return e.boardLocked()
}

func (e *Engine) Board() domain.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boardLocked()
}

// Snapshot returns a copy of the persisted slice and the revision it was taken
// at. The copy shares nothing with the engine.
func (e *Engine) Snapshot() (domain.State, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked(), e.revision
}

// Report builds the export view from a consistent copy of the state.
func (e *Engine) Report() domain.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	totals := make(map[string]string, len(e.totals))
	for id, r := range e.totals {
		totals[id] = r.String()
	}
	return domain.Report{
		SessionID:       e.sessionID,
		GeneratedAt:     e.clock.Now(),
		EventTimes:      e.eventTimesForExportLocked(),
		Totals:          totals,
		Participants:    e.tracker.Committed(e.events),
		EventOrder:      append([]domain.EventDef(nil), e.profile.Events...),
		TotalOrder:      append([]domain.DurationRule(nil), e.profile.Rules...),
		ParticipantList: append([]domain.ParticipantID(nil), e.profile.Roster...),
	}
}

// MarkSaved clears the dirty flag if nothing changed since revision was
// snapshotted.
func (e *Engine) MarkSaved(sessionID string, revision uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessionID == "" {
		e.sessionID = sessionID
	}
	if revision != e.revision {
		return false
	}
	e.dirty = false
	return true
}

// Restore replaces the working state with persisted values. Corrupted values
// are logged and come back unset.
func (e *Engine) Restore(sessionID string, state domain.State) []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := domain.NewEventClock(e.profile)
	tracker := domain.NewTracker(e.profile)
	problems := events.Restore(state.EventTimes)
	problems = append(problems, tracker.Restore(state.ParticipantEndTimes, state.ManualElapsed)...)
	for _, problem := range problems {
		e.logger.Error("restore timeline value", "session", sessionID, "err", problem)
	}
	e.sessionID = sessionID
	e.events = events
	e.tracker = tracker
	e.recomputeLocked()
	e.dirty = false
	e.revision++
	return problems
}

func (e *Engine) tick() {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	if e.stopped {
		return
	}
	board := e.Tick()
	for _, listener := range e.listeners {
		listener(board)
	}
}

func (e *Engine) nowLocked() domain.TimeOfDay {
	return domain.TimeOfDayFrom(e.clock.Now())
}

func (e *Engine) mutatedLocked() {
	e.dirty = true
	e.revision++
	e.recomputeLocked()
}

func (e *Engine) recomputeLocked() {
	e.totals = domain.ComputeAll(e.profile.Rules, e.events)
}

func (e *Engine) boardLocked() domain.Board {
	board := domain.BuildBoard(e.profile, e.events, e.tracker, e.totals)
	board.SessionID = e.sessionID
	board.Dirty = e.dirty
	return board
}

func (e *Engine) stateLocked() domain.State {
	endTimes, manual := e.tracker.Export()
	totals := make(map[string]string, len(e.totals))
	for id, r := range e.totals {
		totals[id] = r.String()
	}
	return domain.State{
		EventTimes:          e.events.Export(),
		ParticipantEndTimes: endTimes,
		ManualElapsed:       manual,
		ComputedTotals:      totals,
	}
}

func (e *Engine) eventTimesForExportLocked() map[string]string {
	out := make(map[string]string, len(e.profile.Events))
	for _, rec := range e.events.Records() {
		if rec.Set {
			out[string(rec.Key)] = rec.Time.String()
			continue
		}
		out[string(rec.Key)] = domain.ZeroDuration
	}
	return out
}

func copyResults(in map[string]domain.Result) map[string]domain.Result {
	out := make(map[string]domain.Result, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package service

import (
	"sync"
	"time"

	"chamberlog/internal/platform/clock"
)

// Ticker fires a callback periodically on an injected clock. The next tick is
// scheduled only after the current callback returns, so callbacks never
// overlap. Stop cancels the pending tick and invalidates any already queued
// one.
type Ticker struct {
	clock    clock.Clock
	interval time.Duration
	fire     func()

	mu         sync.Mutex
	timer      clock.Timer
	generation uint64
	running    bool
}

func NewTicker(clk clock.Clock, interval time.Duration, fire func()) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{clock: clk, interval: interval, fire: fire}
}

// Start begins ticking. It reports false when already running.
func (t *Ticker) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false
	}
	t.running = true
	t.generation++
	t.scheduleLocked(t.generation)
	return true
}

// Stop is idempotent.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Ticker) scheduleLocked(generation uint64) {
	t.timer = t.clock.AfterFunc(t.interval, func() { t.run(generation) })
}

func (t *Ticker) current(generation uint64) bool {
	return t.running && t.generation == generation
}

func (t *Ticker) run(generation uint64) {
	t.mu.Lock()
	if !t.current(generation) {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.fire()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current(generation) {
		t.scheduleLocked(generation)
	}
}

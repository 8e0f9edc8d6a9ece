package sched

import (
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance instead of wall-clock
// time. Callbacks fire in timestamp order (FIFO on ties) on the goroutine
// calling Advance, which makes timer-dependent engine behaviour testable.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	entries []*manualEntry
}

type manualEntry struct {
	at      time.Duration
	every   time.Duration
	fn      func()
	seq     int
	stopped bool
}

// NewManual returns a Manual scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Handle {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &manualEntry{at: m.now + d, every: every, fn: fn, seq: m.seq}
	m.seq++
	m.entries = append(m.entries, e)
	return &manualHandle{m: m, e: e}
}

// Now returns the manual clock's current offset.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d, firing every due callback in order.
// Callbacks run with the scheduler unlocked, so they may schedule or stop
// further entries.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		e := m.next(target)
		if e == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = e.at
		if e.every > 0 {
			e.at += e.every
		} else {
			e.stopped = true
		}
		fn := e.fn
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
}

// next picks the earliest live entry due at or before target, preferring the
// oldest on equal timestamps. Caller holds the lock.
func (m *Manual) next(target time.Duration) *manualEntry {
	var best *manualEntry
	live := m.entries[:0]
	for _, e := range m.entries {
		if e.stopped {
			continue
		}
		live = append(live, e)
		if e.at > target {
			continue
		}
		if best == nil || e.at < best.at || (e.at == best.at && e.seq < best.seq) {
			best = e
		}
	}
	m.entries = live
	return best
}

type manualHandle struct {
	m *Manual
	e *manualEntry
}

func (h *manualHandle) Stop() {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	h.e.stopped = true
}

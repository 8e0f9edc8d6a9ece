// Package sched abstracts delayed and repeating callbacks so the engine's
// delivery and power-tick logic can run against real timers in the app and a
// manual clock in tests.
package sched

import (
	"sync"
	"time"
)

// Handle cancels a scheduled callback. Stop is safe to call more than once
// and after the callback has fired.
type Handle interface {
	Stop()
}

// Scheduler schedules callbacks relative to now. Callbacks run on the
// scheduler's goroutine; callers are responsible for their own locking.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Handle
	// Every runs fn repeatedly every d until the handle is stopped.
	Every(d time.Duration, fn func()) Handle
}

// Timers is the production Scheduler backed by the runtime timer heap.
type Timers struct{}

func (Timers) After(d time.Duration, fn func()) Handle {
	return timerHandle{t: time.AfterFunc(d, fn)}
}

func (Timers) Every(d time.Duration, fn func()) Handle {
	h := &tickerHandle{t: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-h.t.C:
				fn()
			case <-h.done:
				return
			}
		}
	}()
	return h
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Stop() { h.t.Stop() }

type tickerHandle struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() {
		h.t.Stop()
		close(h.done)
	})
}

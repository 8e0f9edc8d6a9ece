// Package notify is the local-notification side channel. The engine only
// requests notifications; delivering them is the embedding platform's job.
package notify

import (
	"time"

	"github.com/rs/zerolog"
)

// Notification is a request to surface a message outside the chat screen.
type Notification struct {
	Title string
	Body  string
	After time.Duration
}

// Notifier schedules local notifications. Failures are expected to be logged
// by callers and never abort gameplay.
type Notifier interface {
	Schedule(n Notification) error
	RequestPermission() error
}

// Log is a Notifier that writes requests to the log. It stands in for a
// platform notification center in the terminal build and in tests.
type Log struct {
	log zerolog.Logger
}

// NewLog returns a Log notifier.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Schedule(n Notification) error {
	l.log.Info().
		Str("title", n.Title).
		Str("body", n.Body).
		Dur("after", n.After).
		Msg("local notification scheduled")
	return nil
}

func (l *Log) RequestPermission() error {
	l.log.Info().Msg("notification permission requested")
	return nil
}

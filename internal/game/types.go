package game

import (
	"time"
	"unicode/utf8"
)

// Direction tells which side of a chat a message or end-of-chat came from.
type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// Typing delay: a flat pause plus reading time proportional to text length.
const (
	baseDelaySeconds = 1.2
	delayRunesPerSec = 20.0
)

// ChatMessage is one line of transcript. The transcript is append-only; the
// displayed cursor on Friend tracks how much of it the UI has rendered.
type ChatMessage struct {
	Text      string    `json:"text"`
	Direction Direction `json:"direction"`
	// Delay is the nominal seconds the message takes to appear on screen.
	Delay float64 `json:"delay"`
}

// NewChatMessage builds a message with its computed display delay.
func NewChatMessage(text string, dir Direction) ChatMessage {
	return ChatMessage{
		Text:      text,
		Direction: dir,
		Delay:     baseDelaySeconds + float64(utf8.RuneCountInString(text))/delayRunesPerSec,
	}
}

// DelayDuration converts the nominal delay to a time.Duration.
func (m ChatMessage) DelayDuration() time.Duration {
	return time.Duration(m.Delay * float64(time.Second))
}

// ChatEnded records whether a conversation is over and who closed it.
type ChatEnded struct {
	Ended bool      `json:"ended"`
	By    Direction `json:"by,omitempty"`
}

// RestrictionKind gates whether a friend can be permanently removed.
type RestrictionKind string

const (
	Unrestricted RestrictionKind = "unrestricted"
	MinLevel     RestrictionKind = "minLevel"
	Forbidden    RestrictionKind = "forbidden"
)

// Restriction is a friend's execution restriction.
type Restriction struct {
	Kind  RestrictionKind `yaml:"kind" json:"kind"`
	Level int             `yaml:"level,omitempty" json:"level,omitempty"`
}

// Allows reports whether a player at the given level number may execute the
// friend. The zero Restriction is unrestricted.
func (r Restriction) Allows(level int) bool {
	switch r.Kind {
	case Forbidden:
		return false
	case MinLevel:
		return level >= r.Level
	default:
		return true
	}
}

// StartOption is a deferred first action for a newly introduced friend:
// either a message to send or choices to prompt with. It is consumed exactly
// once by StartChat.
type StartOption struct {
	Message *int        `yaml:"message,omitempty" json:"message,omitempty"`
	Choices []ChoiceDef `yaml:"choices,omitempty" json:"choices,omitempty"`
}

// IsZero reports whether there is no deferred action left.
func (s StartOption) IsZero() bool {
	return s.Message == nil && len(s.Choices) == 0
}

// GameResult is the terminal outcome of a session.
type GameResult string

const (
	Undecided GameResult = ""
	Won       GameResult = "won"
	Lost      GameResult = "lost"
)

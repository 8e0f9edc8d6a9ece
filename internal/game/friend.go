package game

import (
	"soviet/internal/progress"
	"soviet/internal/sched"
)

// Friend is one NPC roster slot: identity, loyalty, powers and an
// independent conversation state machine. Identity is the last name.
//
// The conversation can always be reconstructed from (History, Displayed,
// Pending, Ended): History is the append-only transcript, Displayed the
// cursor of what some UI has already rendered, Pending the choices the
// friend is waiting on, Ended whether and by whom the chat was closed.
type Friend struct {
	FirstName   string                   `json:"firstName"`
	LastName    string                   `json:"lastName"`
	Portrait    string                   `json:"portrait,omitempty"`
	Description string                   `json:"description,omitempty"`
	Loyalty     progress.Percentage      `json:"loyalty"`
	Powers      []*Power                 `json:"powers,omitempty"`
	Restriction Restriction              `json:"restriction"`
	History     []ChatMessage            `json:"history"`
	Displayed   int                      `json:"displayed"`
	Pending     []ChoiceDef              `json:"pending,omitempty"`
	Ended       ChatEnded                `json:"ended"`
	Messages    map[int]MessageDef       `json:"messages"`
	Start       StartOption              `json:"start"`
	Upgrades    map[int]FriendUpgradeDef `json:"upgrades,omitempty"`
	// Unread flags messages that surfaced while no chat screen was attached.
	Unread bool `json:"unread"`

	// Runtime state, never persisted.
	chatting bool
	catchup  sched.Handle
	delivery sched.Handle
}

// NewFriend builds a roster slot from its definition.
func NewFriend(def FriendDef) *Friend {
	f := &Friend{
		FirstName:   def.FirstName,
		LastName:    def.LastName,
		Portrait:    def.Portrait,
		Description: def.Description,
		Loyalty:     progress.NewPercentage(def.Loyalty),
		Restriction: def.Restriction,
		Messages:    def.Messages,
		Start:       def.Start,
	}
	// The upgrade queue is consumed at runtime; the catalog stays pristine.
	if len(def.Upgrades) > 0 {
		f.Upgrades = make(map[int]FriendUpgradeDef, len(def.Upgrades))
		for stage, up := range def.Upgrades {
			f.Upgrades[stage] = up
		}
	}
	for _, p := range def.Powers {
		f.Powers = append(f.Powers, NewPower(p))
	}
	return f
}

// ID returns the friend's stable identity key.
func (f *Friend) ID() string { return f.LastName }

// FullName returns the display name.
func (f *Friend) FullName() string {
	if f.FirstName == "" {
		return f.LastName
	}
	return f.FirstName + " " + f.LastName
}

// Chatting reports whether a chat screen is currently attached.
func (f *Friend) Chatting() bool { return f.chatting }

// Undisplayed returns the transcript suffix the UI has not rendered yet.
func (f *Friend) Undisplayed() []ChatMessage {
	if f.Displayed >= len(f.History) {
		return nil
	}
	out := make([]ChatMessage, len(f.History)-f.Displayed)
	copy(out, f.History[f.Displayed:])
	return out
}

// ApplyUpgrade lands the staged upgrade for the given stage, if any. The
// stage is consumed, so replays are no-ops. It returns the optional message
// id to deliver afterwards.
func (f *Friend) ApplyUpgrade(stage int) (*int, bool) {
	up, ok := f.Upgrades[stage]
	if !ok {
		return nil, false
	}
	delete(f.Upgrades, stage)
	if up.FirstName != "" {
		f.FirstName = up.FirstName
	}
	if up.LastName != "" {
		f.LastName = up.LastName
	}
	if up.Portrait != "" {
		f.Portrait = up.Portrait
	}
	if up.Description != "" {
		f.Description = up.Description
	}
	return up.SendMessage, true
}

// stopTimers cancels every scheduled callback owned by this friend.
func (f *Friend) stopTimers() {
	if f.catchup != nil {
		f.catchup.Stop()
		f.catchup = nil
	}
	if f.delivery != nil {
		f.delivery.Stop()
		f.delivery = nil
	}
	for _, p := range f.Powers {
		p.StopTimer()
	}
}

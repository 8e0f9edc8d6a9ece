package game

import (
	"soviet/internal/notify"
)

// The dialogue state machine. All transitions run under the session lock;
// delayed work goes through the scheduler and re-enters via locked
// callbacks, so per-friend chat state never races with itself.

// StartChat consumes the friend's pending start option exactly once. A
// second call finds it empty and does nothing, which makes replays safe.
func (s *Session) StartChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.friendLocked(id); f != nil {
		s.startChatLocked(f)
	}
}

func (s *Session) startChatLocked(f *Friend) {
	start := f.Start
	if start.IsZero() {
		return
	}
	f.Start = StartOption{}
	switch {
	case start.Message != nil:
		s.sendMessageLocked(f, *start.Message)
	default:
		f.Ended = ChatEnded{}
		f.Pending = start.Choices
		s.emit(Event{Kind: EventChoices, Friend: f, Choices: start.Choices})
	}
}

// SendMessage delivers a message node to the friend's chat: every line is
// appended to the transcript at once, observers are notified of the range,
// and the node's consequences land only after its nominal total delay has
// elapsed, followed by the node's choices (if any). A node with neither
// choices nor an endChat consequence simply leaves the chat open; ending is
// a content-authoring decision, not an engine one.
func (s *Session) SendMessage(id string, msgID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.friendLocked(id); f != nil {
		s.sendMessageLocked(f, msgID)
	}
}

func (s *Session) sendMessageLocked(f *Friend, msgID int) {
	msg, ok := f.Messages[msgID]
	if !ok {
		// Content authors are trusted; a dangling id degrades to a no-op.
		s.log.Warn().Str("friend", f.ID()).Int("message", msgID).Msg("unknown message id")
		return
	}
	if f.delivery != nil {
		// One delivery batch in flight per friend; re-entrant sends would
		// double-schedule consequences.
		s.log.Warn().Str("friend", f.ID()).Int("message", msgID).Msg("delivery already in flight")
		return
	}
	f.Ended = ChatEnded{}
	from := len(f.History)
	total := 0.0
	for _, line := range msg.Lines {
		m := NewChatMessage(line, Incoming)
		f.History = append(f.History, m)
		total += m.Delay
	}
	s.emit(Event{Kind: EventMessages, Friend: f, From: from, To: len(f.History), Consequences: msg.Consequences})
	if f.chatting {
		// An attached observer renders the batch as it lands; the cursor
		// follows so a later detach has nothing to re-surface.
		f.Displayed = len(f.History)
	} else {
		s.startCatchupLocked(f)
	}
	f.delivery = s.sched.After(seconds(total), func() {
		s.finishDelivery(f, msg)
	})
}

// finishDelivery runs once the batch's nominal delay has elapsed, so a
// choice is never offered before its triggering text has finished.
func (s *Session) finishDelivery(f *Friend, msg MessageDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.delivery = nil
	s.applyAllLocked(msg.Consequences, f)
	if len(msg.Choices) > 0 && !f.Ended.Ended {
		f.Pending = msg.Choices
		s.emit(Event{Kind: EventChoices, Friend: f, Choices: msg.Choices})
	}
}

// Respond resolves a pending choice by index: the choice's lines go out
// (first line with no delay), its consequences apply immediately, and a
// next-message id chains straight into SendMessage.
func (s *Session) Respond(id string, choice int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.friendLocked(id)
	if f == nil {
		return
	}
	if choice < 0 || choice >= len(f.Pending) {
		s.log.Warn().Str("friend", f.ID()).Int("choice", choice).Msg("no such pending choice")
		return
	}
	picked := f.Pending[choice]
	if picked.MinLevel > s.Player.Level.Tier() {
		s.log.Debug().Str("friend", f.ID()).Int("minLevel", picked.MinLevel).Msg("choice locked by level")
		return
	}
	f.Pending = nil
	from := len(f.History)
	for i, line := range picked.Lines {
		m := NewChatMessage(line, Outgoing)
		if i == 0 {
			m.Delay = 0
		}
		f.History = append(f.History, m)
	}
	s.Player.MoveToFront(f.ID())
	s.emit(Event{Kind: EventMessages, Friend: f, From: from, To: len(f.History), Consequences: picked.Consequences})
	if f.chatting {
		f.Displayed = len(f.History)
	} else {
		s.startCatchupLocked(f)
	}
	s.applyAllLocked(picked.Consequences, f)
	if picked.Next != nil {
		s.sendMessageLocked(f, *picked.Next)
	}
}

// AttachChat marks the friend's chat as on screen and reconciles the
// displayed cursor with what the UI reports having rendered. It returns the
// transcript suffix still to show plus the pending and ended state, and
// cancels background catch-up so nothing is delivered twice.
func (s *Session) AttachChat(id string, displayed int) ([]ChatMessage, []ChoiceDef, ChatEnded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.friendLocked(id)
	if f == nil {
		return nil, nil, ChatEnded{}
	}
	f.chatting = true
	if f.catchup != nil {
		f.catchup.Stop()
		f.catchup = nil
	}
	if displayed >= 0 && displayed <= len(f.History) {
		f.Displayed = displayed
	}
	suffix := f.Undisplayed()
	f.Displayed = len(f.History)
	f.Unread = false
	s.emit(Event{Kind: EventFriendStatus, Friend: f})
	return suffix, f.Pending, f.Ended
}

// DetachChat marks the chat screen gone. Undisplayed messages convert to
// background catch-up instead of being cancelled.
func (s *Session) DetachChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.friendLocked(id)
	if f == nil {
		return
	}
	f.chatting = false
	s.startCatchupLocked(f)
}

// startCatchupLocked schedules the next undisplayed message to surface after
// its own delay. Steps chain one at a time so a re-attach cancels cleanly at
// a message boundary; the guard keeps a second chain from ever starting.
func (s *Session) startCatchupLocked(f *Friend) {
	if f.catchup != nil || f.chatting || f.Displayed >= len(f.History) {
		return
	}
	m := f.History[f.Displayed]
	f.catchup = s.sched.After(m.DelayDuration(), func() {
		s.catchupStep(f)
	})
}

func (s *Session) catchupStep(f *Friend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.catchup = nil
	if f.chatting || f.Displayed >= len(f.History) {
		return
	}
	m := f.History[f.Displayed]
	f.Displayed++
	if m.Direction == Incoming {
		f.Unread = true
		n := notify.Notification{Title: f.FirstName, Body: m.Text}
		if err := s.notifier.Schedule(n); err != nil {
			s.log.Warn().Err(err).Str("friend", f.ID()).Msg("notification scheduling failed")
		}
		s.emit(Event{Kind: EventFriendStatus, Friend: f})
	}
	s.startCatchupLocked(f)
}

func (s *Session) friendLocked(id string) *Friend {
	f := s.Player.Friend(id)
	if f == nil {
		s.log.Warn().Str("friend", id).Msg("unknown friend")
	}
	return f
}

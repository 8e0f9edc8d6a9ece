package game

// EventKind tags an engine event.
type EventKind string

const (
	// EventMessages: transcript entries History[From:To] were appended.
	EventMessages EventKind = "messages"
	// EventChoices: the friend is now awaiting a player choice.
	EventChoices EventKind = "choices"
	// EventChatEnded: the conversation was closed by By.
	EventChatEnded EventKind = "chatEnded"
	// EventFriendStatus: loyalty, identity or unread state changed.
	EventFriendStatus EventKind = "friendStatus"
	// EventPlayerStatus: level, support or currency changed.
	EventPlayerStatus EventKind = "playerStatus"
	// EventConsequence: a consequence was applied and may be visualized.
	EventConsequence EventKind = "consequence"
	// EventQuizStarted: a quiz session is ready on the session.
	EventQuizStarted EventKind = "quizStarted"
	// EventGameEnded: support hit a terminal value; timers are stopped.
	EventGameEnded EventKind = "gameEnded"
)

// Event is the single tagged notification the engine emits. Only the fields
// relevant to the kind are set.
type Event struct {
	Kind     EventKind
	Friend   *Friend
	From, To int
	Choices  []ChoiceDef
	// Consequences accompany an EventMessages batch so a presentation layer
	// can stage their visualization before they land.
	Consequences []Consequence
	By           Direction
	Consequence  *Consequence
	Category     string
	Result       GameResult
}

// Observer receives engine events. The engine tolerates having none; the
// presentation layer registers one per screen and must not call back into
// the session from HandleEvent.
type Observer interface {
	HandleEvent(Event)
}

// SetObserver registers the observer, replacing any previous one. Pass nil
// to detach.
func (s *Session) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// emit is fire-and-forget; no subscriber, no work.
func (s *Session) emit(e Event) {
	if s.observer != nil {
		s.observer.HandleEvent(e)
	}
}

package game

import (
	"fmt"

	"soviet/internal/progress"
)

// ConsequenceKind names a state mutation a message or choice can carry.
type ConsequenceKind string

const (
	EndChat          ConsequenceKind = "endChat"
	IntroduceFriend  ConsequenceKind = "introduceFriend"
	RemoveFriend     ConsequenceKind = "removeFriend"
	ChangeLevel      ConsequenceKind = "changeLevel"
	ChangeSupport    ConsequenceKind = "changeSupport"
	ChangeCurrency   ConsequenceKind = "changeCurrency"
	ChangeLoyalty    ConsequenceKind = "changeLoyalty"
	UpgradePower     ConsequenceKind = "upgradePower"
	StartQuiz        ConsequenceKind = "startQuiz"
	SetStartOption   ConsequenceKind = "setStartOption"
	UpgradeFriend    ConsequenceKind = "upgradeFriend"
	AskNotifications ConsequenceKind = "askNotifications"
	Noop             ConsequenceKind = "noop"
)

// Consequence is a tagged instruction against the player/friend state graph.
// Only the fields relevant to the kind are set.
type Consequence struct {
	Kind ConsequenceKind `yaml:"kind" json:"kind"`
	// Amount is the delta for the change* kinds.
	Amount int `yaml:"amount,omitempty" json:"amount,omitempty"`
	// By is who closed the chat for endChat.
	By Direction `yaml:"by,omitempty" json:"by,omitempty"`
	// Friend targets a roster slot by last name; empty means the friend the
	// consequence was delivered through.
	Friend string `yaml:"friend,omitempty" json:"friend,omitempty"`
	// Power names the power to upgrade.
	Power string `yaml:"power,omitempty" json:"power,omitempty"`
	// Category filters the quiz bank for startQuiz; empty draws at random.
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	// Level is the staged upgrade key for upgradeFriend; 0 means the
	// player's current level number.
	Level int `yaml:"level,omitempty" json:"level,omitempty"`
	// Start is the deferred action for setStartOption.
	Start *StartOption `yaml:"start,omitempty" json:"start,omitempty"`
}

func (c Consequence) validate() error {
	switch c.Kind {
	case EndChat:
		if c.By != Incoming && c.By != Outgoing {
			return fmt.Errorf("endChat: by must be incoming or outgoing")
		}
	case IntroduceFriend, RemoveFriend:
		if c.Friend == "" {
			return fmt.Errorf("%s: missing friend", c.Kind)
		}
	case UpgradePower:
		if c.Power == "" {
			return fmt.Errorf("upgradePower: missing power")
		}
	case SetStartOption:
		if c.Start == nil {
			return fmt.Errorf("setStartOption: missing start option")
		}
	case ChangeLevel, ChangeSupport, ChangeCurrency, ChangeLoyalty,
		StartQuiz, UpgradeFriend, AskNotifications, Noop:
	default:
		return fmt.Errorf("unknown consequence kind %q", c.Kind)
	}
	return nil
}

// CanApply reports whether a consequence is currently legal. Loyalty and
// currency may not go negative, and power upgrades need the coins; every
// other kind is legal by default. Callers wanting user-facing feedback check
// here first, because Apply silently drops illegal consequences.
func (s *Session) CanApply(c Consequence, f *Friend) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canApplyLocked(c, f)
}

func (s *Session) canApplyLocked(c Consequence, f *Friend) bool {
	switch c.Kind {
	case ChangeLoyalty:
		target := s.targetLocked(c, f)
		return target != nil && target.Loyalty.Value()+c.Amount >= 0
	case ChangeCurrency:
		return s.Player.Currency+c.Amount >= 0
	case UpgradePower:
		p, _ := s.findPowerLocked(c.Power, s.targetLocked(c, f))
		return p != nil && p.HasUpgrade() && s.Player.Currency >= p.UpgradeCost()
	default:
		return true
	}
}

// Apply mutates state for a single consequence, dropping it silently when
// illegal.
func (s *Session) Apply(c Consequence, f *Friend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(c, f)
}

// applyAllLocked applies a batch in document order. Each entry is re-checked
// against the state left behind by the ones before it.
func (s *Session) applyAllLocked(batch []Consequence, f *Friend) {
	for _, c := range batch {
		s.applyLocked(c, f)
	}
}

func (s *Session) applyLocked(c Consequence, f *Friend) {
	if !s.canApplyLocked(c, f) {
		s.log.Debug().Str("kind", string(c.Kind)).Msg("consequence dropped")
		return
	}
	switch c.Kind {
	case EndChat:
		target := s.targetLocked(c, f)
		if target == nil {
			return
		}
		target.Pending = nil
		target.Ended = ChatEnded{Ended: true, By: c.By}
		s.emit(Event{Kind: EventChatEnded, Friend: target, By: c.By})
	case IntroduceFriend:
		s.introduceLocked(c.Friend)
	case RemoveFriend:
		target := s.targetLocked(c, f)
		if target == nil {
			return
		}
		target.stopTimers()
		if s.Player.Remove(target.ID()) {
			s.emit(Event{Kind: EventFriendStatus, Friend: target})
			s.emit(Event{Kind: EventPlayerStatus})
			s.checkEndLocked()
		}
	case ChangeLevel:
		dir := s.Player.Level.Add(c.Amount)
		s.emit(Event{Kind: EventPlayerStatus})
		if dir == progress.Increased {
			s.applyFriendUpgradesLocked(s.Player.Level.Tier())
		}
	case ChangeSupport:
		s.Player.Support.Add(c.Amount)
		s.emit(Event{Kind: EventPlayerStatus})
		s.checkEndLocked()
	case ChangeCurrency:
		s.Player.Currency += c.Amount
		s.emit(Event{Kind: EventPlayerStatus})
	case ChangeLoyalty:
		target := s.targetLocked(c, f)
		if target == nil {
			return
		}
		target.Loyalty.Add(c.Amount)
		s.Player.RecomputeSupport()
		s.emit(Event{Kind: EventFriendStatus, Friend: target})
		s.emit(Event{Kind: EventPlayerStatus})
		s.checkEndLocked()
	case UpgradePower:
		s.upgradePowerLocked(c.Power, s.targetLocked(c, f))
	case StartQuiz:
		s.quiz = NewQuiz(s.content.Quiz, c.Category)
		s.emit(Event{Kind: EventQuizStarted, Category: c.Category})
	case SetStartOption:
		target := s.targetLocked(c, f)
		if target == nil {
			return
		}
		target.Start = *c.Start
	case UpgradeFriend:
		s.upgradeFriendLocked(c, f)
	case AskNotifications:
		if err := s.notifier.RequestPermission(); err != nil {
			s.log.Warn().Err(err).Msg("notification permission request failed")
		}
	case Noop:
	default:
		// Unknown kinds are legal by default and do nothing. Validation
		// rejects them at load time, so this only fires on hand-built values.
		s.log.Warn().Str("kind", string(c.Kind)).Msg("unhandled consequence kind")
	}
	s.emit(Event{Kind: EventConsequence, Friend: f, Consequence: &c})
}

// targetLocked resolves the friend a consequence acts on: the named roster
// slot if set, otherwise the friend it was delivered through.
func (s *Session) targetLocked(c Consequence, f *Friend) *Friend {
	if c.Friend == "" {
		return f
	}
	if found := s.Player.Friend(c.Friend); found != nil {
		return found
	}
	s.log.Warn().Str("friend", c.Friend).Msg("consequence targets unknown friend")
	return nil
}

func (s *Session) introduceLocked(id string) {
	if s.Player.Friend(id) != nil {
		s.log.Debug().Str("friend", id).Msg("friend already on roster")
		return
	}
	def, ok := s.content.FriendDef(id)
	if !ok {
		s.log.Warn().Str("friend", id).Msg("introduceFriend: unknown definition")
		return
	}
	f := NewFriend(def)
	s.Player.AddFriend(f)
	for _, p := range f.Powers {
		s.applyPowerLocked(p, f)
	}
	s.emit(Event{Kind: EventFriendStatus, Friend: f})
	s.emit(Event{Kind: EventPlayerStatus})
	s.checkEndLocked()
	s.startChatLocked(f)
}

func (s *Session) upgradePowerLocked(name string, f *Friend) {
	p, owner := s.findPowerLocked(name, f)
	if p == nil {
		s.log.Warn().Str("power", name).Msg("upgradePower: unknown power")
		return
	}
	s.Player.Currency -= p.UpgradeCost()
	p.Upgrade()
	s.applyPowerLocked(p, owner)
	s.emit(Event{Kind: EventPlayerStatus})
	if owner != nil {
		s.emit(Event{Kind: EventFriendStatus, Friend: owner})
	}
}

func (s *Session) upgradeFriendLocked(c Consequence, f *Friend) {
	target := s.targetLocked(c, f)
	if target == nil {
		return
	}
	stage := c.Level
	if stage == 0 {
		stage = s.Player.Level.Tier()
	}
	sendMessage, ok := target.ApplyUpgrade(stage)
	if !ok {
		return
	}
	s.emit(Event{Kind: EventFriendStatus, Friend: target})
	if sendMessage != nil {
		s.sendMessageLocked(target, *sendMessage)
	}
}

// applyFriendUpgradesLocked lands every staged upgrade unlocked at or below
// the given level number.
func (s *Session) applyFriendUpgradesLocked(level int) {
	for _, f := range s.Player.Friends {
		for stage := range f.Upgrades {
			if stage > level {
				continue
			}
			sendMessage, ok := f.ApplyUpgrade(stage)
			if !ok {
				continue
			}
			s.emit(Event{Kind: EventFriendStatus, Friend: f})
			if sendMessage != nil {
				s.sendMessageLocked(f, *sendMessage)
			}
		}
	}
}

// findPowerLocked resolves a power by name, searching the player first and
// then the target friend. The returned owner is nil for player powers.
func (s *Session) findPowerLocked(name string, f *Friend) (*Power, *Friend) {
	for _, p := range s.Player.Powers {
		if p.Name == name {
			return p, nil
		}
	}
	if f != nil {
		for _, p := range f.Powers {
			if p.Name == name {
				return p, f
			}
		}
	}
	return nil, nil
}

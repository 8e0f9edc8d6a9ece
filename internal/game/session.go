package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"soviet/internal/notify"
	"soviet/internal/sched"
)

// Store is the persistence gateway the session checkpoints through. Load
// reports absence separately from failure; callers fall back to a fresh
// player either way.
type Store interface {
	Save(ctx context.Context, p *Player) error
	Load(ctx context.Context) (*Player, bool, error)
	Clear(ctx context.Context) error
}

// Session owns the player aggregate and is the only thing that mutates it.
// All mutation happens under one lock; delayed work re-enters through
// scheduler callbacks that take the same lock, so concurrency is temporal
// interleaving only.
type Session struct {
	mu       sync.Mutex
	Player   *Player
	content  *Content
	sched    sched.Scheduler
	notifier notify.Notifier
	store    Store
	log      zerolog.Logger
	observer Observer
	quiz     *Quiz
	result   GameResult
}

// NewSession wires a session. The store may be nil for throwaway games.
func NewSession(player *Player, content *Content, scheduler sched.Scheduler, notifier notify.Notifier, store Store, log zerolog.Logger) *Session {
	return &Session{
		Player:   player,
		content:  content,
		sched:    scheduler,
		notifier: notifier,
		store:    store,
		log:      log,
	}
}

// LoadOrNewPlayer restores the saved aggregate, substituting a fresh player
// when there is no snapshot or the snapshot cannot be read. Persistence
// trouble never kills a session.
func LoadOrNewPlayer(ctx context.Context, store Store, content *Content, name string, log zerolog.Logger) *Player {
	if store == nil {
		return NewPlayer(name, content)
	}
	p, ok, err := store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot unreadable, starting fresh")
		return NewPlayer(name, content)
	}
	if !ok {
		return NewPlayer(name, content)
	}
	p.NewPlayer = false
	return p
}

// Start arms every power timer and resumes background catch-up for friends
// with undisplayed history. Call once after construction.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Player.Powers {
		s.applyPowerLocked(p, nil)
	}
	for _, f := range s.Player.Friends {
		for _, p := range f.Powers {
			s.applyPowerLocked(p, f)
		}
		s.startCatchupLocked(f)
	}
}

// Stop cancels every timer the session owns. It is idempotent and safe to
// call with none running.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
}

func (s *Session) stopTimersLocked() {
	for _, p := range s.Player.Powers {
		p.StopTimer()
	}
	for _, f := range s.Player.Friends {
		f.stopTimers()
	}
}

// Result returns the terminal outcome, or Undecided while play continues.
func (s *Session) Result() GameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// checkEndLocked ends the game when support reaches a terminal value. The
// aggregate is quiesced before observers hear about it.
func (s *Session) checkEndLocked() {
	if s.result != Undecided {
		return
	}
	switch v := s.Player.Support.Value(); {
	case v <= 0:
		s.result = Lost
	case v >= 100:
		s.result = Won
	default:
		return
	}
	s.stopTimersLocked()
	s.log.Info().Str("result", string(s.result)).Msg("game over")
	s.emit(Event{Kind: EventGameEnded, Result: s.result})
}

// ApplyPower arms or fires a power against its owner (nil for the player).
// Interval powers schedule a recurring application of their effect; one-shot
// powers apply immediately and zero their strength so a reload cannot fire
// them again.
func (s *Session) ApplyPower(p *Power, owner *Friend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyPowerLocked(p, owner)
}

func (s *Session) applyPowerLocked(p *Power, owner *Friend) {
	if p.Interval > 0 {
		p.StopTimer()
		p.timer = s.sched.Every(seconds(p.Interval), func() {
			s.powerTick(p, owner)
		})
		return
	}
	if p.Strength == 0 {
		return
	}
	s.applyLocked(p.consequence(), owner)
	p.Strength = 0
}

func (s *Session) powerTick(p *Power, owner *Friend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != Undecided {
		return
	}
	s.applyLocked(p.consequence(), owner)
}

// Execute removes a friend on the player's order. The friend's execution
// restriction gates it: forbidden friends can never be executed and minLevel
// friends need the player's level number. Authored removeFriend consequences
// bypass this and go through Apply directly.
func (s *Session) Execute(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.friendLocked(id)
	if f == nil {
		return false
	}
	if !f.Restriction.Allows(s.Player.Level.Tier()) {
		s.log.Debug().Str("friend", id).Msg("execution restricted")
		return false
	}
	s.applyLocked(Consequence{Kind: RemoveFriend, Friend: id}, nil)
	return true
}

// Quiz returns the quiz in progress, nil outside one.
func (s *Session) Quiz() *Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

// AnswerQuiz records an answer to the running quiz. When the last question
// is answered the accumulated experience lands as a level change and the
// quiz is discarded.
func (s *Session) AnswerQuiz(choice int) (correct, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return false, true
	}
	correct = s.quiz.Answer(choice)
	if !s.quiz.Done() {
		return correct, false
	}
	reward := s.quiz.Experience
	s.quiz = nil
	if reward > 0 {
		s.applyLocked(Consequence{Kind: ChangeLevel, Amount: reward}, nil)
	}
	return correct, true
}

// Checkpoint snapshots the whole aggregate through the persistence gateway.
func (s *Session) Checkpoint(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	s.Player.NewPlayer = false
	return s.store.Save(ctx, s.Player)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

package game

import (
	"math"

	"soviet/internal/progress"
)

// Player is the root aggregate. It is owned by a Session, which is the only
// writer; the presentation layer reads it through events.
type Player struct {
	Name     string              `json:"name"`
	Level    progress.Progress   `json:"level"`
	Support  progress.Percentage `json:"support"`
	Currency int                 `json:"currency"`
	// Friends is ordered: the most recently messaged friend sits at the head.
	Friends   []*Friend `json:"friends"`
	Powers    []*Power  `json:"powers"`
	NewPlayer bool      `json:"newPlayer"`
}

// NewPlayer builds a fresh aggregate from the catalog's starting state.
func NewPlayer(name string, content *Content) *Player {
	p := &Player{
		Name:      name,
		Currency:  content.Player.Currency,
		NewPlayer: true,
	}
	for _, def := range content.Player.Powers {
		p.Powers = append(p.Powers, NewPower(def))
	}
	for _, def := range content.Friends {
		if def.Initial {
			p.Friends = append(p.Friends, NewFriend(def))
		}
	}
	p.RecomputeSupport()
	return p
}

// Friend looks up a roster slot by identity.
func (p *Player) Friend(id string) *Friend {
	for _, f := range p.Friends {
		if f.ID() == id {
			return f
		}
	}
	return nil
}

// AddFriend inserts at the roster head and recomputes support.
func (p *Player) AddFriend(f *Friend) {
	p.Friends = append([]*Friend{f}, p.Friends...)
	p.RecomputeSupport()
}

// Remove drops a friend by identity and recomputes support. It reports
// whether anything was removed.
func (p *Player) Remove(id string) bool {
	for i, f := range p.Friends {
		if f.ID() == id {
			p.Friends = append(p.Friends[:i], p.Friends[i+1:]...)
			p.RecomputeSupport()
			return true
		}
	}
	return false
}

// MoveToFront surfaces the most recently messaged friend.
func (p *Player) MoveToFront(id string) {
	for i, f := range p.Friends {
		if f.ID() == id {
			if i > 0 {
				p.Friends = append(p.Friends[:i], p.Friends[i+1:]...)
				p.Friends = append([]*Friend{f}, p.Friends...)
			}
			return
		}
	}
}

// RecomputeSupport sets support to the rounded mean of all friend loyalty.
// An empty roster leaves support unchanged rather than dividing by zero.
func (p *Player) RecomputeSupport() {
	if len(p.Friends) == 0 {
		return
	}
	sum := 0
	for _, f := range p.Friends {
		sum += f.Loyalty.Value()
	}
	p.Support.Set(int(math.Round(float64(sum) / float64(len(p.Friends)))))
}

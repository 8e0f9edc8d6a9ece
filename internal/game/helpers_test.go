package game

import (
	"sync"

	"github.com/rs/zerolog"

	"soviet/internal/notify"
	"soviet/internal/sched"
)

func intp(v int) *int { return &v }

// stubNotifier records notification requests.
type stubNotifier struct {
	mu       sync.Mutex
	notes    []notify.Notification
	requests int
}

func (n *stubNotifier) Schedule(x notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, x)
	return nil
}

func (n *stubNotifier) RequestPermission() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests++
	return nil
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

// recorder collects emitted events.
type recorder struct {
	events []Event
}

func (r *recorder) HandleEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) has(kind EventKind) bool {
	for _, e := range r.events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// newTestSession wires a session over a manual clock with no store.
func newTestSession(content *Content) (*Session, *sched.Manual, *stubNotifier) {
	clock := sched.NewManual()
	notifier := &stubNotifier{}
	player := NewPlayer("Tester", content)
	s := NewSession(player, content, clock, notifier, nil, zerolog.Nop())
	return s, clock, notifier
}

// minimalContent is one initial friend with a small message graph:
//
//	1: two lines, no choices, ends the chat from the incoming side
//	2: one line, three choices (the second chains into 3, the third is gated)
//	3: one line, open ended
func minimalContent() *Content {
	return &Content{
		Player: PlayerDef{Currency: 100},
		Friends: []FriendDef{
			{
				FirstName: "Anna",
				LastName:  "Petrova",
				Loyalty:   50,
				Initial:   true,
				Start:     StartOption{Message: intp(1)},
				Messages: map[int]MessageDef{
					1: {
						Lines: []string{"Comrade, we must talk.", "It is about the harvest."},
						Consequences: []Consequence{
							{Kind: EndChat, By: Incoming},
						},
					},
					2: {
						Lines: []string{"What shall we do?"},
						Choices: []ChoiceDef{
							{
								Lines:        []string{"Nothing."},
								Consequences: []Consequence{{Kind: ChangeLoyalty, Amount: -5}},
							},
							{
								Lines:        []string{"Send the tractors."},
								Next:         intp(3),
								Consequences: []Consequence{{Kind: ChangeLoyalty, Amount: 5}},
							},
							{
								Lines:    []string{"Deploy the secret reserve."},
								MinLevel: 5,
							},
						},
					},
					3: {
						Lines: []string{"The tractors are on their way."},
					},
				},
			},
		},
	}
}

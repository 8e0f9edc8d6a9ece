package game_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soviet/internal/game"
	"soviet/internal/notify"
	"soviet/internal/save"
	"soviet/internal/sched"
)

func sessionContent() *game.Content {
	one := 1
	return &game.Content{
		Player: game.PlayerDef{Currency: 80},
		Friends: []game.FriendDef{{
			FirstName: "Anna",
			LastName:  "Petrova",
			Loyalty:   60,
			Initial:   true,
			Start:     game.StartOption{Message: &one},
			Messages: map[int]game.MessageDef{
				1: {
					Lines: []string{"Comrade, we must talk.", "It is about the harvest."},
					Consequences: []game.Consequence{
						{Kind: game.ChangeCurrency, Amount: -10},
					},
				},
			},
		}},
	}
}

func newSession(p *game.Player, c *game.Content, store game.Store) (*game.Session, *sched.Manual) {
	clock := sched.NewManual()
	s := game.NewSession(p, c, clock, notify.NewLog(zerolog.Nop()), store, zerolog.Nop())
	return s, clock
}

func TestCheckpointRoundTripMidChat(t *testing.T) {
	ctx := context.Background()
	content := sessionContent()
	store := save.NewMemory()

	p := game.NewPlayer("Tester", content)
	s, clock := newSession(p, content, store)

	s.StartChat("Petrova")
	clock.Advance(10 * time.Second)
	require.NoError(t, s.Checkpoint(ctx))
	s.Stop()

	restored := game.LoadOrNewPlayer(ctx, store, content, "ignored", zerolog.Nop())
	assert.False(t, restored.NewPlayer)
	assert.Equal(t, 70, restored.Currency, "delivered consequence survives the snapshot")

	f := restored.Friend("Petrova")
	require.NotNil(t, f)
	require.Len(t, f.History, 2)
	assert.Equal(t, "Comrade, we must talk.", f.History[0].Text)

	// The restored aggregate drives a fresh session: attaching replays the
	// unseen tail exactly once.
	s2, _ := newSession(restored, content, store)
	suffix, _, _ := s2.AttachChat("Petrova", 0)
	assert.Len(t, suffix, 2)
	suffix, _, _ = s2.AttachChat("Petrova", -1)
	assert.Empty(t, suffix)
}

func TestCheckpointWithoutStore(t *testing.T) {
	content := sessionContent()
	p := game.NewPlayer("Tester", content)
	s, _ := newSession(p, content, nil)

	assert.NoError(t, s.Checkpoint(context.Background()))
}

func TestLoadOrNewPlayerOnEmptyStore(t *testing.T) {
	content := sessionContent()
	p := game.LoadOrNewPlayer(context.Background(), save.NewMemory(), content, "Fresh", zerolog.Nop())

	assert.True(t, p.NewPlayer)
	assert.Equal(t, "Fresh", p.Name)
	assert.Equal(t, 80, p.Currency)
	require.Len(t, p.Friends, 1)
}

func TestStartResumesBackgroundCatchup(t *testing.T) {
	ctx := context.Background()
	content := sessionContent()
	store := save.NewMemory()

	p := game.NewPlayer("Tester", content)
	s, _ := newSession(p, content, store)
	s.StartChat("Petrova")
	// Snapshot before any line surfaces; both are still undisplayed.
	require.NoError(t, s.Checkpoint(ctx))
	s.Stop()

	restored := game.LoadOrNewPlayer(ctx, store, content, "ignored", zerolog.Nop())
	s2, clock := newSession(restored, content, store)
	s2.Start()

	clock.Advance(time.Minute)

	f := restored.Friend("Petrova")
	assert.Equal(t, len(f.History), f.Displayed, "restart resumes pending deliveries")
	assert.True(t, f.Unread)
}

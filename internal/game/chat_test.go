package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageEndsChatAfterDelays(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	rec := &recorder{}
	s.SetObserver(rec)
	f := s.Player.Friend("Petrova")

	s.StartChat("Petrova")

	// Both lines are in the transcript at once; consequences wait out the
	// batch's nominal delay.
	require.Len(t, f.History, 2)
	assert.False(t, f.Ended.Ended)

	clock.Advance(10 * time.Second)

	assert.True(t, f.Ended.Ended)
	assert.Equal(t, Incoming, f.Ended.By)
	assert.Nil(t, f.Pending, "a no-choice node never awaits a response")
	assert.False(t, rec.has(EventChoices))
	assert.True(t, rec.has(EventChatEnded))
}

func TestStartChatIsIdempotent(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.StartChat("Petrova")
	clock.Advance(10 * time.Second)
	s.StartChat("Petrova")
	clock.Advance(10 * time.Second)

	assert.Len(t, f.History, 2, "second StartChat must be a no-op")
}

func TestMessageRangeEvent(t *testing.T) {
	s, _, _ := newTestSession(minimalContent())
	rec := &recorder{}
	s.SetObserver(rec)

	s.SendMessage("Petrova", 1)

	require.NotEmpty(t, rec.events)
	e := rec.events[0]
	assert.Equal(t, EventMessages, e.Kind)
	assert.Equal(t, 0, e.From)
	assert.Equal(t, 2, e.To)
	for _, m := range e.Friend.History[e.From:e.To] {
		assert.Equal(t, Incoming, m.Direction)
		assert.Greater(t, m.Delay, 0.0)
	}
	assert.Equal(t, []Consequence{{Kind: EndChat, By: Incoming}}, e.Consequences,
		"the batch event carries the node's consequences")
}

func TestChoiceEventCarriesConsequences(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	rec := &recorder{}
	s.SetObserver(rec)

	s.SendMessage("Petrova", 2)
	clock.Advance(5 * time.Second)
	s.Respond("Petrova", 0)

	found := false
	for _, e := range rec.events {
		if e.Kind != EventMessages || e.Friend.History[e.From].Direction != Outgoing {
			continue
		}
		found = true
		assert.Equal(t, []Consequence{{Kind: ChangeLoyalty, Amount: -5}}, e.Consequences)
	}
	require.True(t, found, "the outgoing batch must be announced")
}

func TestUnknownMessageIsNoOp(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.SendMessage("Petrova", 99)
	clock.Advance(time.Minute)

	assert.Empty(t, f.History)
	assert.False(t, f.Ended.Ended)
}

func TestRespondChainsIntoNextMessage(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.SendMessage("Petrova", 2)
	clock.Advance(5 * time.Second)
	require.Len(t, f.Pending, 3, "choices offered after delivery")

	s.Respond("Petrova", 1)

	assert.Equal(t, 55, f.Loyalty.Value(), "choice consequence applied")
	require.Len(t, f.History, 3, "outgoing line plus chained incoming line")
	assert.Equal(t, Outgoing, f.History[1].Direction)
	assert.Equal(t, 0.0, f.History[1].Delay, "first outgoing line has no delay")
	assert.Equal(t, Incoming, f.History[2].Direction)
	assert.Equal(t, "The tractors are on their way.", f.History[2].Text)
	assert.Nil(t, f.Pending)
}

func TestRespondHonorsLevelGate(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.SendMessage("Petrova", 2)
	clock.Advance(5 * time.Second)
	require.Len(t, f.Pending, 3)

	s.Respond("Petrova", 2) // gated at level 5

	assert.Len(t, f.Pending, 3, "locked choice leaves the question open")
	assert.Len(t, f.History, 1)

	s.Respond("Petrova", 7) // out of range
	assert.Len(t, f.History, 1)
}

func TestChoicesNotOfferedBeforeDeliveryFinishes(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.SendMessage("Petrova", 2)
	assert.Nil(t, f.Pending)

	clock.Advance(time.Second)
	assert.Nil(t, f.Pending, "choices must wait out the text delay")

	clock.Advance(5 * time.Second)
	assert.NotNil(t, f.Pending)
}

func TestDeliveryGuardRejectsReentrantSend(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.SendMessage("Petrova", 3)
	s.SendMessage("Petrova", 3)

	assert.Len(t, f.History, 1, "second send while in flight is dropped")

	clock.Advance(time.Minute)
	s.SendMessage("Petrova", 3)
	assert.Len(t, f.History, 2, "sends are fine once the batch lands")
}

func TestResumeRoundTrip(t *testing.T) {
	s, clock, _ := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.StartChat("Petrova")
	clock.Advance(10 * time.Second)
	require.Len(t, f.History, 2)

	suffix, pending, ended := s.AttachChat("Petrova", 0)
	assert.Len(t, suffix, 2, "everything undisplayed comes back once")
	assert.Nil(t, pending)
	assert.True(t, ended.Ended)
	assert.Equal(t, len(f.History), f.Displayed)

	suffix, _, _ = s.AttachChat("Petrova", -1)
	assert.Empty(t, suffix, "reattach with a current cursor re-emits nothing")
}

func TestBackgroundCatchup(t *testing.T) {
	s, clock, notifier := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.StartChat("Petrova")
	require.Equal(t, 0, f.Displayed)

	clock.Advance(time.Minute)

	assert.Equal(t, 2, f.Displayed, "messages surface on their own schedule")
	assert.True(t, f.Unread)
	assert.Equal(t, 2, notifier.count(), "one notification per incoming message")
}

func TestReattachCancelsCatchupWithoutDoubleDelivery(t *testing.T) {
	s, clock, notifier := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.StartChat("Petrova")
	// First line (2.3s nominal) surfaces; the second is still pending.
	clock.Advance(3 * time.Second)
	require.Equal(t, 1, f.Displayed)
	require.Equal(t, 1, notifier.count())

	suffix, _, _ := s.AttachChat("Petrova", -1)

	assert.Len(t, suffix, 1, "exactly the unsurfaced tail, no duplicates")
	assert.False(t, f.Unread)
	clock.Advance(time.Minute)
	assert.Equal(t, 1, notifier.count(), "no notifications while attached")
	assert.Equal(t, 2, f.Displayed)
}

func TestDetachKeepsViewedMessagesRead(t *testing.T) {
	s, clock, notifier := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.AttachChat("Petrova", 0)
	s.SendMessage("Petrova", 3)
	require.Equal(t, len(f.History), f.Displayed, "attached delivery advances the cursor")
	s.DetachChat("Petrova")

	clock.Advance(time.Minute)

	assert.False(t, f.Unread, "messages viewed on screen never turn unread")
	assert.Equal(t, 0, notifier.count(), "no notifications for viewed messages")

	suffix, _, _ := s.AttachChat("Petrova", -1)
	assert.Empty(t, suffix, "nothing to re-surface after detach")
}

func TestRespondWhileAttachedAdvancesCursor(t *testing.T) {
	s, clock, notifier := newTestSession(minimalContent())
	f := s.Player.Friend("Petrova")

	s.AttachChat("Petrova", 0)
	s.SendMessage("Petrova", 2)
	clock.Advance(5 * time.Second)
	s.Respond("Petrova", 1) // outgoing line plus chained message 3

	assert.Equal(t, len(f.History), f.Displayed)
	s.DetachChat("Petrova")
	clock.Advance(time.Minute)
	assert.False(t, f.Unread)
	assert.Equal(t, 0, notifier.count())
}

func TestRespondSurfacesFriend(t *testing.T) {
	content := minimalContent()
	content.Friends = append(content.Friends, FriendDef{
		LastName: "Volkov",
		Loyalty:  40,
		Initial:  true,
	})
	s, clock, _ := newTestSession(content)
	require.Equal(t, "Petrova", s.Player.Friends[0].ID())
	// Petrova is first; responding to her keeps her there, so flip the
	// roster by messaging through Volkov's slot instead.
	s.Player.Friends[0], s.Player.Friends[1] = s.Player.Friends[1], s.Player.Friends[0]

	s.SendMessage("Petrova", 2)
	clock.Advance(5 * time.Second)
	s.Respond("Petrova", 0)

	assert.Equal(t, "Petrova", s.Player.Friends[0].ID(), "responding moves the friend to the head")
}

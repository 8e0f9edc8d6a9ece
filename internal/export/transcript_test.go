package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soviet/internal/game"
)

func historyFriend() *game.Friend {
	f := game.NewFriend(game.FriendDef{
		FirstName: "Anna",
		LastName:  "Petrova",
	})
	f.History = []game.ChatMessage{
		game.NewChatMessage("Comrade, we must talk.", game.Incoming),
		game.NewChatMessage("It is about the harvest.", game.Incoming),
		game.NewChatMessage("Send the tractors.", game.Outgoing),
	}
	f.Ended = game.ChatEnded{Ended: true, By: game.Incoming}
	return f
}

func TestTranscriptProducesPDF(t *testing.T) {
	out, err := Transcript(historyFriend(), "Comrade President")
	require.NoError(t, err)
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF", "output starts with the PDF magic")
}

func TestTranscriptEmptyHistory(t *testing.T) {
	f := game.NewFriend(game.FriendDef{FirstName: "Anna", LastName: "Petrova"})
	out, err := Transcript(f, "Comrade President")
	require.NoError(t, err)
	assert.NotEmpty(t, out, "an empty chat still renders the header page")
}

func TestTranscriptNilFriend(t *testing.T) {
	_, err := Transcript(nil, "Comrade President")
	assert.Error(t, err)
}

package polls

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 20), progressBar(0))
	assert.Equal(t, strings.Repeat("█", 20), progressBar(100))
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), progressBar(50))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 15), progressBar(25))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 20))
	assert.Equal(t, "aaaaa...", truncate(strings.Repeat("a", 30), 5))
	// Multibyte options must not be cut mid-rune.
	assert.Equal(t, "ééééé...", truncate(strings.Repeat("é", 10), 5))
}

func TestPollEmbed(t *testing.T) {
	poll, err := NewPoll("Lunch?", []string{"Pizza", "Tacos"}, 10, false, "u1")
	require.NoError(t, err)
	poll.Votes["u2"] = 1

	embed := PollEmbed(poll)
	assert.Equal(t, "📊 Poll", embed.Title)
	assert.Equal(t, openColor, embed.Color)
	assert.Contains(t, embed.Description, "**Lunch?**")
	assert.Contains(t, embed.Description, "**1.** Pizza")
	assert.Contains(t, embed.Description, "100% (1 votes)")
	assert.Contains(t, embed.Footer.Text, "Total votes: 1")
	assert.Contains(t, embed.Footer.Text, "Ends in")

	poll.Active = false
	embed = PollEmbed(poll)
	assert.Equal(t, "📊 Poll Results (ENDED)", embed.Title)
	assert.Equal(t, endedColor, embed.Color)
	assert.Contains(t, embed.Footer.Text, "Final results")
}

func TestPollComponents(t *testing.T) {
	options := []string{"a", "b", "c", "d", "e", "f", "g"}
	poll, err := NewPoll("Q?", options, 10, false, "u1")
	require.NoError(t, err)
	poll.ID = GenerateID("u1")

	rows := PollComponents(poll)
	// 7 vote buttons split 5+2, plus the control row.
	require.Len(t, rows, 3)

	first := rows[0].(discordgo.ActionsRow)
	second := rows[1].(discordgo.ActionsRow)
	control := rows[2].(discordgo.ActionsRow)
	assert.Len(t, first.Components, 5)
	assert.Len(t, second.Components, 2)
	require.Len(t, control.Components, 2)

	// Vote buttons round-trip through the decoder.
	button := first.Components[2].(discordgo.Button)
	action, err := DecodeAction(button.CustomID)
	require.NoError(t, err)
	assert.Equal(t, ActionVote, action.Verb)
	assert.Equal(t, poll.ID, action.PollID)
	assert.Equal(t, 2, action.Option)

	results := control.Components[0].(discordgo.Button)
	assert.Equal(t, EncodeAction(ActionResults, poll.ID), results.CustomID)
	end := control.Components[1].(discordgo.Button)
	assert.Equal(t, EncodeAction(ActionEnd, poll.ID), end.CustomID)

	// Ended polls expose no controls at all.
	poll.Active = false
	assert.Empty(t, PollComponents(poll))
}

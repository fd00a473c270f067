package polls

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/cirelion/quorum/bot"
	"github.com/cirelion/quorum/templates"
)

const (
	openColor  = 0x3498db
	endedColor = 0xe74c3c

	barCells       = 20
	buttonsPerRow  = 5
	maxVotersShown = 5
)

// PollEmbed renders the live (or final) tally for a poll message.
func PollEmbed(poll *Poll) *discordgo.MessageEmbed {
	total := poll.TotalVotes()

	var description strings.Builder
	fmt.Fprintf(&description, "**%s**\n\n", poll.Question)

	for i, option := range poll.Options {
		votes := poll.VoteCount(i)
		percentage := poll.Percentage(i)

		fmt.Fprintf(&description, "**%d.** %s\n", i+1, option)
		fmt.Fprintf(&description, "%s %d%% (%d votes)\n\n", progressBar(percentage), percentage, votes)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📊 Poll",
		Description: description.String(),
		Color:       openColor,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Total votes: %d • Ends in %d minutes", total, minutesLeft(poll.EndTime)),
		},
	}

	if !poll.Active {
		embed.Title = "📊 Poll Results (ENDED)"
		embed.Color = endedColor
		embed.Footer.Text = fmt.Sprintf("Final results • Total votes: %d", total)
	}

	return embed
}

// PollComponents builds the vote button rows plus the results/end control
// row. Ended polls get an empty component set so no further votes are
// possible.
func PollComponents(poll *Poll) []discordgo.MessageComponent {
	if !poll.Active {
		return []discordgo.MessageComponent{}
	}

	var rows []discordgo.MessageComponent
	var current []discordgo.MessageComponent

	for i, option := range poll.Options {
		if len(current) == buttonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: current})
			current = nil
		}

		current = append(current, discordgo.Button{
			Label:    fmt.Sprintf("%d. %s", i+1, truncate(option, 20)),
			CustomID: EncodeVoteAction(poll.ID, i),
			Style:    discordgo.PrimaryButton,
			Emoji:    discordgo.ComponentEmoji{Name: "🗳️"},
		})
	}
	if len(current) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: current})
	}

	rows = append(rows, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "View Results",
				CustomID: EncodeAction(ActionResults, poll.ID),
				Style:    discordgo.SecondaryButton,
				Emoji:    discordgo.ComponentEmoji{Name: "📊"},
			},
			discordgo.Button{
				Label:    "End Poll",
				CustomID: EncodeAction(ActionEnd, poll.ID),
				Style:    discordgo.DangerButton,
				Emoji:    discordgo.ComponentEmoji{Name: "🛑"},
			},
		},
	})

	return rows
}

// ResultsEmbed renders the detailed per-option breakdown, with voter names
// when the poll isn't anonymous.
func ResultsEmbed(session *discordgo.Session, guildID string, results *Results) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📊 Detailed Poll Results",
		Description: fmt.Sprintf("**Question:** %s", results.Question),
		Color:       openColor,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Total Votes: %d", results.Total),
		},
	}

	for i, res := range results.Options {
		value := fmt.Sprintf("%d%% (%d votes)\n", res.Percentage, res.Votes)

		if len(res.Voters) > 0 {
			shown := res.Voters
			if len(shown) > maxVotersShown {
				shown = shown[:maxVotersShown]
			}

			names := make([]string, 0, len(shown))
			for _, voterID := range shown {
				names = append(names, bot.MemberName(session, guildID, voterID))
			}
			value += strings.Join(names, ", ")

			if len(res.Voters) > maxVotersShown {
				value += fmt.Sprintf("\n... and %d more", len(res.Voters)-maxVotersShown)
			}
		} else {
			value += "No votes yet"
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%d. %s", i+1, res.Option),
			Value: value,
		})
	}

	return embed
}

// TemplateBrowserEmbed lists the whole template catalog, including entries
// beyond the 25 the command choices can carry.
func TemplateBrowserEmbed(registry *templates.Registry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📚 Poll Templates",
		Description: "Use `/poll-template` to create a poll from any of these.",
		Color:       openColor,
	}

	for _, tmpl := range registry.All() {
		var details []string
		if tmpl.Description != "" {
			details = append(details, tmpl.Description)
		}
		details = append(details, fmt.Sprintf("Duration: %d minutes", tmpl.DefaultDuration))
		if tmpl.Quick {
			details = append(details, "Quick poll")
		}
		if tmpl.Recurring() {
			details = append(details, fmt.Sprintf("Auto-posted every %s", tmpl.Schedule.Weekday))
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s (`%s`)", tmpl.Emoji, tmpl.Name, tmpl.Key),
			Value: strings.Join(details, " • "),
		})
		// Embed field limit.
		if len(embed.Fields) == 25 {
			break
		}
	}

	return embed
}

func progressBar(percentage int) string {
	filled := int(math.Round(float64(percentage) / 100 * barCells))
	if filled > barCells {
		filled = barCells
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}

func minutesLeft(endTime time.Time) int {
	left := int(math.Round(time.Until(endTime).Minutes()))
	if left < 0 {
		left = 0
	}
	return left
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

package polls

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/cirelion/quorum/common"
	"github.com/cirelion/quorum/templates"
)

func (p *Plugin) HandleInteraction(session *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	switch ic.Type {
	case discordgo.InteractionApplicationCommand:
		data := ic.ApplicationCommandData()
		switch data.Name {
		case "poll":
			p.handlePollCommand(session, ic, data)
		case "poll-template":
			p.handleTemplateCommand(session, ic, data)
		case "poll-templates":
			p.handleBrowseCommand(session, ic)
		case "debug-polls":
			p.handleDebugCommand(session, ic)
		default:
			return false
		}
		return true

	case discordgo.InteractionMessageComponent:
		customID := ic.MessageComponentData().CustomID
		if !IsActionToken(customID) {
			return false
		}
		p.handleAction(session, ic, customID)
		return true
	}

	return false
}

// handleAction decodes a component token and runs it through the
// dispatcher. Every failure turns into an ephemeral reply; nothing here
// may take down the dispatch loop.
func (p *Plugin) handleAction(session *discordgo.Session, ic *discordgo.InteractionCreate, customID string) {
	requester := interactionUser(ic)
	if requester == nil || (common.BotUser != nil && requester.ID == common.BotUser.ID) {
		return
	}

	action, err := DecodeAction(customID)
	if err != nil {
		p.replyError(session, ic, err)
		return
	}

	switch action.Verb {
	case ActionVote:
		poll, err := p.dispatcher.Vote(action.PollID, requester.ID, action.Option)
		if err != nil {
			p.replyError(session, ic, err)
			return
		}
		p.updatePollMessage(session, ic, poll)

	case ActionResults:
		results, err := p.dispatcher.Results(action.PollID)
		if err != nil {
			p.replyError(session, ic, err)
			return
		}
		p.replyEphemeralEmbed(session, ic, ResultsEmbed(session, ic.GuildID, results))

	case ActionEnd:
		check := func(requesterID string) bool {
			if poll, ok := p.store.Snapshot(action.PollID); ok && poll.CreatorID == requesterID {
				return true
			}
			return hasModeratorPerms(ic)
		}

		poll, err := p.dispatcher.End(action.PollID, requester.ID, check)
		if err != nil {
			p.replyError(session, ic, err)
			return
		}

		p.updatePollMessage(session, ic, poll)
		p.followupEphemeral(session, ic, "✅ Poll ended successfully!")
	}
}

func (p *Plugin) handlePollCommand(session *discordgo.Session, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	question := ""
	rawOptions := ""
	duration := templates.DefaultDuration
	anonymous := false

	for _, opt := range data.Options {
		switch opt.Name {
		case "question":
			question = opt.StringValue()
		case "options":
			rawOptions = opt.StringValue()
		case "duration":
			duration = int(opt.IntValue())
		case "anonymous":
			anonymous = opt.BoolValue()
		}
	}

	options, err := ValidateOptions(rawOptions, OptionDelimiter)
	if err != nil {
		p.replyError(session, ic, err)
		return
	}

	p.createInteractionPoll(session, ic, question, options, duration, anonymous, nil, "command")
}

func (p *Plugin) handleTemplateCommand(session *discordgo.Session, ic *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	key := ""
	question := ""
	duration := 0
	anonymous := false
	customOptions := ""

	for _, opt := range data.Options {
		switch opt.Name {
		case "template":
			key = opt.StringValue()
		case "question":
			question = opt.StringValue()
		case "duration":
			duration = int(opt.IntValue())
		case "anonymous":
			anonymous = opt.BoolValue()
		case "custom-options":
			customOptions = opt.StringValue()
		}
	}

	tmpl, ok := p.registry.Resolve(key)
	if !ok {
		p.replyEphemeral(session, ic, "❌ Invalid template selected! Please try again.")
		return
	}

	options := tmpl.Source.PollOptions(time.Now())
	if customOptions != "" {
		for _, piece := range strings.Split(customOptions, OptionDelimiter) {
			piece = strings.TrimSpace(piece)
			if piece != "" {
				options = append(options, piece)
			}
		}
	}

	options, err := ValidateOptionList(options)
	if err != nil {
		p.replyError(session, ic, err)
		return
	}

	p.createInteractionPoll(session, ic, question, options, templateDuration(tmpl, duration), anonymous, tmpl, "template")
}

// templateDuration picks the duration for an interactive template
// creation. Template defaults sized for scheduled polls, like the
// multi-day session planner, get clamped to the interactive bound instead
// of failing validation.
func templateDuration(tmpl *templates.Template, requested int) int {
	if requested > 0 {
		return requested
	}

	duration := tmpl.DefaultDuration
	if duration <= 0 {
		duration = templates.DefaultDuration
	}
	if duration > MaxDuration {
		duration = MaxDuration
	}
	return duration
}

func (p *Plugin) handleBrowseCommand(session *discordgo.Session, ic *discordgo.InteractionCreate) {
	p.replyEphemeralEmbed(session, ic, TemplateBrowserEmbed(p.registry))
}

func (p *Plugin) handleDebugCommand(session *discordgo.Session, ic *discordgo.InteractionCreate) {
	ids := p.store.ListActiveIDs()
	if len(ids) == 0 {
		p.replyEphemeral(session, ic, "📊 No active polls found.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 **Active Polls (%d):**\n", len(ids))
	for i, id := range ids {
		fmt.Fprintf(&sb, "%d. `%s`\n", i+1, id)
	}

	p.replyEphemeral(session, ic, sb.String())
}

// createInteractionPoll builds and stores the poll, responds with its
// message and arms the expiry timer against the response message.
func (p *Plugin) createInteractionPoll(session *discordgo.Session, ic *discordgo.InteractionCreate, question string, options []string, duration int, anonymous bool, tmpl *templates.Template, source string) {
	requester := interactionUser(ic)
	if requester == nil {
		return
	}

	poll, err := NewPoll(question, options, duration, anonymous, requester.ID)
	if err != nil {
		p.replyError(session, ic, err)
		return
	}

	id := GenerateID(requester.ID)
	p.store.Create(id, poll)

	// Render from a snapshot: the poll is votable the moment it's stored.
	view, _ := p.store.Snapshot(id)

	embed := PollEmbed(view)
	if tmpl != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s %s", tmpl.Emoji, tmpl.Name),
			IconURL: requester.AvatarURL(""),
		}
		if tmpl.Description != "" {
			embed.Footer.Text = tmpl.Description + " • " + embed.Footer.Text
		}
	}

	err = session.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: PollComponents(view),
		},
	})
	if err != nil {
		p.store.Delete(id)
		logger.WithError(err).WithField("poll", id).Error("failed sending poll message")
		return
	}

	// The expiry edit needs the response message's id.
	messageID := ""
	if msg, err := session.InteractionResponse(ic.Interaction); err == nil {
		messageID = msg.ID
	} else {
		logger.WithError(err).WithField("poll", id).Error("failed fetching poll message, expiry won't close it")
	}

	p.armExpiry(session, view, ic.ChannelID, messageID)
	common.PollsCreated.WithLabelValues(source).Inc()
}

// updatePollMessage re-renders the poll message the interaction came from.
func (p *Plugin) updatePollMessage(session *discordgo.Session, ic *discordgo.InteractionCreate, poll *Poll) {
	err := session.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{PollEmbed(poll)},
			Components: PollComponents(poll),
		},
	})
	if err != nil {
		logger.WithError(err).WithField("poll", poll.ID).Error("failed updating poll message")
	}
}

func (p *Plugin) replyError(session *discordgo.Session, ic *discordgo.InteractionCreate, err error) {
	common.ActionErrors.WithLabelValues(errorReason(err)).Inc()
	if errorReason(err) == "internal" {
		logger.WithError(err).Error("poll action failed")
	}
	p.replyEphemeral(session, ic, userMessage(err))
}

// ephemeralResponse wraps response data as an ephemeral channel message.
func ephemeralResponse(data *discordgo.InteractionResponseData) *discordgo.InteractionResponse {
	data.Flags = discordgo.MessageFlagsEphemeral
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func (p *Plugin) replyEphemeral(session *discordgo.Session, ic *discordgo.InteractionCreate, content string) {
	err := session.InteractionRespond(ic.Interaction, ephemeralResponse(&discordgo.InteractionResponseData{
		Content: content,
	}))
	if err != nil {
		logger.WithError(err).Error("failed sending ephemeral reply")
	}
}

func (p *Plugin) replyEphemeralEmbed(session *discordgo.Session, ic *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := session.InteractionRespond(ic.Interaction, ephemeralResponse(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}))
	if err != nil {
		logger.WithError(err).Error("failed sending results reply")
	}
}

func (p *Plugin) followupEphemeral(session *discordgo.Session, ic *discordgo.InteractionCreate, content string) {
	_, err := session.FollowupMessageCreate(ic.Interaction, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		logger.WithError(err).Error("failed sending followup")
	}
}

// interactionUser returns the acting user for guild and DM interactions.
func interactionUser(ic *discordgo.InteractionCreate) *discordgo.User {
	if ic.Member != nil {
		return ic.Member.User
	}
	return ic.User
}

// hasModeratorPerms is the externally-determined moderation capability for
// ending someone else's poll.
func hasModeratorPerms(ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil {
		return false
	}
	return ic.Member.Permissions&(discordgo.PermissionManageMessages|discordgo.PermissionAdministrator) != 0
}

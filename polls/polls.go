package polls

import (
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/AlekSi/pointer"
	"github.com/bwmarrin/discordgo"

	"github.com/cirelion/quorum/bot"
	"github.com/cirelion/quorum/common"
	"github.com/cirelion/quorum/templates"
)

// Plugin wires the poll store, dispatcher and template catalog into the
// bot's command and interaction surface.
type Plugin struct {
	store      *Store
	dispatcher *Dispatcher
	registry   *templates.Registry
}

var logger = common.GetPluginLogger(&Plugin{})

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Polls",
		SysName:  "polls",
		Category: common.PluginCategoryCore,
	}
}

var (
	_ bot.CommandProvider    = (*Plugin)(nil)
	_ bot.InteractionHandler = (*Plugin)(nil)
)

// RegisterPlugin creates the plugin with its own store and dispatcher. The
// returned plugin is handed to the scheduler so recurring polls land in the
// same store the interaction handlers mutate.
func RegisterPlugin(registry *templates.Registry) *Plugin {
	p := &Plugin{
		store:    NewStore(),
		registry: registry,
	}
	p.dispatcher = NewDispatcher(p.store)

	common.RegisterPlugin(p)
	return p
}

// Store exposes the poll store for administrative tooling.
func (p *Plugin) Store() *Store {
	return p.store
}

func (p *Plugin) ApplicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "poll",
			Description: "Create a poll with up to 10 options",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "The poll question",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "options",
					Description: "Poll options separated by semicolons (;)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Poll duration in minutes (default: 60)",
					MinValue:    pointer.ToFloat64(1),
					MaxValue:    MaxDuration,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "anonymous",
					Description: "Hide who voted (default: false)",
				},
			},
		},
		{
			Name:        "poll-template",
			Description: "Create a poll using predefined templates",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "template",
					Description: "Choose a poll template",
					Required:    true,
					Choices:     p.templateChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "Your poll question",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Poll duration in minutes (overrides template default)",
					MinValue:    pointer.ToFloat64(1),
					MaxValue:    MaxDuration,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "anonymous",
					Description: "Hide who voted (default: false)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "custom-options",
					Description: "Additional options (semicolon separated), appended to the template's",
				},
			},
		},
		{
			Name:        "poll-templates",
			Description: "Browse the full poll template catalog",
		},
		{
			Name:                     "debug-polls",
			Description:              "List active polls (Admin only)",
			DefaultMemberPermissions: pointer.ToInt64(discordgo.PermissionManageServer),
		},
	}
}

// templateChoices builds the command choices from the catalog, capped at
// the platform limit of 25.
func (p *Plugin) templateChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, tmpl := range p.registry.All() {
		name := fmt.Sprintf("%s %s", tmpl.Emoji, tmpl.Name)
		if tmpl.Quick {
			name = fmt.Sprintf("%s %s (Quick)", tmpl.Emoji, tmpl.Name)
		}

		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: tmpl.Key,
		})
		if len(choices) == 25 {
			break
		}
	}
	return choices
}

// CreateChannelPoll creates a poll directly in a channel, used by the
// recurrence scheduler. The poll is removed from the store again when the
// message can't be delivered, so a failed creation leaves no orphan.
func (p *Plugin) CreateChannelPoll(session *discordgo.Session, channelID string, tmpl *templates.Template, question string, durationMinutes int, creatorID string) (*Poll, error) {
	options, err := ValidateOptionList(tmpl.Source.PollOptions(time.Now()))
	if err != nil {
		return nil, errors.WrapIf(err, "template produced invalid options")
	}

	poll, err := NewScheduledPoll(question, options, durationMinutes, false, creatorID)
	if err != nil {
		return nil, err
	}

	id := GenerateID(creatorID)
	p.store.Create(id, poll)

	// Render from a snapshot: the poll is votable the moment it's stored.
	view, _ := p.store.Snapshot(id)

	embed := PollEmbed(view)
	embed.Author = &discordgo.MessageEmbedAuthor{
		Name:    fmt.Sprintf("%s %s (Auto-scheduled)", tmpl.Emoji, tmpl.Name),
		IconURL: session.State.User.AvatarURL(""),
	}
	if tmpl.Description != "" {
		embed.Footer.Text = tmpl.Description + " • " + embed.Footer.Text
	}

	msg, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("🔔 **%s** — time to vote!", tmpl.Name),
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: PollComponents(view),
	})
	if err != nil {
		p.store.Delete(id)
		return nil, errors.WrapIf(err, "failed sending scheduled poll")
	}

	p.armExpiry(session, view, channelID, msg.ID)
	common.PollsCreated.WithLabelValues("scheduler").Inc()
	return view, nil
}

// armExpiry starts the one-shot expiry for a poll and closes its message
// when it fires.
func (p *Plugin) armExpiry(session *discordgo.Session, poll *Poll, channelID string, messageID string) {
	p.dispatcher.StartExpiryTimer(poll.ID, poll.EndTime, func(ended *Poll) {
		if messageID == "" {
			return
		}

		_, err := session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         messageID,
			Channel:    channelID,
			Embeds:     []*discordgo.MessageEmbed{PollEmbed(ended)},
			Components: []discordgo.MessageComponent{},
		})
		if err != nil {
			logger.WithError(err).WithField("poll", ended.ID).Error("failed closing expired poll message")
		}
	})
}

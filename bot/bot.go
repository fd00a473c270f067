// Package bot owns the gateway session and fans events out to plugins.
package bot

import (
	"os"
	"os/signal"
	"syscall"

	"emperror.dev/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/sentry-go"

	"github.com/cirelion/quorum/common"
)

var logger = common.GetFixedPrefixLogger("bot")

// InitHandler is implemented by plugins that need the session before the
// bot starts handling events.
type InitHandler interface {
	BotInit()
}

// CommandProvider is implemented by plugins that register slash commands.
type CommandProvider interface {
	ApplicationCommands() []*discordgo.ApplicationCommand
}

// InteractionHandler is implemented by plugins that consume interaction
// events. Returning true claims the interaction.
type InteractionHandler interface {
	HandleInteraction(session *discordgo.Session, ic *discordgo.InteractionCreate) bool
}

// Run connects to the gateway, registers commands, initializes plugins and
// blocks until SIGINT/SIGTERM.
func Run(conf *common.RunConfig) error {
	if conf.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{Dsn: conf.SentryDSN})
		if err != nil {
			logger.WithError(err).Error("failed initializing sentry, continuing without it")
		}
	}

	session, err := discordgo.New("Bot " + conf.BotToken)
	if err != nil {
		return errors.WrapIf(err, "failed creating session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	common.BotSession = session
	common.BotApplicationID = conf.ClientID

	session.AddHandler(onInteractionCreate)

	err = session.Open()
	if err != nil {
		return errors.WrapIf(err, "failed opening gateway connection")
	}
	defer session.Close()

	common.BotUser = session.State.User
	logger.Infof("Logged in as %s", common.BotUser.Username)

	err = registerCommands(session, conf)
	if err != nil {
		return err
	}

	for _, plugin := range common.Plugins {
		if initer, ok := plugin.(InitHandler); ok {
			initer.BotInit()
		}
	}

	if conf.MetricsAddr != "" {
		go common.RunMetricsServer(conf.MetricsAddr)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	logger.Info("Shutting down")
	return nil
}

func registerCommands(session *discordgo.Session, conf *common.RunConfig) error {
	var commands []*discordgo.ApplicationCommand
	for _, plugin := range common.Plugins {
		if provider, ok := plugin.(CommandProvider); ok {
			commands = append(commands, provider.ApplicationCommands()...)
		}
	}

	_, err := session.ApplicationCommandBulkOverwrite(conf.ClientID, conf.GuildID, commands)
	if err != nil {
		return errors.WrapIf(err, "failed registering application commands")
	}

	logger.Infof("Registered %d application commands", len(commands))
	return nil
}

func onInteractionCreate(session *discordgo.Session, ic *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic handling interaction: %v", r)
			sentry.CurrentHub().Recover(r)
		}
	}()

	for _, plugin := range common.Plugins {
		if handler, ok := plugin.(InteractionHandler); ok {
			if handler.HandleInteraction(session, ic) {
				return
			}
		}
	}
}

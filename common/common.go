package common

import (
	"github.com/bwmarrin/discordgo"
)

const (
	VERSION = "1.4.0"
)

var (
	// BotSession is the active gateway session, set by the bot package
	// before any plugin BotInit runs.
	BotSession *discordgo.Session

	// BotUser is the bot's own user, used to ignore self-interactions.
	BotUser *discordgo.User

	// BotApplicationID is the application id commands are registered under.
	BotApplicationID string
)

type PluginCategory string

const (
	PluginCategoryCore PluginCategory = "core"
	PluginCategoryMisc PluginCategory = "misc"
)

type PluginInfo struct {
	Name     string
	SysName  string
	Category PluginCategory
}

// Plugin is implemented by all top level plugin packages.
type Plugin interface {
	PluginInfo() *PluginInfo
}

var Plugins []Plugin

// RegisterPlugin registers a plugin, should only be called before the bot
// is started.
func RegisterPlugin(plugin Plugin) {
	Plugins = append(Plugins, plugin)
	logger.Infof("Registered plugin: %s", plugin.PluginInfo().SysName)
}

package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
)

// Member lookups hit the REST API when state misses, so resolved names are
// kept around for a while.
var memberNames = cache.New(15*time.Minute, 30*time.Minute)

// MemberName resolves a user id to the name shown in results embeds:
// server nickname when set, otherwise username, otherwise a mention the
// client can still render.
func MemberName(session *discordgo.Session, guildID string, userID string) string {
	key := guildID + ":" + userID
	if name, ok := memberNames.Get(key); ok {
		return name.(string)
	}

	member, err := session.State.Member(guildID, userID)
	if err != nil {
		member, err = session.GuildMember(guildID, userID)
	}
	if err != nil || member == nil || member.User == nil {
		// Leave resolution to the client.
		return "<@" + userID + ">"
	}

	name := member.User.Username
	if member.Nick != "" {
		name = member.Nick
	}

	memberNames.SetDefault(key, name)
	return name
}

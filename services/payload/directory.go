package payload

import "github.com/bwmarrin/discordgo"

// Directory resolves display names the gateway does not embed in message events.
// Implementations must answer from memory; BuildPayload never performs I/O.
type Directory interface {
	ChannelName(channelID string) (string, bool)
	GuildName(guildID string) (string, bool)
	RoleName(guildID, roleID string) (string, bool)
}

// StateDirectory answers name lookups from a discordgo state cache
type StateDirectory struct {
	state *discordgo.State
}

// NewStateDirectory creates a directory backed by the session's state cache. A nil state resolves nothing.
func NewStateDirectory(state *discordgo.State) *StateDirectory {
	return &StateDirectory{state: state}
}

func (d *StateDirectory) ChannelName(channelID string) (string, bool) {
	if d == nil || d.state == nil || channelID == "" {
		return "", false
	}
	channel, err := d.state.Channel(channelID)
	if err != nil || channel.Name == "" {
		return "", false
	}
	return channel.Name, true
}

func (d *StateDirectory) GuildName(guildID string) (string, bool) {
	if d == nil || d.state == nil || guildID == "" {
		return "", false
	}
	guild, err := d.state.Guild(guildID)
	if err != nil || guild.Name == "" {
		return "", false
	}
	return guild.Name, true
}

func (d *StateDirectory) RoleName(guildID, roleID string) (string, bool) {
	if d == nil || d.state == nil || guildID == "" || roleID == "" {
		return "", false
	}
	role, err := d.state.Role(guildID, roleID)
	if err != nil {
		return "", false
	}
	return role.Name, true
}

// StaticDirectory is a map-backed Directory, used where no gateway state exists
type StaticDirectory struct {
	Channels map[string]string
	Guilds   map[string]string
	// Roles is keyed by role id; role ids are globally unique snowflakes
	Roles map[string]string
}

func (d StaticDirectory) ChannelName(channelID string) (string, bool) {
	name, ok := d.Channels[channelID]
	return name, ok
}

func (d StaticDirectory) GuildName(guildID string) (string, bool) {
	name, ok := d.Guilds[guildID]
	return name, ok
}

func (d StaticDirectory) RoleName(_, roleID string) (string, bool) {
	name, ok := d.Roles[roleID]
	return name, ok
}

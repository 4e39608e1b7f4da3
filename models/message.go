package models

import "github.com/bwmarrin/discordgo"

const unknownValue = "unknown"

// DiscordMessage is a gateway message together with whether Discord delivered it in full.
// Partial messages (uncached deletes, sparse updates) may lack author, content and guild data.
type DiscordMessage struct {
	*discordgo.Message
	Partial bool
}

// NewDiscordMessage wraps a fully delivered message.
func NewDiscordMessage(m *discordgo.Message) DiscordMessage {
	if m == nil {
		return DiscordMessage{Message: &discordgo.Message{}, Partial: true}
	}
	return DiscordMessage{Message: m}
}

// NewPartialDiscordMessage wraps a message stub that only carries identifiers.
func NewPartialDiscordMessage(m *discordgo.Message) DiscordMessage {
	if m == nil {
		m = &discordgo.Message{}
	}
	return DiscordMessage{Message: m, Partial: true}
}

// IsFromBot reports whether the author is known and flagged as an automated account
func (m DiscordMessage) IsFromBot() bool {
	return m.Message != nil && m.Author != nil && m.Author.Bot
}

// AuthorUsername returns the author's username or "unknown"
func (m DiscordMessage) AuthorUsername() string {
	if m.Message == nil || m.Author == nil || m.Author.Username == "" {
		return unknownValue
	}
	return m.Author.Username
}

// ChannelIDOrUnknown returns the channel id or "unknown"
func (m DiscordMessage) ChannelIDOrUnknown() string {
	if m.Message == nil || m.ChannelID == "" {
		return unknownValue
	}
	return m.ChannelID
}

// Ref identifies the message for follow-up platform actions
func (m DiscordMessage) Ref() DiscordMessageRef {
	if m.Message == nil {
		return DiscordMessageRef{}
	}
	return DiscordMessageRef{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
	}
}

// DiscordMessageRef points at a single message in a channel
type DiscordMessageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"discordbridge/clients"
	"discordbridge/models"
)

// Gateway intents needed to receive guild and direct messages with their content
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// DiscordClient implements the clients.DiscordClient interface on top of a discordgo session
type DiscordClient struct {
	session *discordgo.Session
}

// NewSession creates a discordgo session for the bot with the bridge's intents and message cache.
// The cache lets update and delete events carry the message as it was before the change.
func NewSession(botToken string, messageCacheSize int) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = Intents
	session.StateEnabled = true
	session.State.MaxMessageCount = messageCacheSize

	return session, nil
}

// NewDiscordClient creates a new Discord client for platform actions
func NewDiscordClient(session *discordgo.Session) clients.DiscordClient {
	return &DiscordClient{session: session}
}

// ReplyToMessage posts content as a reply to the referenced message
func (c *DiscordClient) ReplyToMessage(
	ctx context.Context,
	ref models.DiscordMessageRef,
	content string,
) (*clients.DiscordPostMessageResponse, error) {
	msg, err := c.session.ChannelMessageSendReply(
		ref.ChannelID,
		content,
		&discordgo.MessageReference{
			MessageID: ref.MessageID,
			ChannelID: ref.ChannelID,
			GuildID:   ref.GuildID,
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reply to message %s: %w", ref.MessageID, err)
	}

	return &clients.DiscordPostMessageResponse{
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
	}, nil
}

// SendMessage posts a new message with optional embeds and files to a channel
func (c *DiscordClient) SendMessage(
	ctx context.Context,
	channelID string,
	params clients.DiscordMessageParams,
) (*clients.DiscordPostMessageResponse, error) {
	msg, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: params.Content,
		Embeds:  params.Embeds,
		Files:   params.Files,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}

	return &clients.DiscordPostMessageResponse{
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
	}, nil
}

// AddReaction reacts to the referenced message
func (c *DiscordClient) AddReaction(ctx context.Context, ref models.DiscordMessageRef, emoji string) error {
	err := c.session.MessageReactionAdd(ref.ChannelID, ref.MessageID, NormalizeEmoji(emoji), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to add reaction %s to message %s: %w", emoji, ref.MessageID, err)
	}
	return nil
}

// NormalizeEmoji converts a custom emoji written as <:name:id> or <a:name:id> into the name:id form
// the REST API expects. Unicode emoji and already-normalized tokens are returned unchanged.
func NormalizeEmoji(emoji string) string {
	token := strings.TrimSpace(emoji)
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return token
	}

	token = strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">")
	token = strings.TrimPrefix(token, "a:")
	return strings.TrimPrefix(token, ":")
}

// IsConnected reports whether the gateway handshake completed.
// DataReady is written by the gateway goroutine, so it is read under the session lock.
func IsConnected(session *discordgo.Session) bool {
	if session == nil {
		return false
	}
	session.RLock()
	defer session.RUnlock()
	return session.DataReady
}

package clients

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"discordbridge/models"
)

// DiscordClient defines the platform actions the bridge performs on behalf of a webhook response
type DiscordClient interface {
	// ReplyToMessage posts content as a reply referencing the given message
	ReplyToMessage(ctx context.Context, ref models.DiscordMessageRef, content string) (*DiscordPostMessageResponse, error)

	// SendMessage posts a new message to a channel
	SendMessage(ctx context.Context, channelID string, params DiscordMessageParams) (*DiscordPostMessageResponse, error)

	// AddReaction reacts to a message with a unicode emoji or a custom emoji token
	AddReaction(ctx context.Context, ref models.DiscordMessageRef, emoji string) error
}

// WebhookClient posts canonical payloads to the workflow webhook
type WebhookClient interface {
	PostJSON(ctx context.Context, url string, payload any) (*WebhookResponse, error)
}

// FileFetcher downloads a remote file so it can be uploaded as an attachment
type FileFetcher interface {
	FetchFile(ctx context.Context, fileURL string) (*discordgo.File, error)
}

// EventRegistrar is the subset of a discordgo session used to subscribe to gateway events
type EventRegistrar interface {
	AddHandler(handler any) func()
}

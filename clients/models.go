package clients

import "github.com/bwmarrin/discordgo"

// DiscordMessageParams holds parameters for sending Discord messages
type DiscordMessageParams struct {
	Content string
	Embeds  []*discordgo.MessageEmbed
	Files   []*discordgo.File
}

// DiscordPostMessageResponse represents the response from posting a message to Discord
type DiscordPostMessageResponse struct {
	ChannelID string
	MessageID string
}

// WebhookResponse is the raw answer of the workflow webhook
type WebhookResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsSuccess reports whether the webhook answered with a 2xx status
func (r *WebhookResponse) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

package models

import "github.com/bwmarrin/discordgo"

// EventPayload is the canonical JSON record posted to the webhook for every forwarded event.
// Every key is always present; unknown values are encoded as null and collections as [].
type EventPayload struct {
	EventType   EventType                 `json:"eventType"`
	Content     *string                   `json:"content"`
	MessageID   string                    `json:"messageId"`
	Timestamp   *int64                    `json:"timestamp"`
	Author      PayloadAuthor             `json:"author"`
	Channel     PayloadChannel            `json:"channel"`
	Guild       PayloadGuild              `json:"guild"`
	Attachments []PayloadAttachment       `json:"attachments"`
	Stickers    []PayloadSticker          `json:"stickers"`
	Embeds      []*discordgo.MessageEmbed `json:"embeds"`
	Mentions    PayloadMentions           `json:"mentions"`
	Reference   *PayloadReference         `json:"reference"`
}

type PayloadAuthor struct {
	ID       *string `json:"id"`
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

type PayloadChannel struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type PayloadGuild struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type PayloadAttachment struct {
	URL         string  `json:"url"`
	Name        string  `json:"name"`
	ContentType *string `json:"contentType"`
}

type PayloadSticker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type PayloadMentions struct {
	Users []PayloadUser `json:"users"`
	Roles []PayloadRole `json:"roles"`
}

type PayloadUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type PayloadRole struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

type PayloadReference struct {
	MessageID *string `json:"messageId"`
	ChannelID *string `json:"channelId"`
}

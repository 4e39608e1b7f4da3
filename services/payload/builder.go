package payload

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"discordbridge/models"
)

// BuildPayload maps a gateway message onto the canonical webhook payload.
//
// It is pure and never fails: every value missing from the message (partial or deleted messages may
// lack author, guild or content) becomes null, and every missing collection becomes an empty array.
// Sub-objects (author, channel, guild, mentions) are always present with nullable fields.
// Collections keep the order Discord delivered them in and are not de-duplicated.
// dir may be nil, in which case channel, guild and role names are null.
func BuildPayload(eventType models.EventType, msg models.DiscordMessage, dir Directory) models.EventPayload {
	m := msg.Message
	if m == nil {
		m = &discordgo.Message{}
	}
	if dir == nil {
		dir = StaticDirectory{}
	}

	return models.EventPayload{
		EventType:   eventType,
		Content:     buildContent(msg, m),
		MessageID:   m.ID,
		Timestamp:   buildTimestamp(m),
		Author:      buildAuthor(m.Author),
		Channel:     buildChannel(m.ChannelID, dir),
		Guild:       buildGuild(m.GuildID, dir),
		Attachments: buildAttachments(m.Attachments),
		Stickers:    buildStickers(m.StickerItems),
		Embeds:      buildEmbeds(m.Embeds),
		Mentions:    buildMentions(m, dir),
		Reference:   buildReference(m.MessageReference),
	}
}

// Partial stubs carry no content; an empty string there means "unknown", not "empty message"
func buildContent(msg models.DiscordMessage, m *discordgo.Message) *string {
	if msg.Partial && m.Content == "" {
		return nil
	}
	content := m.Content
	return &content
}

func buildTimestamp(m *discordgo.Message) *int64 {
	if !m.Timestamp.IsZero() {
		ts := m.Timestamp.UnixMilli()
		return &ts
	}
	if m.ID == "" {
		return nil
	}
	// Stubs have no timestamp, but message ids are snowflakes that encode their creation time
	created, err := discordgo.SnowflakeTimestamp(m.ID)
	if err != nil {
		return nil
	}
	ts := created.UnixMilli()
	return &ts
}

func buildAuthor(author *discordgo.User) models.PayloadAuthor {
	if author == nil {
		return models.PayloadAuthor{}
	}
	return models.PayloadAuthor{
		ID:       optional(author.ID),
		Username: optional(author.Username),
		Avatar:   optional(author.AvatarURL("")),
	}
}

func buildChannel(channelID string, dir Directory) models.PayloadChannel {
	channel := models.PayloadChannel{ID: optional(channelID)}
	if name, ok := dir.ChannelName(channelID); ok {
		channel.Name = optional(name)
	}
	return channel
}

func buildGuild(guildID string, dir Directory) models.PayloadGuild {
	guild := models.PayloadGuild{ID: optional(guildID)}
	if name, ok := dir.GuildName(guildID); ok {
		guild.Name = optional(name)
	}
	return guild
}

func buildAttachments(attachments []*discordgo.MessageAttachment) []models.PayloadAttachment {
	result := make([]models.PayloadAttachment, 0, len(attachments))
	for _, a := range attachments {
		if a == nil {
			continue
		}
		result = append(result, models.PayloadAttachment{
			URL:         a.URL,
			Name:        a.Filename,
			ContentType: optional(a.ContentType),
		})
	}
	return result
}

func buildStickers(stickers []*discordgo.StickerItem) []models.PayloadSticker {
	result := make([]models.PayloadSticker, 0, len(stickers))
	for _, s := range stickers {
		if s == nil {
			continue
		}
		result = append(result, models.PayloadSticker{
			ID:   s.ID,
			Name: s.Name,
			URL:  stickerURL(s),
		})
	}
	return result
}

// Sticker format types as numbered by the Discord API
const (
	stickerFormatLottie = 3
	stickerFormatGIF    = 4
)

func stickerURL(s *discordgo.StickerItem) string {
	ext := "png"
	switch int(s.FormatType) {
	case stickerFormatLottie:
		ext = "json"
	case stickerFormatGIF:
		ext = "gif"
	}
	return fmt.Sprintf("%sstickers/%s.%s", discordgo.EndpointCDN, s.ID, ext)
}

func buildEmbeds(embeds []*discordgo.MessageEmbed) []*discordgo.MessageEmbed {
	result := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		if e != nil {
			result = append(result, e)
		}
	}
	return result
}

func buildMentions(m *discordgo.Message, dir Directory) models.PayloadMentions {
	users := make([]models.PayloadUser, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		if u == nil {
			continue
		}
		users = append(users, models.PayloadUser{ID: u.ID, Username: u.Username})
	}

	roles := make([]models.PayloadRole, 0, len(m.MentionRoles))
	for _, roleID := range m.MentionRoles {
		role := models.PayloadRole{ID: roleID}
		if name, ok := dir.RoleName(m.GuildID, roleID); ok {
			role.Name = &name
		}
		roles = append(roles, role)
	}

	return models.PayloadMentions{Users: users, Roles: roles}
}

func buildReference(ref *discordgo.MessageReference) *models.PayloadReference {
	if ref == nil {
		return nil
	}
	return &models.PayloadReference{
		MessageID: optional(ref.MessageID),
		ChannelID: optional(ref.ChannelID),
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

package payload

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discordbridge/models"
)

func fullMessage() *discordgo.Message {
	return &discordgo.Message{
		ID:        "1234567890123456789",
		ChannelID: "channel123",
		GuildID:   "guild123",
		Content:   "test message",
		Timestamp: time.UnixMilli(1234567890),
		Author: &discordgo.User{
			ID:       "user123",
			Username: "testuser",
			Avatar:   "abc123",
		},
		Attachments: []*discordgo.MessageAttachment{
			{ID: "att1", URL: "https://file.url", Filename: "test.png", ContentType: "image/png"},
		},
		StickerItems: []*discordgo.StickerItem{
			{ID: "sticker1", Name: "wave", FormatType: discordgo.StickerFormatTypePNG},
		},
		Embeds: []*discordgo.MessageEmbed{
			{Title: "Test"},
		},
		Mentions: []*discordgo.User{
			{ID: "u1", Username: "user1"},
		},
		MentionRoles: []string{"r1"},
		MessageReference: &discordgo.MessageReference{
			MessageID: "ref123",
			ChannelID: "channel123",
		},
	}
}

func testDirectory() StaticDirectory {
	return StaticDirectory{
		Channels: map[string]string{"channel123": "general"},
		Guilds:   map[string]string{"guild123": "Test Server"},
		Roles:    map[string]string{"r1": "role1"},
	}
}

func TestBuildPayload_CompleteMessage(t *testing.T) {
	payload := BuildPayload(models.EventTypeMessageCreate, models.NewDiscordMessage(fullMessage()), testDirectory())

	assert.Equal(t, models.EventTypeMessageCreate, payload.EventType)
	require.NotNil(t, payload.Content)
	assert.Equal(t, "test message", *payload.Content)
	assert.Equal(t, "1234567890123456789", payload.MessageID)
	require.NotNil(t, payload.Timestamp)
	assert.Equal(t, int64(1234567890), *payload.Timestamp)

	assert.Equal(t, "user123", *payload.Author.ID)
	assert.Equal(t, "testuser", *payload.Author.Username)
	require.NotNil(t, payload.Author.Avatar)
	assert.Contains(t, *payload.Author.Avatar, "avatars/user123/abc123")

	assert.Equal(t, "channel123", *payload.Channel.ID)
	assert.Equal(t, "general", *payload.Channel.Name)
	assert.Equal(t, "guild123", *payload.Guild.ID)
	assert.Equal(t, "Test Server", *payload.Guild.Name)

	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "https://file.url", payload.Attachments[0].URL)
	assert.Equal(t, "test.png", payload.Attachments[0].Name)
	assert.Equal(t, "image/png", *payload.Attachments[0].ContentType)

	require.Len(t, payload.Stickers, 1)
	assert.Equal(t, models.PayloadSticker{
		ID:   "sticker1",
		Name: "wave",
		URL:  "https://cdn.discordapp.com/stickers/sticker1.png",
	}, payload.Stickers[0])

	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "Test", payload.Embeds[0].Title)

	require.Len(t, payload.Mentions.Users, 1)
	assert.Equal(t, models.PayloadUser{ID: "u1", Username: "user1"}, payload.Mentions.Users[0])
	require.Len(t, payload.Mentions.Roles, 1)
	assert.Equal(t, "r1", payload.Mentions.Roles[0].ID)
	assert.Equal(t, "role1", *payload.Mentions.Roles[0].Name)

	require.NotNil(t, payload.Reference)
	assert.Equal(t, "ref123", *payload.Reference.MessageID)
	assert.Equal(t, "channel123", *payload.Reference.ChannelID)
}

func TestBuildPayload_MinimalMessage(t *testing.T) {
	msg := &discordgo.Message{
		ID:        "msg123",
		ChannelID: "c1",
		Content:   "test",
		Timestamp: time.UnixMilli(1234567890),
		Author:    &discordgo.User{ID: "u1", Username: "user"},
	}

	payload := BuildPayload(models.EventTypeMessageCreate, models.NewDiscordMessage(msg), nil)

	assert.Equal(t, "msg123", payload.MessageID)
	assert.Empty(t, payload.Attachments)
	assert.NotNil(t, payload.Attachments)
	assert.Nil(t, payload.Reference)
	assert.Nil(t, payload.Channel.Name)
	assert.Nil(t, payload.Guild.ID)
	assert.Nil(t, payload.Guild.Name)
	require.NotNil(t, payload.Author.Avatar, "default avatar is used when the user has none")
}

func TestBuildPayload_NullableFieldsAreNullNotAbsent(t *testing.T) {
	stub := models.NewPartialDiscordMessage(&discordgo.Message{ID: "1234567890123456789"})

	var payload models.EventPayload
	require.NotPanics(t, func() {
		payload = BuildPayload(models.EventTypeMessageDelete, stub, nil)
	})

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	for _, key := range []string{
		"eventType", "content", "messageId", "timestamp", "author", "channel",
		"guild", "attachments", "stickers", "embeds", "mentions", "reference",
	} {
		assert.Contains(t, decoded, key, "top-level key %s must always be present", key)
	}

	assert.Nil(t, decoded["content"])
	assert.Nil(t, decoded["reference"])
	assert.NotNil(t, decoded["timestamp"], "snowflake ids still carry a creation time")

	assert.Equal(t, map[string]any{"id": nil, "username": nil, "avatar": nil}, decoded["author"])
	assert.Equal(t, map[string]any{"id": nil, "name": nil}, decoded["channel"])
	assert.Equal(t, map[string]any{"id": nil, "name": nil}, decoded["guild"])
	assert.Equal(t, []any{}, decoded["attachments"])
	assert.Equal(t, []any{}, decoded["stickers"])
	assert.Equal(t, []any{}, decoded["embeds"])
	assert.Equal(t, map[string]any{"users": []any{}, "roles": []any{}}, decoded["mentions"])
}

func TestBuildPayload_NilMessage(t *testing.T) {
	payload := BuildPayload(models.EventTypeMessageDelete, models.DiscordMessage{}, nil)

	assert.Equal(t, "", payload.MessageID)
	assert.Nil(t, payload.Timestamp)
	assert.Equal(t, models.PayloadAuthor{}, payload.Author)
	assert.NotNil(t, payload.Mentions.Users)
}

func TestBuildPayload_EmptyContentOfFullMessageIsEmptyString(t *testing.T) {
	msg := fullMessage()
	msg.Content = ""

	payload := BuildPayload(models.EventTypeMessageCreate, models.NewDiscordMessage(msg), nil)

	require.NotNil(t, payload.Content)
	assert.Equal(t, "", *payload.Content)
}

func TestBuildPayload_PreservesOrderAndDuplicates(t *testing.T) {
	msg := fullMessage()
	msg.Attachments = []*discordgo.MessageAttachment{
		{URL: "https://a.url", Filename: "a.png"},
		{URL: "https://b.url", Filename: "b.txt", ContentType: "text/plain"},
		{URL: "https://a.url", Filename: "a.png"},
	}
	msg.Mentions = []*discordgo.User{
		{ID: "u2", Username: "second"},
		{ID: "u1", Username: "first"},
		{ID: "u2", Username: "second"},
	}
	msg.MentionRoles = []string{"r2", "r1"}

	payload := BuildPayload(models.EventTypeMessageCreate, models.NewDiscordMessage(msg), testDirectory())

	require.Len(t, payload.Attachments, 3)
	assert.Equal(t, "a.png", payload.Attachments[0].Name)
	assert.Nil(t, payload.Attachments[0].ContentType)
	assert.Equal(t, "b.txt", payload.Attachments[1].Name)
	assert.Equal(t, "a.png", payload.Attachments[2].Name)

	require.Len(t, payload.Mentions.Users, 3)
	assert.Equal(t, []string{"u2", "u1", "u2"}, []string{
		payload.Mentions.Users[0].ID,
		payload.Mentions.Users[1].ID,
		payload.Mentions.Users[2].ID,
	})

	require.Len(t, payload.Mentions.Roles, 2)
	assert.Equal(t, "r2", payload.Mentions.Roles[0].ID)
	assert.Nil(t, payload.Mentions.Roles[0].Name, "roles missing from the cache have a null name")
	assert.Equal(t, "role1", *payload.Mentions.Roles[1].Name)
}

func TestBuildPayload_StickerFormats(t *testing.T) {
	msg := fullMessage()
	msg.StickerItems = []*discordgo.StickerItem{
		{ID: "s1", Name: "png", FormatType: discordgo.StickerFormatTypePNG},
		{ID: "s2", Name: "apng", FormatType: discordgo.StickerFormatTypeAPNG},
		{ID: "s3", Name: "lottie", FormatType: discordgo.StickerFormatTypeLottie},
	}

	payload := BuildPayload(models.EventTypeMessageCreate, models.NewDiscordMessage(msg), nil)

	require.Len(t, payload.Stickers, 3)
	assert.Equal(t, "https://cdn.discordapp.com/stickers/s1.png", payload.Stickers[0].URL)
	assert.Equal(t, "https://cdn.discordapp.com/stickers/s2.png", payload.Stickers[1].URL)
	assert.Equal(t, "https://cdn.discordapp.com/stickers/s3.json", payload.Stickers[2].URL)
}

func TestBuildPayload_EmbedsPassThroughAsDiscordJSON(t *testing.T) {
	msg := fullMessage()
	msg.Embeds = []*discordgo.MessageEmbed{
		{Title: "First", Fields: []*discordgo.MessageEmbedField{{Name: "k", Value: "v"}}},
		{Description: "Second"},
	}

	payload := BuildPayload(models.EventTypeMessageUpdate, models.NewDiscordMessage(msg), nil)

	encoded, err := json.Marshal(payload.Embeds)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"","title":"First","fields":[{"name":"k","value":"v"}]},
		{"type":"","description":"Second"}
	]`, stripEmbedType(t, encoded))
}

// stripEmbedType normalises the embed type field, whose omitempty behaviour differs across discordgo releases
func stripEmbedType(t *testing.T, encoded []byte) string {
	t.Helper()
	var embeds []map[string]any
	require.NoError(t, json.Unmarshal(encoded, &embeds))
	for _, e := range embeds {
		e["type"] = ""
	}
	out, err := json.Marshal(embeds)
	require.NoError(t, err)
	return string(out)
}

func TestBuildPayload_TimestampFromSnowflake(t *testing.T) {
	// 175928847299117063 is the example snowflake from the Discord docs, created 2016-04-30T11:18:25.796Z
	stub := models.NewPartialDiscordMessage(&discordgo.Message{ID: "175928847299117063"})

	payload := BuildPayload(models.EventTypeMessageDelete, stub, nil)

	require.NotNil(t, payload.Timestamp)
	assert.Equal(t, int64(1462015105796), *payload.Timestamp)
}

func TestBuildPayload_TimestampNullForNonSnowflakeID(t *testing.T) {
	stub := models.NewPartialDiscordMessage(&discordgo.Message{ID: "msg123"})

	payload := BuildPayload(models.EventTypeMessageDelete, stub, nil)

	assert.Nil(t, payload.Timestamp)

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Contains(t, decoded, "timestamp")
	assert.Nil(t, decoded["timestamp"])
}

func TestStaticDirectory(t *testing.T) {
	dir := testDirectory()

	name, ok := dir.ChannelName("channel123")
	assert.True(t, ok)
	assert.Equal(t, "general", name)

	_, ok = dir.GuildName("missing")
	assert.False(t, ok)

	var empty StaticDirectory
	_, ok = empty.RoleName("guild123", "r1")
	assert.False(t, ok)
}

func TestStateDirectory(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{
		ID:   "guild123",
		Name: "Test Server",
		Roles: []*discordgo.Role{
			{ID: "r1", Name: "role1"},
		},
		Channels: []*discordgo.Channel{
			{ID: "channel123", GuildID: "guild123", Name: "general"},
		},
	}))

	dir := NewStateDirectory(state)

	name, ok := dir.ChannelName("channel123")
	assert.True(t, ok)
	assert.Equal(t, "general", name)

	name, ok = dir.GuildName("guild123")
	assert.True(t, ok)
	assert.Equal(t, "Test Server", name)

	name, ok = dir.RoleName("guild123", "r1")
	assert.True(t, ok)
	assert.Equal(t, "role1", name)

	_, ok = dir.ChannelName("unknown")
	assert.False(t, ok)

	_, ok = NewStateDirectory(nil).GuildName("guild123")
	assert.False(t, ok)
}

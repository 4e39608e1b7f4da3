package responder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"discordbridge/clients"
	"discordbridge/clients/discord"
	"discordbridge/clients/webhook"
	"discordbridge/core"
	"discordbridge/models"
	"discordbridge/observability"
)

type responderFixture struct {
	responder *Responder
	discord   *discord.MockDiscordClient
	fetcher   *webhook.MockWebhookClient
	recorder  *tracetest.SpanRecorder
}

func newResponderFixture() *responderFixture {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	discordClient := &discord.MockDiscordClient{}
	fetcher := &webhook.MockWebhookClient{}

	return &responderFixture{
		responder: NewResponder(discordClient, fetcher, provider, observability.NewMetrics(prometheus.NewRegistry())),
		discord:   discordClient,
		fetcher:   fetcher,
		recorder:  recorder,
	}
}

func (f *responderFixture) span(t *testing.T) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := f.recorder.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func eventNames(span sdktrace.ReadOnlySpan) []string {
	names := make([]string, 0, len(span.Events()))
	for _, e := range span.Events() {
		names = append(names, e.Name)
	}
	return names
}

func testMessage() models.DiscordMessage {
	return models.NewDiscordMessage(&discordgo.Message{
		ID:        "msg123",
		ChannelID: "channel123",
		GuildID:   "guild123",
		Content:   "hello",
		Author:    &discordgo.User{ID: "user123", Username: "testuser"},
	})
}

var testRef = models.DiscordMessageRef{GuildID: "guild123", ChannelID: "channel123", MessageID: "msg123"}

var posted = &clients.DiscordPostMessageResponse{ChannelID: "channel123", MessageID: "reply123"}

func TestSendResponse_Reply(t *testing.T) {
	f := newResponderFixture()
	f.discord.On("ReplyToMessage", mock.Anything, testRef, "x").Return(posted, nil).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{Reply: mo.Some("x")})

	require.NoError(t, err)
	f.discord.AssertExpectations(t)
	f.discord.AssertNumberOfCalls(t, "ReplyToMessage", 1)
	f.discord.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	f.discord.AssertNotCalled(t, "AddReaction", mock.Anything, mock.Anything, mock.Anything)

	span := f.span(t)
	assert.Equal(t, "sendResponse", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.Equal(t, []string{"sent_reply"}, eventNames(span))
}

func TestSendResponse_LongReplyIsTrimmed(t *testing.T) {
	f := newResponderFixture()
	long := strings.Repeat("a", 2500)
	f.discord.On("ReplyToMessage", mock.Anything, testRef, mock.MatchedBy(func(content string) bool {
		return len(content) == 2000 && strings.HasSuffix(content, "...")
	})).Return(posted, nil).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{Reply: mo.Some(long)})

	require.NoError(t, err)
	f.discord.AssertExpectations(t)
}

func TestSendResponse_Embed(t *testing.T) {
	f := newResponderFixture()
	embed := &discordgo.MessageEmbed{Title: "Hello", Description: "World"}
	f.discord.On("SendMessage", mock.Anything, "channel123", clients.DiscordMessageParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}).Return(posted, nil).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{Embed: mo.Some(embed)})

	require.NoError(t, err)
	f.discord.AssertExpectations(t)
	assert.Equal(t, []string{"sent_embed"}, eventNames(f.span(t)))
}

func TestSendResponse_Reaction(t *testing.T) {
	tests := []struct {
		name     string
		reaction string
	}{
		{name: "unicode", reaction: "👍"},
		{name: "custom", reaction: "<:party:123456>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResponderFixture()
			f.discord.On("AddReaction", mock.Anything, testRef, tt.reaction).Return(nil).Once()

			err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{Reaction: mo.Some(tt.reaction)})

			require.NoError(t, err)
			f.discord.AssertExpectations(t)

			span := f.span(t)
			require.Len(t, span.Events(), 1)
			assert.Equal(t, "added_reaction", span.Events()[0].Name)
			assert.Equal(t, tt.reaction, span.Events()[0].Attributes[0].Value.AsString())
		})
	}
}

func TestSendResponse_File(t *testing.T) {
	f := newResponderFixture()
	file := &discordgo.File{Name: "u.png", ContentType: "image/png", Reader: strings.NewReader("png")}
	f.fetcher.On("FetchFile", mock.Anything, "https://files.example.com/u.png").Return(file, nil).Once()
	f.discord.On("SendMessage", mock.Anything, "channel123", clients.DiscordMessageParams{
		Files: []*discordgo.File{file},
	}).Return(posted, nil).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{
		FileURL: mo.Some("https://files.example.com/u.png"),
	})

	require.NoError(t, err)
	f.discord.AssertExpectations(t)
	f.fetcher.AssertExpectations(t)
	assert.Equal(t, []string{"sent_file"}, eventNames(f.span(t)))
}

func TestSendResponse_AllActionsRunInOrder(t *testing.T) {
	f := newResponderFixture()
	embed := &discordgo.MessageEmbed{Title: "T"}
	file := &discordgo.File{Name: "f.txt", Reader: strings.NewReader("f")}

	var order []string
	f.discord.On("ReplyToMessage", mock.Anything, testRef, "hi").
		Run(func(mock.Arguments) { order = append(order, "reply") }).Return(posted, nil).Once()
	f.discord.On("SendMessage", mock.Anything, "channel123", clients.DiscordMessageParams{Embeds: []*discordgo.MessageEmbed{embed}}).
		Run(func(mock.Arguments) { order = append(order, "embed") }).Return(posted, nil).Once()
	f.discord.On("AddReaction", mock.Anything, testRef, "👍").
		Run(func(mock.Arguments) { order = append(order, "reaction") }).Return(nil).Once()
	f.fetcher.On("FetchFile", mock.Anything, "https://x/f.txt").Return(file, nil).Once()
	f.discord.On("SendMessage", mock.Anything, "channel123", clients.DiscordMessageParams{Files: []*discordgo.File{file}}).
		Run(func(mock.Arguments) { order = append(order, "file") }).Return(posted, nil).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{
		Reply:    mo.Some("hi"),
		Embed:    mo.Some(embed),
		Reaction: mo.Some("👍"),
		FileURL:  mo.Some("https://x/f.txt"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"reply", "embed", "reaction", "file"}, order)
	assert.Equal(t, []string{"sent_reply", "sent_embed", "added_reaction", "sent_file"}, eventNames(f.span(t)))
}

func TestSendResponse_ReplyAndReactionEachOnce(t *testing.T) {
	f := newResponderFixture()
	f.discord.On("ReplyToMessage", mock.Anything, testRef, "x").Return(posted, nil).Once()
	f.discord.On("AddReaction", mock.Anything, testRef, "👍").Return(nil).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{
		Reply:    mo.Some("x"),
		Reaction: mo.Some("👍"),
	})

	require.NoError(t, err)
	f.discord.AssertNumberOfCalls(t, "ReplyToMessage", 1)
	f.discord.AssertNumberOfCalls(t, "AddReaction", 1)
	f.discord.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendResponse_EmptyActionDoesNothing(t *testing.T) {
	f := newResponderFixture()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{})

	require.NoError(t, err)
	assert.Empty(t, f.discord.Calls)
	assert.Equal(t, codes.Ok, f.span(t).Status().Code)
}

func TestSendResponse_StopsAtFirstFailure(t *testing.T) {
	f := newResponderFixture()
	permissionErr := errors.New("Missing Permissions")
	f.discord.On("ReplyToMessage", mock.Anything, testRef, "hi").Return(posted, nil).Once()
	f.discord.On("SendMessage", mock.Anything, "channel123", mock.Anything).Return(nil, permissionErr).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{
		Reply:    mo.Some("hi"),
		Embed:    mo.Some(&discordgo.MessageEmbed{Title: "T"}),
		Reaction: mo.Some("👍"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, permissionErr)
	f.discord.AssertNotCalled(t, "AddReaction", mock.Anything, mock.Anything, mock.Anything)

	span := f.span(t)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, []string{"sent_reply", "exception"}, eventNames(span))
}

func TestSendResponse_FileFetchFailure(t *testing.T) {
	f := newResponderFixture()
	f.fetcher.On("FetchFile", mock.Anything, "https://x/missing.png").Return(nil, errors.New("404")).Once()

	err := f.responder.SendResponse(context.Background(), testMessage(), models.ResponseAction{
		FileURL: mo.Some("https://x/missing.png"),
	})

	require.Error(t, err)
	f.discord.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, codes.Error, f.span(t).Status().Code)
}

func TestSendResponse_MalformedFieldFailsAtItsStep(t *testing.T) {
	f := newResponderFixture()
	action, err := models.ParseResponseAction([]byte(`{"reply":"hi","embed":{"color":"#f00"},"reaction":"👍"}`))
	require.NoError(t, err)
	f.discord.On("ReplyToMessage", mock.Anything, testRef, "hi").Return(posted, nil).Once()

	err = f.responder.SendResponse(context.Background(), testMessage(), action)

	assert.ErrorIs(t, err, core.ErrMalformedResponse)
	f.discord.AssertExpectations(t)
	f.discord.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	f.discord.AssertNotCalled(t, "AddReaction", mock.Anything, mock.Anything, mock.Anything)

	span := f.span(t)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, []string{"sent_reply", "exception"}, eventNames(span))
}

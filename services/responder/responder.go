package responder

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"discordbridge/clients"
	"discordbridge/core/log"
	"discordbridge/core/tracing"
	"discordbridge/models"
	"discordbridge/observability"
	"discordbridge/utils"
)

// Action names used in logs, trace events and metrics
const (
	ActionReply    = "reply"
	ActionEmbed    = "embed"
	ActionReaction = "reaction"
	ActionFile     = "file"
)

// Sender performs the Discord actions a webhook response asks for
type Sender interface {
	SendResponse(ctx context.Context, msg models.DiscordMessage, action models.ResponseAction) error
}

type Responder struct {
	discordClient clients.DiscordClient
	fileFetcher   clients.FileFetcher
	tracer        trace.Tracer
	metrics       *observability.Metrics
}

func NewResponder(
	discordClient clients.DiscordClient,
	fileFetcher clients.FileFetcher,
	tracerProvider trace.TracerProvider,
	metrics *observability.Metrics,
) *Responder {
	if tracerProvider == nil {
		tracerProvider = noop.NewTracerProvider()
	}
	return &Responder{
		discordClient: discordClient,
		fileFetcher:   fileFetcher,
		tracer:        tracerProvider.Tracer(tracing.TracerName + "/responder"),
		metrics:       metrics,
	}
}

// SendResponse runs the requested actions in the order reply, embed, reaction, file.
// It stops at the first failure and returns it; actions that already completed are not undone.
// A field the webhook sent malformed fails at its own step.
func (r *Responder) SendResponse(ctx context.Context, msg models.DiscordMessage, action models.ResponseAction) error {
	ctx, span := r.tracer.Start(ctx, "sendResponse")
	defer span.End()

	ref := msg.Ref()

	if err := action.FieldError(models.FieldReply); err != nil {
		return r.fail(span, ActionReply, err)
	}
	if content, ok := action.Reply.Get(); ok {
		if err := r.sendReply(ctx, span, ref, content); err != nil {
			return r.fail(span, ActionReply, err)
		}
	}

	if err := action.FieldError(models.FieldEmbed); err != nil {
		return r.fail(span, ActionEmbed, err)
	}
	if embed, ok := action.Embed.Get(); ok {
		if err := r.sendEmbed(ctx, span, ref, embed); err != nil {
			return r.fail(span, ActionEmbed, err)
		}
	}

	if err := action.FieldError(models.FieldReaction); err != nil {
		return r.fail(span, ActionReaction, err)
	}
	if reaction, ok := action.Reaction.Get(); ok {
		if err := r.addReaction(ctx, span, ref, reaction); err != nil {
			return r.fail(span, ActionReaction, err)
		}
	}

	if err := action.FieldError(models.FieldFileURL); err != nil {
		return r.fail(span, ActionFile, err)
	}
	if fileURL, ok := action.FileURL.Get(); ok {
		if err := r.sendFile(ctx, span, ref, fileURL); err != nil {
			return r.fail(span, ActionFile, err)
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *Responder) sendReply(ctx context.Context, span trace.Span, ref models.DiscordMessageRef, content string) error {
	content = utils.TrimDiscordMessage(content)
	if _, err := r.discordClient.ReplyToMessage(ctx, ref, content); err != nil {
		return fmt.Errorf("failed to reply to message %s: %w", ref.MessageID, err)
	}

	r.metrics.RecordAction(ActionReply, observability.ActionSucceeded)
	span.AddEvent("sent_reply", trace.WithAttributes(attribute.String("content", content)))
	log.Info("💬 Sent reply", "messageId", ref.MessageID, "channelId", ref.ChannelID)
	return nil
}

func (r *Responder) sendEmbed(ctx context.Context, span trace.Span, ref models.DiscordMessageRef, embed *discordgo.MessageEmbed) error {
	params := clients.DiscordMessageParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if _, err := r.discordClient.SendMessage(ctx, ref.ChannelID, params); err != nil {
		return fmt.Errorf("failed to send embed to channel %s: %w", ref.ChannelID, err)
	}

	r.metrics.RecordAction(ActionEmbed, observability.ActionSucceeded)
	span.AddEvent("sent_embed")
	log.Info("🧾 Sent embed", "channelId", ref.ChannelID)
	return nil
}

func (r *Responder) addReaction(ctx context.Context, span trace.Span, ref models.DiscordMessageRef, reaction string) error {
	if err := r.discordClient.AddReaction(ctx, ref, reaction); err != nil {
		return fmt.Errorf("failed to add reaction %q to message %s: %w", reaction, ref.MessageID, err)
	}

	r.metrics.RecordAction(ActionReaction, observability.ActionSucceeded)
	span.AddEvent("added_reaction", trace.WithAttributes(attribute.String("reaction", reaction)))
	log.Info("👍 Added reaction", "messageId", ref.MessageID, "reaction", reaction)
	return nil
}

func (r *Responder) sendFile(ctx context.Context, span trace.Span, ref models.DiscordMessageRef, fileURL string) error {
	file, err := r.fileFetcher.FetchFile(ctx, fileURL)
	if err != nil {
		return fmt.Errorf("failed to fetch file %s: %w", fileURL, err)
	}

	params := clients.DiscordMessageParams{Files: []*discordgo.File{file}}
	if _, err := r.discordClient.SendMessage(ctx, ref.ChannelID, params); err != nil {
		return fmt.Errorf("failed to send file to channel %s: %w", ref.ChannelID, err)
	}

	r.metrics.RecordAction(ActionFile, observability.ActionSucceeded)
	span.AddEvent("sent_file", trace.WithAttributes(attribute.String("url", fileURL)))
	log.Info("📎 Sent file", "channelId", ref.ChannelID, "url", fileURL)
	return nil
}

func (r *Responder) fail(span trace.Span, action string, err error) error {
	r.metrics.RecordAction(action, observability.ActionFailed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Error("❌ Failed to send response", "action", action, "error", err)
	return err
}

package forwarder

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/mo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"discordbridge/clients"
	"discordbridge/config"
	"discordbridge/core"
	"discordbridge/core/log"
	"discordbridge/core/tracing"
	"discordbridge/models"
	"discordbridge/observability"
	"discordbridge/services/payload"
	"discordbridge/services/responder"
)

// Forwarder sends message events to the workflow webhook
type Forwarder interface {
	ForwardToWebhook(ctx context.Context, eventType models.EventType, msg models.DiscordMessage, webhookOverride mo.Option[string])
}

type WebhookForwarder struct {
	webhookConfig config.WebhookConfig
	webhookClient clients.WebhookClient
	sender        responder.Sender
	validator     responder.Validator
	directory     payload.Directory
	tracer        trace.Tracer
	metrics       *observability.Metrics
}

func NewWebhookForwarder(
	webhookConfig config.WebhookConfig,
	webhookClient clients.WebhookClient,
	sender responder.Sender,
	validator responder.Validator,
	directory payload.Directory,
	tracerProvider trace.TracerProvider,
	metrics *observability.Metrics,
) *WebhookForwarder {
	if validator == nil {
		validator = responder.PermissiveValidator{}
	}
	if tracerProvider == nil {
		tracerProvider = noop.NewTracerProvider()
	}
	return &WebhookForwarder{
		webhookConfig: webhookConfig,
		webhookClient: webhookClient,
		sender:        sender,
		validator:     validator,
		directory:     directory,
		tracer:        tracerProvider.Tracer(tracing.TracerName + "/forwarder"),
		metrics:       metrics,
	}
}

// ForwardToWebhook posts the event to the resolved webhook and, for new messages, performs the actions it answers with.
// It never fails outward: every error is recorded on the span, logged and dropped.
func (f *WebhookForwarder) ForwardToWebhook(
	ctx context.Context,
	eventType models.EventType,
	msg models.DiscordMessage,
	webhookOverride mo.Option[string],
) {
	if msg.Message == nil {
		msg = models.NewPartialDiscordMessage(nil)
	}

	ctx, span := f.tracer.Start(ctx, "forwardToWebhook")
	defer span.End()

	defer f.metrics.TrackInFlight()()

	forwardID := core.NewID(core.ForwardIDPrefix)
	span.SetAttributes(
		attribute.String("forward.id", forwardID),
		attribute.String("event.type", string(eventType)),
		attribute.String("message.id", msg.ID),
		attribute.String("author.username", msg.AuthorUsername()),
		attribute.String("channel.id", msg.ChannelIDOrUnknown()),
	)

	webhookURL := webhookOverride.OrElse(f.webhookConfig.ResolveURL(msg.ChannelID))
	if webhookURL == "" {
		span.AddEvent("webhook_not_configured")
		span.SetStatus(codes.Error, core.ErrWebhookNotConfigured.Error())
		f.metrics.RecordForward(string(eventType), observability.OutcomeNotConfigured)
		log.Error("❌ No webhook configured for message",
			"forwardId", forwardID, "eventType", eventType, "channelId", msg.ChannelIDOrUnknown())
		return
	}

	if err := f.forward(ctx, span, forwardID, webhookURL, eventType, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.AddEvent("webhook_error", trace.WithAttributes(attribute.String("error", err.Error())))
		f.metrics.RecordForward(string(eventType), observability.OutcomeFailed)
		log.Error("❌ Failed to forward event to webhook",
			"forwardId", forwardID, "eventType", eventType, "messageId", msg.ID, "error", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	f.metrics.RecordForward(string(eventType), observability.OutcomeForwarded)
}

func (f *WebhookForwarder) forward(
	ctx context.Context,
	span trace.Span,
	forwardID string,
	webhookURL string,
	eventType models.EventType,
	msg models.DiscordMessage,
) error {
	eventPayload := payload.BuildPayload(eventType, msg, f.directory)

	content := ""
	if eventPayload.Content != nil {
		content = *eventPayload.Content
	}
	span.AddEvent("forwarding_to_webhook", trace.WithAttributes(
		attribute.String("webhook", webhookURL),
		attribute.String("eventType", string(eventType)),
		attribute.String("content", content),
		attribute.String("author", msg.AuthorUsername()),
		attribute.Bool("hasAttachments", len(eventPayload.Attachments) > 0),
		attribute.Bool("hasStickers", len(eventPayload.Stickers) > 0),
		attribute.Bool("hasEmbeds", len(eventPayload.Embeds) > 0),
	))
	log.Info("📤 Forwarding event to webhook",
		"forwardId", forwardID, "eventType", eventType, "messageId", msg.ID, "author", msg.AuthorUsername())
	log.Debug("📦 Webhook payload", "forwardId", forwardID, "payload", eventPayload)

	started := time.Now()
	resp, err := f.webhookClient.PostJSON(ctx, webhookURL, eventPayload)
	if err != nil {
		f.metrics.RecordWebhookCall("error", time.Since(started))
		return fmt.Errorf("failed to post to webhook: %w", err)
	}
	f.metrics.RecordWebhookCall(strconv.Itoa(resp.StatusCode), time.Since(started))

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	span.AddEvent("webhook_response", trace.WithAttributes(attribute.Int("status", resp.StatusCode)))
	log.Info("📬 Webhook responded", "forwardId", forwardID, "status", resp.StatusCode)

	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %d", core.ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := f.validator.Validate(resp.Body); err != nil {
		return err
	}

	action, err := models.ParseResponseAction(resp.Body)
	if err != nil {
		return err
	}

	span.AddEvent("response_data", trace.WithAttributes(
		attribute.Bool("hasReply", action.Reply.IsPresent()),
		attribute.Bool("hasEmbed", action.Embed.IsPresent()),
		attribute.Bool("hasReaction", action.Reaction.IsPresent()),
		attribute.Bool("hasFile", action.FileURL.IsPresent()),
		attribute.Int("invalidFields", len(action.Invalid)),
	))
	log.Debug("📥 Webhook response", "forwardId", forwardID, "body", string(resp.Body))

	// Edits and deletes are notification-only
	if eventType != models.EventTypeMessageCreate || msg.Partial || action.IsEmpty() {
		return nil
	}

	if err := f.sender.SendResponse(ctx, msg, action); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}
	return nil
}

package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"
	"github.com/samber/mo"

	"discordbridge/clients"
	"discordbridge/core/log"
	"discordbridge/models"
	"discordbridge/observability"
	"discordbridge/usecases/forwarder"
)

type DiscordEventsHandler struct {
	forwarder forwarder.Forwarder
	pool      *workerpool.WorkerPool
	metrics   *observability.Metrics
}

// NewDiscordEventsHandler creates the gateway event router.
// With a nil pool every event is forwarded on the goroutine discordgo delivered it on;
// otherwise forwards are queued on the pool, which caps how many run at once.
func NewDiscordEventsHandler(
	forwarder forwarder.Forwarder,
	pool *workerpool.WorkerPool,
	metrics *observability.Metrics,
) *DiscordEventsHandler {
	return &DiscordEventsHandler{
		forwarder: forwarder,
		pool:      pool,
		metrics:   metrics,
	}
}

// SetupClient subscribes to message creation, update and deletion, in that order
func (h *DiscordEventsHandler) SetupClient(registrar clients.EventRegistrar) {
	registrar.AddHandler(h.handleMessageCreatedEvent)
	registrar.AddHandler(h.handleMessageUpdatedEvent)
	registrar.AddHandler(h.handleMessageDeletedEvent)
}

// SetupLifecycleLogging subscribes to connection lifecycle events, which are only logged
func (h *DiscordEventsHandler) SetupLifecycleLogging(registrar clients.EventRegistrar) {
	registrar.AddHandler(h.handleReadyEvent)
	registrar.AddHandler(h.handleDisconnectEvent)
	registrar.AddHandler(h.handleResumedEvent)
	registrar.AddHandler(h.handleRateLimitEvent)
}

// Stop waits for queued forwards to finish
func (h *DiscordEventsHandler) Stop() {
	if h.pool != nil {
		h.pool.StopWait()
	}
}

// handleMessageCreatedEvent forwards new messages; their webhook response may trigger a reply
func (h *DiscordEventsHandler) handleMessageCreatedEvent(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	msg := models.NewDiscordMessage(m.Message)
	if msg.IsFromBot() {
		h.metrics.RecordIgnored(string(models.EventTypeMessageCreate))
		return
	}

	log.Info("📨 Discord message received",
		"author", msg.AuthorUsername(), "guildId", m.GuildID, "channelId", m.ChannelID, "messageId", m.ID)
	h.forward(models.EventTypeMessageCreate, msg)
}

// handleMessageUpdatedEvent forwards the message's current state
func (h *DiscordEventsHandler) handleMessageUpdatedEvent(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	if m == nil || m.Message == nil {
		return
	}

	// Updates that only attach embeds arrive without an author
	msg := models.NewDiscordMessage(m.Message)
	if m.Author == nil {
		msg = models.NewPartialDiscordMessage(m.Message)
	}
	if msg.IsFromBot() {
		h.metrics.RecordIgnored(string(models.EventTypeMessageUpdate))
		return
	}

	log.Info("✏️ Discord message edited", "author", msg.AuthorUsername(), "channelId", m.ChannelID, "messageId", m.ID)
	h.forward(models.EventTypeMessageUpdate, msg)
}

// handleMessageDeletedEvent forwards the cached message when the state had it, else the id-only stub
func (h *DiscordEventsHandler) handleMessageDeletedEvent(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m == nil || m.Message == nil {
		return
	}

	msg := models.NewPartialDiscordMessage(m.Message)
	if m.BeforeDelete != nil {
		msg = models.NewDiscordMessage(m.BeforeDelete)
	}
	if msg.IsFromBot() {
		h.metrics.RecordIgnored(string(models.EventTypeMessageDelete))
		return
	}

	log.Info("🗑️ Discord message deleted", "channelId", m.ChannelID, "messageId", m.ID, "cached", !msg.Partial)
	h.forward(models.EventTypeMessageDelete, msg)
}

func (h *DiscordEventsHandler) forward(eventType models.EventType, msg models.DiscordMessage) {
	task := func() {
		h.forwarder.ForwardToWebhook(context.Background(), eventType, msg, mo.None[string]())
	}
	if h.pool == nil {
		task()
		return
	}
	h.pool.Submit(task)
}

func (h *DiscordEventsHandler) handleReadyEvent(_ *discordgo.Session, r *discordgo.Ready) {
	if r == nil || r.User == nil {
		log.Info("🤖 Bot logged in and ready")
		return
	}
	log.Info("🤖 Bot logged in and ready", "user", r.User.String(), "guilds", len(r.Guilds))
}

func (h *DiscordEventsHandler) handleDisconnectEvent(_ *discordgo.Session, _ *discordgo.Disconnect) {
	log.Warn("⚠️ Disconnected from Discord gateway")
}

func (h *DiscordEventsHandler) handleResumedEvent(_ *discordgo.Session, _ *discordgo.Resumed) {
	log.Info("🔄 Discord gateway session resumed")
}

func (h *DiscordEventsHandler) handleRateLimitEvent(_ *discordgo.Session, r *discordgo.RateLimit) {
	if r == nil || r.TooManyRequests == nil {
		return
	}
	log.Warn("⚠️ Discord rate limit hit", "url", r.URL, "retryAfter", r.RetryAfter)
}

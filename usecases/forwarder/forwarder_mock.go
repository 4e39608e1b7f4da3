package forwarder

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"discordbridge/models"
)

// MockForwarder implements Forwarder for testing
type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) ForwardToWebhook(
	ctx context.Context,
	eventType models.EventType,
	msg models.DiscordMessage,
	webhookOverride mo.Option[string],
) {
	m.Called(ctx, eventType, msg, webhookOverride)
}

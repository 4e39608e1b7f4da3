package webhook

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"

	"discordbridge/clients"
)

// MockWebhookClient implements clients.WebhookClient and clients.FileFetcher for testing
type MockWebhookClient struct {
	mock.Mock
}

func (m *MockWebhookClient) PostJSON(ctx context.Context, url string, payload any) (*clients.WebhookResponse, error) {
	args := m.Called(ctx, url, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.WebhookResponse), args.Error(1)
}

func (m *MockWebhookClient) FetchFile(ctx context.Context, fileURL string) (*discordgo.File, error) {
	args := m.Called(ctx, fileURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.File), args.Error(1)
}

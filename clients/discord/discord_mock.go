package discord

import (
	"context"

	"github.com/stretchr/testify/mock"

	"discordbridge/clients"
	"discordbridge/models"
)

// MockDiscordClient implements the clients.DiscordClient interface for testing
type MockDiscordClient struct {
	mock.Mock
}

// ReplyToMessage mocks replying to a Discord message
func (m *MockDiscordClient) ReplyToMessage(
	ctx context.Context,
	ref models.DiscordMessageRef,
	content string,
) (*clients.DiscordPostMessageResponse, error) {
	args := m.Called(ctx, ref, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordPostMessageResponse), args.Error(1)
}

// SendMessage mocks sending a Discord message to a channel
func (m *MockDiscordClient) SendMessage(
	ctx context.Context,
	channelID string,
	params clients.DiscordMessageParams,
) (*clients.DiscordPostMessageResponse, error) {
	args := m.Called(ctx, channelID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordPostMessageResponse), args.Error(1)
}

// AddReaction mocks adding a reaction to a Discord message
func (m *MockDiscordClient) AddReaction(ctx context.Context, ref models.DiscordMessageRef, emoji string) error {
	args := m.Called(ctx, ref, emoji)
	return args.Error(0)
}

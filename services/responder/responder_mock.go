package responder

import (
	"context"

	"github.com/stretchr/testify/mock"

	"discordbridge/models"
)

// MockSender implements Sender for testing
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendResponse(ctx context.Context, msg models.DiscordMessage, action models.ResponseAction) error {
	args := m.Called(ctx, msg, action)
	return args.Error(0)
}

// MockValidator implements Validator for testing
type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(body []byte) error {
	args := m.Called(body)
	return args.Error(0)
}

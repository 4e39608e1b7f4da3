package core

import "errors"

var (
	// ErrMissingBotToken is returned at startup when no Discord bot token is configured
	ErrMissingBotToken = errors.New("missing DISCORD_BOT_TOKEN")

	// ErrInvalidConfig wraps any configuration value that fails validation
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrWebhookNotConfigured is reported when no webhook endpoint resolves for a message
	ErrWebhookNotConfigured = errors.New("webhook not configured")

	// ErrUnexpectedStatus is returned when the webhook answers with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected webhook status")

	// ErrMalformedResponse is returned when the webhook body cannot be read as an action record
	ErrMalformedResponse = errors.New("malformed webhook response")
)

// IsRecoverable reports whether an error is one the forwarder contains and moves past.
// Only a missing bot token stops the process.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrMissingBotToken)
}

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"discordbridge/core"
	"discordbridge/core/log"
)

// Response validation modes
const (
	ResponseValidationPermissive = "permissive"
	ResponseValidationStrict     = "strict"
)

type WebhookConfig struct {
	DefaultURL    string
	TestURL       string
	TestChannelID string
	Timeout       time.Duration
}

// IsConfigured returns true if at least one webhook endpoint is present
func (c WebhookConfig) IsConfigured() bool {
	return c.DefaultURL != "" || c.TestURL != ""
}

// ResolveURL picks the endpoint for a message posted in channelID.
// Messages in the test channel go to the test endpoint, everything else to the default one.
// An empty result means no endpoint is configured for that route.
func (c WebhookConfig) ResolveURL(channelID string) string {
	if c.TestChannelID != "" && channelID == c.TestChannelID {
		return c.TestURL
	}
	return c.DefaultURL
}

type DiscordConfig struct {
	BotToken         string
	MessageCacheSize int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type AppConfig struct {
	Environment           string
	LogLevel              slog.Level
	HealthPort            string // Empty disables the health server
	MaxConcurrentForwards int    // 0 means unbounded
	ResponseValidation    string

	DiscordConfig DiscordConfig
	WebhookConfig WebhookConfig
	TracingConfig TracingConfig
}

// IsProduction reports whether logs should be emitted as JSON
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig(envFiles ...string) (*AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	botToken := getEnvWithDefault("DISCORD_BOT_TOKEN", os.Getenv("BOT_TOKEN"))
	if botToken == "" {
		return nil, core.ErrMissingBotToken
	}

	logLevel, err := log.ParseLevel(getEnvWithDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}

	defaultURL, err := getEnvURL("N8N_WEBHOOK")
	if err != nil {
		return nil, err
	}

	testURL, err := getEnvURL("N8N_WEBHOOK_TEST")
	if err != nil {
		return nil, err
	}

	timeout, err := getEnvDuration("WEBHOOK_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	maxConcurrentForwards, err := getEnvInt("MAX_CONCURRENT_FORWARDS", 0)
	if err != nil {
		return nil, err
	}

	messageCacheSize, err := getEnvInt("MESSAGE_CACHE_SIZE", 200)
	if err != nil {
		return nil, err
	}

	responseValidation := strings.ToLower(getEnvWithDefault("RESPONSE_VALIDATION", ResponseValidationPermissive))
	if responseValidation != ResponseValidationPermissive && responseValidation != ResponseValidationStrict {
		return nil, fmt.Errorf("%w: RESPONSE_VALIDATION must be %q or %q, got %q",
			core.ErrInvalidConfig, ResponseValidationPermissive, ResponseValidationStrict, responseValidation)
	}

	tracingEndpoint, err := getEnvURL("JAEGER_ENDPOINT")
	if err != nil {
		return nil, err
	}
	if tracingEndpoint == "" {
		tracingEndpoint = "http://localhost:4318"
	}

	config := &AppConfig{
		Environment:           getEnvWithDefault("ENVIRONMENT", "dev"),
		LogLevel:              logLevel,
		HealthPort:            getEnvAllowEmpty("HEALTH_PORT", "8080"),
		MaxConcurrentForwards: maxConcurrentForwards,
		ResponseValidation:    responseValidation,

		DiscordConfig: DiscordConfig{
			BotToken:         botToken,
			MessageCacheSize: messageCacheSize,
		},

		WebhookConfig: WebhookConfig{
			DefaultURL:    defaultURL,
			TestURL:       testURL,
			TestChannelID: os.Getenv("TEST_CHANNEL_ID"),
			Timeout:       timeout,
		},

		TracingConfig: TracingConfig{
			Enabled:     getEnvWithDefault("TRACING_ENABLED", "true") == "true",
			Endpoint:    strings.TrimRight(tracingEndpoint, "/"),
			ServiceName: "discord-bridge",
		},
	}

	if !config.WebhookConfig.IsConfigured() {
		fmt.Println("⚠️ N8N_WEBHOOK is not defined - messages will not be forwarded")
	}

	return config, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable (default) from one explicitly set to ""
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvURL(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", nil
	}

	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", core.ErrInvalidConfig, key, value)
	}
	return value, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", core.ErrInvalidConfig, key, value)
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative duration, got %q", core.ErrInvalidConfig, key, value)
	}
	return parsed, nil
}

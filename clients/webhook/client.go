package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/bwmarrin/discordgo"

	"discordbridge/clients"
	"discordbridge/core"
)

const (
	// Cap on how much of a webhook answer is read
	maxResponseBody = 1 << 20
	// Discord's default attachment upload limit
	maxFileSize = 25 << 20
)

// WebhookClient posts JSON payloads to the workflow webhook and downloads files it points at
type WebhookClient struct {
	httpClient *http.Client
}

// NewWebhookClient creates a webhook client. A nil httpClient uses http.DefaultClient.
func NewWebhookClient(httpClient *http.Client) *WebhookClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebhookClient{httpClient: httpClient}
}

var (
	_ clients.WebhookClient = (*WebhookClient)(nil)
	_ clients.FileFetcher   = (*WebhookClient)(nil)
)

// PostJSON sends payload as a JSON POST and returns the status and body without interpreting them
func (c *WebhookClient) PostJSON(ctx context.Context, webhookURL string, payload any) (*clients.WebhookResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response body: %w", err)
	}
	if len(respBody) > maxResponseBody {
		return nil, fmt.Errorf("%w: response body exceeds %d bytes", core.ErrMalformedResponse, maxResponseBody)
	}

	return &clients.WebhookResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// FetchFile downloads fileURL into memory as a Discord attachment named after the URL's last path segment
func (c *WebhookClient) FetchFile(ctx context.Context, fileURL string) (*discordgo.File, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid file URL %q", fileURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create file request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("file download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxFileSize)
	}

	return &discordgo.File{
		Name:        fileName(parsed, resp.Header.Get("Content-Type")),
		ContentType: resp.Header.Get("Content-Type"),
		Reader:      bytes.NewReader(data),
	}, nil
}

func fileName(u *url.URL, contentType string) string {
	name := path.Base(u.Path)
	if name != "" && name != "/" && name != "." {
		return name
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return "file" + exts[0]
		}
	}
	return "file"
}

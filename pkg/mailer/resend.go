package mailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultResendEndpoint = "https://api.resend.com"
	defaultSendTimeout    = 10 * time.Second
)

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ResendClient sends mail through the Resend HTTP API. It is built
// once and injected into whatever needs to send; there is no ambient
// process-wide instance.
type ResendClient struct {
	client *resty.Client
}

type ResendConfig struct {
	APIKey   string
	Endpoint string        // optional, defaults to the public API
	Timeout  time.Duration // optional, defaults to 10s
}

func NewResendClient(cfg *ResendConfig) (*ResendClient, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultResendEndpoint
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	client := resty.New().
		SetBaseURL(endpoint).
		SetAuthToken(strings.TrimSpace(cfg.APIKey)).
		SetTimeout(timeout).
		SetRetryCount(0)

	return &ResendClient{client: client}, nil
}

func (c *ResendClient) Send(ctx context.Context, msg *Message) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("resend client is not initialized")
	}
	if msg == nil {
		return fmt.Errorf("message is required")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("message recipient is required")
	}

	var (
		success resendEmailResponse
		failure resendErrorResponse
	)

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(resendEmailRequest{
			From:    msg.From,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
		}).
		SetResult(&success).
		SetError(&failure).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}

	if response.StatusCode() >= http.StatusOK && response.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if failure.Message != "" {
		return fmt.Errorf("resend returned status %d: %s", response.StatusCode(), failure.Message)
	}
	return fmt.Errorf("resend returned status %d", response.StatusCode())
}

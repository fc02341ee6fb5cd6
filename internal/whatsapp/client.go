package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/config"
)

// Sender delivers one outbound WhatsApp message. The webhook handler sends
// exactly one reply per inbound message; retries are out of scope here.
type Sender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// Client sends WhatsApp messages through the Twilio REST API
type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Twilio WhatsApp client
func NewClient(cfg config.TwilioConfig, logger *zap.Logger) *Client {
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.WhatsAppFrom,
		baseURL:    "https://api.twilio.com",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SendMessage posts one message to the Twilio Messages endpoint. The `to`
// number must include the whatsapp: prefix, as delivered by the webhook.
func (c *Client) SendMessage(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("twilio API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("WhatsApp message sent", zap.String("to", to))
	return nil
}

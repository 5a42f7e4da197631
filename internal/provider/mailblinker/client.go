// Package mailblinker talks to the MailBlinker disposable mail HTTP API.
package mailblinker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tempmail-otp-bot/internal/logging"
	"tempmail-otp-bot/internal/models"
	"tempmail-otp-bot/internal/provider"
)

const (
	DefaultBaseURL = "https://mailblinker.com"

	createMailPath = "/api/mail/create-mail"
	messagesPath   = "/api/mail/messages"
	otpOrLinkPath  = "/api/mail/last-unread-otp-or-link"
)

// Client is a thin JSON client with Bearer token authentication
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the API at cfg.BaseURL. A zero cfg.Timeout
// leaves the transport default in place.
func NewClient(cfg models.MailblinkerConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Name() string {
	return "mailblinker"
}

type addressRequest struct {
	Email string `json:"email"`
}

type createResponse struct {
	Email flexString `json:"email"`
}

type messagesResponse struct {
	Messages []messagePayload `json:"messages"`
}

type messagePayload struct {
	Subject flexString `json:"subject"`
	Body    flexString `json:"body"`
	From    flexString `json:"from"`
}

type otpOrLinkResponse struct {
	OTP  flexString `json:"otp"`
	Link flexString `json:"link"`
}

// CreateAddress asks the API for a new address
func (c *Client) CreateAddress(ctx context.Context) (string, error) {
	var resp createResponse
	if err := c.post(ctx, createMailPath, nil, &resp); err != nil {
		return "", provider.Wrap("create-mail", err)
	}

	address := strings.TrimSpace(string(resp.Email))
	if address == "" {
		return "", provider.Wrap("create-mail", provider.ErrNoAddress)
	}

	logging.Log.WithField("provider", c.Name()).Infof("Created address %s", address)
	return address, nil
}

// ListMessages returns every message the API holds for address
func (c *Client) ListMessages(ctx context.Context, address string) ([]models.Message, error) {
	var resp messagesResponse
	if err := c.post(ctx, messagesPath, addressRequest{Email: address}, &resp); err != nil {
		return nil, provider.Wrap("messages", err)
	}

	messages := make([]models.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, models.Message{
			Subject: string(m.Subject),
			Body:    string(m.Body),
			From:    string(m.From),
		})
	}
	return messages, nil
}

// LatestCodeOrLink returns the code or link the API detected in the latest unread message
func (c *Client) LatestCodeOrLink(ctx context.Context, address string) (models.CodeResult, error) {
	var resp otpOrLinkResponse
	if err := c.post(ctx, otpOrLinkPath, addressRequest{Email: address}, &resp); err != nil {
		return models.CodeResult{}, provider.Wrap("last-unread-otp-or-link", err)
	}

	switch {
	case resp.OTP != "":
		return models.CodeResult{Kind: models.CodeOTP, Value: string(resp.OTP)}, nil
	case resp.Link != "":
		return models.CodeResult{Kind: models.CodeLink, Value: string(resp.Link)}, nil
	default:
		return models.CodeResult{Kind: models.CodeUnknown}, nil
	}
}

// post sends body as JSON (or nothing when body is nil) and decodes the JSON answer into result
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// flexString accepts a JSON string, number or null
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

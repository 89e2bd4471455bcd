// Package whatsapp is a minimal client for the WhatsApp message API used to
// deliver COD verification codes.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const sendTimeout = 5 * time.Second

// Client sends templated text messages through a WhatsApp gateway.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

// NewClient returns a client for the given gateway. An empty apiURL produces
// a client whose sends are silent no-ops, mirroring how notification
// integrations behave when unconfigured.
func NewClient(apiURL, token string) *Client {
	return &Client{
		apiURL:     apiURL,
		token:      token,
		httpClient: &http.Client{Timeout: sendTimeout},
	}
}

// Configured reports whether the client has a gateway to talk to.
func (c *Client) Configured() bool {
	return c.apiURL != ""
}

type sendRequest struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendMessage delivers a text message to the given phone number.
func (c *Client) SendMessage(ctx context.Context, to, message string) error {
	if c.apiURL == "" {
		return nil
	}

	var payload sendRequest
	payload.To = to
	payload.Type = "text"
	payload.Text.Body = message

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send message: status %d", resp.StatusCode)
	}
	return nil
}

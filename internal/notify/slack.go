// Package notify delivers run outcomes to a Slack incoming webhook. All
// delivery is best-effort: a notification failure is logged and never fails
// the run that produced it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vk/terrapatch/internal/ctxlog"
)

const (
	defaultUsername = "Terraform Bot"
	defaultIcon     = ":terraform:"
	sendTimeout     = 10 * time.Second
)

// Client posts webhook notifications. A client with an empty webhook URL is
// valid and silently drops every message, so callers never need to branch
// on whether notifications are configured.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// New creates a Client for the given webhook URL; empty disables delivery.
func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: sendTimeout},
	}
}

// Enabled reports whether notifications will actually be delivered.
func (c *Client) Enabled() bool {
	return c != nil && c.webhookURL != ""
}

// Message is a Slack webhook payload. Text is the fallback for clients that
// do not render blocks.
type Message struct {
	Text      string  `json:"text"`
	Username  string  `json:"username,omitempty"`
	IconEmoji string  `json:"icon_emoji,omitempty"`
	Channel   string  `json:"channel,omitempty"`
	Blocks    []Block `json:"blocks,omitempty"`
}

// Block is one element of Slack's block layout.
type Block struct {
	Type string     `json:"type"`
	Text *BlockText `json:"text,omitempty"`
}

// BlockText is the text payload of a section block.
type BlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func section(text string) Block {
	return Block{Type: "section", Text: &BlockText{Type: "mrkdwn", Text: text}}
}

func divider() Block {
	return Block{Type: "divider"}
}

// Send posts one message to the webhook. Errors are returned for the
// builders to log; they are never fatal.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.Enabled() {
		ctxlog.FromContext(ctx).Debug("notifications disabled, dropping message")
		return nil
	}
	if msg.Username == "" {
		msg.Username = defaultUsername
	}
	if msg.IconEmoji == "" {
		msg.IconEmoji = defaultIcon
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification rejected: %d %s", resp.StatusCode, string(body))
	}
	return nil
}

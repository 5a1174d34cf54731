// Package client talks to a torusd intent mirror over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/torus/internal/session"
)

// StateView mirrors GET /api/run-torus.
type StateView struct {
	GameState session.State `json:"game_state"`
	Message   string        `json:"message"`
}

// Client sends intents to the mirror and reads its state.
type Client struct {
	BaseURL    string
	ControlKey string
	HTTPClient *http.Client
}

// New creates a Client targeting the given API base URL.
func New(baseURL, controlKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		ControlKey: controlKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts an intent and returns the mirror's envelope. A success=false
// envelope is not an error; only transport and HTTP failures are.
func (c *Client) Send(ctx context.Context, in session.Intent) (*session.Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/run-torus", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ControlKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.ControlKey)
	}

	var out session.Response
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("POST intent: %w", err)
	}
	return &out, nil
}

// State fetches the mirrored session.
func (c *Client) State(ctx context.Context) (*StateView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/run-torus", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var out StateView
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("GET state: %w", err)
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, into any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	if err := json.Unmarshal(respBody, into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

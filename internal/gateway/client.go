// Package gateway is the HTTP client for the chat backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmaren/registra/internal/chat"
)

// Client talks to the chat backend. One request per turn, no retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

type chatResponse struct {
	Response             string `json:"response"`
	ConversationID       string `json:"conversation_id,omitempty"`
	Confirmed            bool   `json:"confirmed,omitempty"`
	AwaitingConfirmation bool   `json:"awaiting_confirmation,omitempty"`
}

// Send posts one user message. An empty conversationID is sent as JSON null,
// telling the backend to open a new conversation.
func (c *Client) Send(ctx context.Context, message, conversationID string) (*chat.Reply, error) {
	reqBody := chatRequest{Message: message}
	if conversationID != "" {
		reqBody.ConversationID = &conversationID
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}

	return &chat.Reply{
		Response:             out.Response,
		ConversationID:       out.ConversationID,
		Confirmed:            out.Confirmed,
		AwaitingConfirmation: out.AwaitingConfirmation,
	}, nil
}

// ConversationState mirrors the backend's debug state dump.
type ConversationState struct {
	ConversationID string         `json:"conversation_id"`
	State          map[string]any `json:"state"`
	AskingFor      string         `json:"asking_for,omitempty"`
	Missing        []string       `json:"missing"`
	IsComplete     bool           `json:"is_complete"`
}

// State fetches the accumulated slot state of a conversation.
func (c *Client) State(ctx context.Context, conversationID string) (*ConversationState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat/"+conversationID+"/state", nil)
	if err != nil {
		return nil, fmt.Errorf("build state request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("state returned %d", resp.StatusCode)
	}

	var out ConversationState
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &out, nil
}

// Clear drops a conversation on the backend.
func (c *Client) Clear(ctx context.Context, conversationID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/chat/"+conversationID, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete returned %d", resp.StatusCode)
	}
	return nil
}

// Health checks the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

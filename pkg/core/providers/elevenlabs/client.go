// Package elevenlabs wraps the ElevenLabs conversational-agent and
// text-to-speech APIs behind the narrow surface the gateway needs.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

const (
	defaultBaseURL   = "https://api.elevenlabs.io"
	defaultWSBaseURL = "wss://api.elevenlabs.io/v1/convai/conversation"
	defaultTTSModel  = "eleven_multilingual_v2"
)

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	wsBaseURL  string

	relays *relayPool
}

func New(apiKey string) *Client {
	return NewWithClient(apiKey, nil)
}

func NewWithClient(apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: client,
		baseURL:    defaultBaseURL,
		wsBaseURL:  defaultWSBaseURL,
	}
	c.relays = newRelayPool(c)
	return c
}

// WithBaseURL overrides the REST endpoint, for tests.
func (c *Client) WithBaseURL(base string) *Client {
	base = strings.TrimSpace(base)
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// WithWSBaseURL overrides the websocket endpoint, for tests.
func (c *Client) WithWSBaseURL(base string) *Client {
	base = strings.TrimSpace(base)
	if base != "" {
		c.wsBaseURL = base
	}
	return c
}

func (c *Client) Name() string {
	return "elevenlabs"
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Verify makes a cheap whoami call to confirm the credential is accepted.
func (c *Client) Verify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/user", nil)
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("credential rejected (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whoami failed (status %d)", resp.StatusCode)
	}
	return nil
}

// CreateConversation registers a remote conversation for the agent and
// returns the provider's conversation id.
func (c *Client) CreateConversation(ctx context.Context, agentID, voiceID string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"agent_id": agentID,
		"voice_id": voiceID,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/convai/conversations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("create conversation failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode create conversation response: %w", err)
	}
	if out.ConversationID == "" {
		return "", fmt.Errorf("create conversation response missing conversation_id")
	}
	return out.ConversationID, nil
}

// Relay forwards one audio chunk over the conversation's websocket channel.
func (c *Client) Relay(ctx context.Context, conversationID string, audio []byte, mimeType string) error {
	return c.relays.send(ctx, conversationID, audio)
}

// Transcript fetches the message log of a remote conversation and maps it to
// transcript turns. The provider attributes agent speech to "agent"; that
// becomes the assistant role.
func (c *Client) Transcript(ctx context.Context, conversationID string) ([]types.Turn, error) {
	u := c.baseURL + "/v1/convai/conversations/" + url.PathEscape(conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("transcript fetch failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Transcript []struct {
			Role      string `json:"role"`
			Speaker   string `json:"speaker"`
			Message   string `json:"message"`
			Text      string `json:"text"`
			Timestamp string `json:"timestamp"`
		} `json:"transcript"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}

	turns := make([]types.Turn, 0, len(out.Transcript))
	for _, msg := range out.Transcript {
		content := msg.Message
		if content == "" {
			content = msg.Text
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		role := types.RoleUser
		if msg.Role == "agent" || msg.Role == "assistant" || msg.Speaker == "agent" {
			role = types.RoleAssistant
		}
		ts := msg.Timestamp
		if ts == "" {
			ts = time.Now().UTC().Format(time.RFC3339)
		}
		turns = append(turns, types.Turn{Role: role, Content: content, Timestamp: ts})
	}
	return turns, nil
}

// Close tears down any open relay channels.
func (c *Client) Close() error {
	c.relays.closeAll()
	return nil
}

// Package openai is a minimal chat-completions client: the gateway uses it
// for coach replies and for provider-generated study material.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
)

// Message is one chat message in OpenAI wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func New(apiKey string) *Client {
	return NewWithClient(apiKey, nil)
}

func NewWithClient(apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: client,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (c *Client) WithBaseURL(base string) *Client {
	base = strings.TrimSpace(base)
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// WithModel overrides the default model.
func (c *Client) WithModel(model string) *Client {
	model = strings.TrimSpace(model)
	if model != "" {
		c.model = model
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Chat sends a system prompt plus conversation history and returns the
// assistant reply.
func (c *Client) Chat(ctx context.Context, system string, messages []Message) (string, error) {
	all := make([]Message, 0, len(messages)+1)
	if system != "" {
		all = append(all, Message{Role: "system", Content: system})
	}
	all = append(all, messages...)

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"messages":    all,
		"temperature": 0.7,
		"max_tokens":  500,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", c.parseError(resp)
	}

	var out struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("response held no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Complete satisfies study.TextGenerator: one system prompt, one user
// message, one reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	return c.Chat(ctx, system, []Message{{Role: "user", Content: user}})
}

func (c *Client) parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("openai api error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("openai api error (status %d)", resp.StatusCode)
}

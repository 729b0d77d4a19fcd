package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Fallback is returned to riders when the upstream completion fails.
const Fallback = "Sorry, I'm having trouble answering right now. Please try again in a moment."

// Message is one turn of a conversation. Role is "system", "user", or
// "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options configure the client. Every value is injected; the client never
// reads the environment.
type Options struct {
	BaseURL      string
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float64
	HistoryLimit int
	Timeout      time.Duration
}

// Client calls an OpenAI-compatible chat completion endpoint, grounding
// replies in the FAQ knowledge base. Conversations are stateless: the
// caller supplies any history it wants considered on each call.
type Client struct {
	opts   Options
	faq    *FAQ
	http   *http.Client
	logger *slog.Logger
}

func NewClient(opts Options, faq *FAQ, logger *slog.Logger) *Client {
	return &Client{
		opts:   opts,
		faq:    faq,
		http:   &http.Client{Timeout: opts.Timeout},
		logger: logger,
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Respond answers the prompt. History older than the configured limit is
// dropped before sending.
func (c *Client) Respond(ctx context.Context, history []Message, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	messages := c.assemble(history, prompt)

	body, err := json.Marshal(completionRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	reply, retryable, err := c.complete(ctx, body)
	if err != nil && retryable {
		// One retry covers transient upstream failures. Client errors
		// (4xx) and malformed replies fail immediately.
		c.logger.Warn("completion failed, retrying", "error", err)
		reply, _, err = c.complete(ctx, body)
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

// assemble builds the message list: grounding system prompt, capped
// history, then the new prompt.
func (c *Client) assemble(history []Message, prompt string) []Message {
	var messages []Message
	if sys := c.faq.Context(); sys != "" {
		messages = append(messages, Message{Role: "system", Content: sys})
	}

	if limit := c.opts.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	messages = append(messages, history...)

	return append(messages, Message{Role: "user", Content: prompt})
}

// complete performs one upstream call. retryable reports whether the
// failure is transient (transport error or 5xx status).
func (c *Client) complete(ctx context.Context, body []byte) (reply string, retryable bool, err error) {
	url := strings.TrimSuffix(c.opts.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("completion returned status %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", false, fmt.Errorf("completion returned no choices")
	}
	return out.Choices[0].Message.Content, false, nil
}

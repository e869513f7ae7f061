// Package suggest streams AI-generated feedback message suggestions from a
// chat completion API.
package suggest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jon4hz/whispr/internal/config"
)

// Prompt asks the model for three pipe-separated positive feedback messages.
const Prompt = `Generate three positive feedback messages for a user, ensuring that each message is encouraging and uplifting. The messages should not contain any abusive, demotivating, self-down, or negative words. Each message should include positive language and may include motivational sentiments. Separate each message with a pipe (|)."

Example Output: "Your contributions are truly valuable and make a difference! | Keep up the great work; your efforts are inspiring! | You have a wonderful ability to uplift those around you; continue shining bright!`

// Client represents a chat completion API client.
type Client struct {
	cfg    *config.SuggestConfig
	client *http.Client
}

// New creates a new suggestion client.
func New(cfg *config.SuggestConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled reports whether suggestions are configured.
func (c *Client) Enabled() bool {
	return c.cfg != nil && c.cfg.Enabled
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Message struct {
			Content struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"message"`
	} `json:"delta"`
}

// Stream requests a completion and calls emit for every text chunk as it
// arrives. The upstream connection is closed as soon as ctx is cancelled or
// emit returns an error.
func (c *Client) Stream(ctx context.Context, emit func(text string) error) error {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: Prompt},
		},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/v2/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to request completion: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(b))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return fmt.Errorf("failed to decode stream event: %w", err)
		}
		if event.Type != "content-delta" {
			continue
		}
		if text := event.Delta.Message.Content.Text; text != "" {
			if err := emit(text); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read completion stream: %w", err)
	}
	return nil
}

// Package llm streams contract prose from the Anthropic Messages API and
// relays only the text deltas to the caller.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"deedflow/internal/common/config"
	stderrors "deedflow/internal/common/errors"
	"deedflow/internal/common/logger"
)

const (
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
)

type Client struct {
	cfg    config.AnthropicConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg config.AnthropicConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		// No client-level timeout: a healthy stream can legitimately run for
		// minutes. The context deadline is the bound.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "llm"}),
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Stream    bool      `json:"stream"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamEvent covers the subset of SSE payloads the relay inspects. Control
// events (message_start, content_block_stop, ping, message_stop) carry no
// text and are consumed without forwarding.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// StreamCompletion POSTs a streaming completion request and copies each text
// delta to w in arrival order, flushing after every write when w supports it.
// If the upstream call is rejected, a typed error is returned before any byte
// reaches w. An error after streaming began is returned so the caller can
// terminate the response abnormally instead of passing off truncated output
// as success.
func (c *Client) StreamCompletion(ctx context.Context, system, prompt string, w io.Writer) error {
	body, err := json.Marshal(messageRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    system,
		Stream:    true,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return stderrors.NewLLMStreamBroken(err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(c.cfg.Timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return stderrors.NewLLMStreamBroken(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return stderrors.NewLLMStreamFailed(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("completion request rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(respBody),
		})
		return stderrors.NewLLMStreamFailed(resp.StatusCode, string(respBody))
	}

	flusher, _ := w.(http.Flusher)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Unknown frames are control noise, not payload.
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type != "text_delta" {
				continue
			}
			if _, err := io.WriteString(w, event.Delta.Text); err != nil {
				return stderrors.NewLLMStreamBroken(err)
			}
			if flusher != nil {
				flusher.Flush()
			}
		case "message_stop":
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return stderrors.NewLLMStreamBroken(err)
	}

	// Body ended without a message_stop frame. Treat as success only when the
	// context is still live; a dead context means the stream was cut.
	if ctx.Err() != nil {
		return stderrors.NewLLMStreamBroken(ctx.Err())
	}
	return nil
}

// WithHTTPClient overrides the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

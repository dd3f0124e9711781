// Package inference sends non-streaming chat completion requests to an
// OpenAI-compatible provider. There is exactly one attempt per request: no
// retries, no local recovery; transport failures propagate to the caller.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/af-corp/nutrigate/internal/config"
	"github.com/af-corp/nutrigate/internal/types"
)

// Client is the handle to the external LLM. Construct it once in main and
// inject it into handlers; it is read-only after construction and safe for
// concurrent use.
type Client struct {
	cfg        func() config.InferenceConfig
	httpClient *http.Client
}

// Usage reports provider token accounting for a single completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func NewClient(cfg func() config.InferenceConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Complete sends one chat completion with a system instruction and multimodal
// user content. It returns the first choice's text content, or "" when the
// provider returns no choices.
func (c *Client) Complete(ctx context.Context, system string, user []types.ContentPart, temperature float64) (string, Usage, error) {
	cfg := c.cfg()

	body := chatRequestBody{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshal chat request: %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	url := cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", Usage{}, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", Usage{}, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponseBody
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", Usage{}, fmt.Errorf("unmarshal chat response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", parsed.Usage, nil
	}
	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}

type chatRequestBody struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// chatMessage content is a plain string for the system role and a part list
// for the user role.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponseBody struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

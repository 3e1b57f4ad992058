// Package llm provides thin JSON-over-HTTP clients for the external
// embedding and chat-completion services. Requests are not retried;
// transport failures propagate to the caller.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClientConfig represents the configuration for one service endpoint.
type ClientConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration // Default: 30 seconds
}

// Client talks to one OpenAI-compatible endpoint.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

// NewClient creates a new client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     config.APIURL,
		apiKey:     config.APIKey,
		model:      config.Model,
	}
}

// Embeddings requests vectors for the given inputs in one call and returns
// them together with the reported token usage.
func (c *Client) Embeddings(ctx context.Context, texts []string) ([][]float32, int, error) {
	payload := map[string]any{
		"model":           c.model,
		"input":           texts,
		"encoding_format": "float",
	}
	body, err := c.postJSON(ctx, payload)
	if err != nil {
		return nil, 0, err
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, 0, fmt.Errorf("embedding count mismatch: sent %d inputs, got %d vectors", len(texts), len(parsed.Data))
	}

	vectors := make([][]float32, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		vectors = append(vectors, item.Embedding)
	}
	return vectors, parsed.Usage.TotalTokens, nil
}

// ChatCompletion submits the messages and returns the content of the first
// choice.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	body, err := c.postJSON(ctx, payload)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) postJSON(ctx context.Context, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

package generative

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
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 4096
	apiVersion       = "2023-06-01"
)

// HTTPClient talks to an Anthropic-style messages API.
type HTTPClient struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

var _ Client = (*HTTPClient)(nil)

// HTTPOption customizes an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) HTTPOption {
	return func(c *HTTPClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithModel overrides the model identifier.
func WithModel(model string) HTTPOption {
	return func(c *HTTPClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTP injects an alternate http.Client (tests).
func WithHTTP(httpClient *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// NewHTTPClient builds a client for the hosted messages API.
func NewHTTPClient(apiKey string, opts ...HTTPOption) (*HTTPClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("generative: api key is required")
	}
	client := &HTTPClient{
		endpoint: defaultEndpoint,
		model:    defaultModel,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature,omitempty"`
	System      string       `json:"system,omitempty"`
	Tools       []apiTool    `json:"tools,omitempty"`
	Messages    []apiMessage `json:"messages"`
}

type apiTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Generate performs one messages call and flattens the content blocks
// into a Response.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	payload := apiRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    []apiMessage{{Role: "user", Content: req.Prompt}},
	}
	for _, tool := range req.Tools {
		payload.Tools = append(payload.Tools, apiTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("generative: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("generative: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("generative: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Response{}, fmt.Errorf("generative: api error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Response{}, fmt.Errorf("generative: decode response: %w", err)
	}

	result := Response{}
	var text strings.Builder
	for _, block := range decoded.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if block.Name == "" {
				continue
			}
			if result.ToolInputs == nil {
				result.ToolInputs = map[string]json.RawMessage{}
			}
			result.ToolInputs[block.Name] = block.Input
		}
	}
	result.Text = text.String()
	return result, nil
}

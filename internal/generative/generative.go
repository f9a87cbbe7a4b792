// Package generative abstracts the model backend agents delegate to.
// The newsroom core treats it as a black box: send a prompt and an
// optional declarative output schema, get back free text or named
// structured payloads, possibly an error. Callers own timeout and
// cancellation policy via the context they pass in.
package generative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Tool declares one structured output the model may emit.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Request is a single generation call.
type Request struct {
	System      string
	Prompt      string
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// Response carries whatever the backend produced: free text, structured
// tool payloads keyed by tool name, or both. Any subset of the requested
// tools may be absent; absence means the model raised nothing there.
type Response struct {
	Text       string
	ToolInputs map[string]json.RawMessage
}

// Tool decodes the named tool payload into out. The boolean reports
// whether the tool was present at all.
func (r Response) Tool(name string, out any) (bool, error) {
	raw, ok := r.ToolInputs[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("generative: decode tool %s: %w", name, err)
	}
	return true, nil
}

// Client is implemented by every generation backend.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// ClientFunc adapts a function into a Client. Handy for tests.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

// Generate executes f.
func (f ClientFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// DecodeFencedJSON extracts a ```json fenced block (or, failing that, the
// whole text) and unmarshals it into out. Models wrap structured answers
// in fences often enough that callers should not assume bare JSON.
func DecodeFencedJSON(text string, out any) error {
	candidate := text
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			candidate = rest[:end]
		}
	}
	candidate = strings.TrimSpace(candidate)
	if err := json.Unmarshal([]byte(candidate), out); err != nil {
		return fmt.Errorf("generative: decode json payload: %w", err)
	}
	return nil
}

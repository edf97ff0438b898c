// Package model defines the language-model gateway abstraction used by the
// router and the media resolver. A gateway performs one synchronous
// generation per call; retry, backoff and per-attempt timeouts live in the
// resilience layer, never here. Provider adapters (anthropic, openai,
// google) translate between CouchBot messages and vendor formats.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchbot/couchbot/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by handlers.
type Request struct {
	System      string           `json:"system,omitempty"` // System / persona instructions
	Messages    []core.Message   `json:"messages"`         // Conversation history, oldest first
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int64            `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
}

// Info contains metadata about a gateway implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "google", ...
}

// Gateway is the minimal interface handlers use to drive generation. One
// call produces one assistant message; structured outputs (classification
// categories, parsed selections) come back as compact machine-parseable
// text inside the message content.
type Gateway interface {
	Invoke(ctx context.Context, req Request) (core.Message, error)

	// Info returns information about the gateway implementation.
	Info() Info
}

// MockGateway is a lightweight in-memory Gateway useful for tests and
// examples. Responses are keyed by the latest user message text; unmatched
// prompts get a deterministic echo. It records every request for
// call-count assertions.
type MockGateway struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	requests  []Request
}

// NewMockGateway constructs a MockGateway.
func NewMockGateway(name, provider string) *MockGateway {
	return &MockGateway{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockGateway) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// CallCount returns the number of Invoke calls observed.
func (m *MockGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of all observed requests.
func (m *MockGateway) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Invoke implements Gateway.
func (m *MockGateway) Invoke(ctx context.Context, req Request) (core.Message, error) {
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	var input string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			input = req.Messages[i].Content
			break
		}
	}
	reply, ok := m.responses[input]
	if !ok {
		reply = fmt.Sprintf("Mock response to: %s", input)
	}
	return core.NewAssistantMessage(reply), nil
}

// Info implements Gateway.
func (m *MockGateway) Info() Info { return m.info }

package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message authored by the language model.
	RoleAssistant Role = "assistant"
	// RoleSystem marks persona / instruction messages.
	RoleSystem Role = "system"
	// RoleTool marks the result of a tool execution requested by the model.
	RoleTool Role = "tool"
)

// SystemPromptID is the fixed sentinel identity of the persona system
// message. Prompt injection keys on this id so repeated turns never stack a
// second persona at the head of the history.
const SystemPromptID = "couchbot-system-prompt"

// TokenUsage captures token accounting reported by a model provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolCallRecord describes a tool invocation requested by the model within
// an assistant message. Arguments is the provider-serialized JSON payload.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// Message is the primary unit of conversation. After construction it should
// be treated as immutable: the orchestration core never rewrites identity or
// content, it only appends new messages to a history.
//
// Content may be empty for assistant messages that carry only tool calls.
// ToolCallID back-references the originating ToolCallRecord on RoleTool
// messages. Timestamp is UTC.
type Message struct {
	ID         string           `json:"id"`
	Role       Role             `json:"role"`
	Content    string           `json:"content"`
	Usage      *TokenUsage      `json:"usage,omitempty"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewID generates a new unique identifier for messages.
func NewID() string { return uuid.NewString() }

func newMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(content string) Message { return newMessage(RoleUser, content) }

// NewAssistantMessage creates an assistant-authored text message.
func NewAssistantMessage(content string) Message { return newMessage(RoleAssistant, content) }

// NewSystemMessage creates a system message carrying the fixed persona
// sentinel id so it can be recognized (and deduplicated) later.
func NewSystemMessage(content string) Message {
	m := newMessage(RoleSystem, content)
	m.ID = SystemPromptID
	return m
}

// NewToolResultMessage records the outcome of a tool call. The result is
// stored as plain text content; err, when non-nil, replaces the content with
// its message so the model sees the failure.
func NewToolResultMessage(toolCallID, result string, err error) Message {
	m := newMessage(RoleTool, result)
	m.ToolCallID = toolCallID
	if err != nil {
		m.Content = "error: " + err.Error()
	}
	return m
}

// HasToolCalls reports whether the message requests tool execution.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// IsSystemPrompt reports whether the message is the injected persona prompt.
func (m Message) IsSystemPrompt() bool { return m.Role == RoleSystem && m.ID == SystemPromptID }

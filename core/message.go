package core

import (
	"strings"

	"github.com/google/uuid"
)

// Conversation roles. Tool results use RoleTool; RoleSystem is reserved for
// the rendered system prompt and never persisted in conversation state.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// Part represents a polymorphic segment of role-based message content.
// Concrete part types implement the unexported isPart marker enabling a
// closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// ToolCall describes a model-requested invocation of a named tool.
type ToolCall struct {
	ID        string `json:"id"`                  // Pairing identifier echoed by the ToolResult
	Name      string `json:"name"`                // Registered tool name
	Arguments string `json:"arguments,omitempty"` // Serialized argument payload (JSON)
}

// ToolCallPart wraps a ToolCall as a content part of an assistant message.
type ToolCallPart struct {
	ToolCall ToolCall
	Metadata map[string]any
}

// isPart implements the Part interface for ToolCallPart.
func (ToolCallPart) isPart() {}

// ToolResult describes the outcome of a previously requested tool call.
// Pairing with the originating ToolCall is by ID, not position.
type ToolResult struct {
	ID      string `json:"id"`                // Matches the originating ToolCall ID
	Name    string `json:"name"`              // Tool name
	Content any    `json:"content,omitempty"` // Successful result (any JSON-serializable shape)
	Error   string `json:"error,omitempty"`   // Populated on failure
}

// ToolResultPart wraps a ToolResult as a content part of a tool message.
type ToolResultPart struct {
	ToolResult ToolResult
	Metadata   map[string]any
}

// isPart implements the Part interface for ToolResultPart.
func (ToolResultPart) isPart() {}

// Message is one conversational turn element: a role plus ordered
// heterogeneous parts. Assistant messages may carry ToolCallParts; tool
// messages carry exactly one ToolResultPart answering a pending call from
// the immediately preceding assistant message.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewUserMessage creates a user message with a single text part.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantMessage creates an assistant message with a single text part.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{TextPart{Text: text}}}
}

// NewSystemMessage creates a system message with a single text part.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Parts: []Part{TextPart{Text: text}}}
}

// NewToolResultMessage records the completion result (or error) of a tool
// call. If err is non-nil its message is copied into the result's Error field.
func NewToolResultMessage(callID, toolName string, content any, err error) Message {
	tr := ToolResult{ID: callID, Name: toolName, Content: content}
	if err != nil {
		tr.Error = err.Error()
	}
	return Message{Role: RoleTool, Parts: []Part{ToolResultPart{ToolResult: tr}}}
}

// Text flattens all text parts of the message preserving order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// ToolCalls returns any ToolCall parts contained within the message
// preserving their original order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range m.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.ToolCall)
		}
	}
	return calls
}

// ToolResults returns any ToolResult parts contained within the message
// preserving their original order.
func (m Message) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range m.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.ToolResult)
		}
	}
	return results
}

// NewID generates a unique identifier for tool calls, checkpoints and
// background tasks.
func NewID() string { return uuid.NewString() }

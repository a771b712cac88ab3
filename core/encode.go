package core

import (
	"encoding/json"
	"fmt"
)

// Wire format for parts. Persistence backends serialize ConversationState as
// JSON, so the polymorphic Part set needs an explicit discriminator.
const (
	partKindText       = "text"
	partKindToolCall   = "tool_call"
	partKindToolResult = "tool_result"
)

type wirePart struct {
	Kind       string         `json:"kind"`
	Text       string         `json:"text,omitempty"`
	ToolCall   *ToolCall      `json:"tool_call,omitempty"`
	ToolResult *ToolResult    `json:"tool_result,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type wireMessage struct {
	Role  string     `json:"role"`
	Parts []wirePart `json:"parts"`
}

// MarshalJSON encodes the message with a kind discriminator per part.
func (m Message) MarshalJSON() ([]byte, error) {
	wm := wireMessage{Role: m.Role, Parts: make([]wirePart, 0, len(m.Parts))}
	for _, p := range m.Parts {
		switch part := p.(type) {
		case TextPart:
			wm.Parts = append(wm.Parts, wirePart{Kind: partKindText, Text: part.Text, Metadata: part.Metadata})
		case ToolCallPart:
			tc := part.ToolCall
			wm.Parts = append(wm.Parts, wirePart{Kind: partKindToolCall, ToolCall: &tc, Metadata: part.Metadata})
		case ToolResultPart:
			tr := part.ToolResult
			wm.Parts = append(wm.Parts, wirePart{Kind: partKindToolResult, ToolResult: &tr, Metadata: part.Metadata})
		default:
			return nil, fmt.Errorf("unsupported part type %T", p)
		}
	}
	return json.Marshal(wm)
}

// UnmarshalJSON decodes the discriminated wire format back into parts.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wm wireMessage
	if err := json.Unmarshal(data, &wm); err != nil {
		return err
	}
	m.Role = wm.Role
	m.Parts = make([]Part, 0, len(wm.Parts))
	for _, wp := range wm.Parts {
		switch wp.Kind {
		case partKindText:
			m.Parts = append(m.Parts, TextPart{Text: wp.Text, Metadata: wp.Metadata})
		case partKindToolCall:
			if wp.ToolCall == nil {
				return fmt.Errorf("tool_call part missing payload")
			}
			m.Parts = append(m.Parts, ToolCallPart{ToolCall: *wp.ToolCall, Metadata: wp.Metadata})
		case partKindToolResult:
			if wp.ToolResult == nil {
				return fmt.Errorf("tool_result part missing payload")
			}
			m.Parts = append(m.Parts, ToolResultPart{ToolResult: *wp.ToolResult, Metadata: wp.Metadata})
		default:
			return fmt.Errorf("unknown part kind %q", wp.Kind)
		}
	}
	return nil
}

package engine

import (
	"encoding/json"
	"fmt"

	"github.com/parley-ai/parley/core"
)

// assembleMessages converts internal conversation state into the public
// transcript shape: user and assistant turns only, tool plumbing and empty
// messages dropped, multi-part text flattened.
func assembleMessages(msgs []core.Message) []core.ChatMessage {
	out := make([]core.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role != core.RoleUser && m.Role != core.RoleAssistant {
			continue
		}
		text := m.Text()
		if text == "" {
			continue
		}
		out = append(out, core.ChatMessage{Role: m.Role, Content: text})
	}
	return out
}

// normalizeTranscript flattens the full conversation, tool turns included,
// into role/content pairs for memory extraction. Tool results are rendered
// as their JSON content so extracted facts can reference what a tool
// actually returned.
func normalizeTranscript(msgs []core.Message) []core.ChatMessage {
	out := make([]core.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case core.RoleUser, core.RoleAssistant, core.RoleSystem:
			if text := m.Text(); text != "" {
				out = append(out, core.ChatMessage{Role: m.Role, Content: text})
			}
		case core.RoleTool:
			for _, res := range m.ToolResults() {
				out = append(out, core.ChatMessage{Role: m.Role, Content: renderToolResult(res)})
			}
		}
	}
	return out
}

func renderToolResult(res core.ToolResult) string {
	if res.Error != "" {
		return fmt.Sprintf("%s error: %s", res.Name, res.Error)
	}
	raw, err := json.Marshal(res.Content)
	if err != nil {
		return fmt.Sprintf("%s: %v", res.Name, res.Content)
	}
	return fmt.Sprintf("%s: %s", res.Name, raw)
}

package engine

import (
	"context"
	"strings"
	"time"

	"github.com/parley-ai/parley/internal/util"
)

const defaultSystemPrompt = `You are a helpful AI assistant.

Current date: {{.CurrentDate}}

Here is some relevant long-term memory about this user:
{{.LongTermMemory}}`

const noMemoryPlaceholder = "No relevant memory found."

// renderSystemPrompt renders the system prompt template for one chat step.
// An empty memory block renders as an explicit placeholder so the model is
// told the lookup happened and came back empty.
func (e *Engine) renderSystemPrompt(longTermMemory string) string {
	if longTermMemory == "" {
		longTermMemory = noMemoryPlaceholder
	}

	out, err := util.RenderTemplate(e.systemPrompt, map[string]any{
		"LongTermMemory": longTermMemory,
		"CurrentDate":    time.Now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		e.logger.Warn("system prompt template failed, using raw prompt", "error", err)
		return e.systemPrompt
	}
	return out
}

// relevantMemory queries the memory service for facts matching the user's
// latest input and renders them as a bullet list. Retrieval is best effort:
// any failure is logged and the turn proceeds without memory.
func (e *Engine) relevantMemory(ctx context.Context, userID, query string) string {
	if e.memory == nil || userID == "" {
		return ""
	}

	hits, err := e.memory.Search(ctx, userID, query)
	if err != nil {
		e.logger.Error("long-term memory retrieval failed",
			"user_id", userID,
			"error", err,
		)
		return ""
	}
	if e.memoryLimit > 0 && len(hits) > e.memoryLimit {
		hits = hits[:e.memoryLimit]
	}

	lines := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Memory == "" {
			continue
		}
		lines = append(lines, "* "+hit.Memory)
	}
	return strings.Join(lines, "\n")
}

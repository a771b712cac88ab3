package core

import "context"

// ChatMessage is the externally visible reply shape produced by the response
// assembler: a flat role + text pair with system and tool turns excluded.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CheckpointStore persists conversation state snapshots keyed by session
// identifier with last-write-wins resolution per session. Implementations
// must be safe for concurrent use across sessions.
type CheckpointStore interface {
	// Latest returns the most recently appended state for the session, or
	// (nil, nil) when the session has no checkpoints yet.
	Latest(ctx context.Context, sessionID string) (*ConversationState, error)

	// Append stores a new snapshot for the session.
	Append(ctx context.Context, sessionID string, state *ConversationState) error

	// DeleteAll removes every checkpoint and write-log record for the
	// session, returning the respective counts. Zero deleted is a valid
	// success, not an error.
	DeleteAll(ctx context.Context, sessionID string) (checkpoints, writes int, err error)
}

// MemoryHit is one ranked long-term memory retrieval result.
type MemoryHit struct {
	ID       string         `json:"id"`
	Memory   string         `json:"memory"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MemoryService provides cross-session, user-scoped semantic memory. The
// engine treats it as best-effort: retrieval failures degrade to an empty
// context and update failures are logged, never surfaced.
type MemoryService interface {
	// Search returns facts relevant to the query for the given user.
	Search(ctx context.Context, userID, query string) ([]MemoryHit, error)

	// Add submits a finalized turn transcript plus metadata for fact
	// extraction and storage. Retry policy, if any, belongs to the service.
	Add(ctx context.Context, msgs []ChatMessage, userID string, metadata map[string]string) error
}

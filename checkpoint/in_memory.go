package checkpoint

import (
	"context"
	"sync"
	"time"

	"github.com/parley-ai/parley/core"
)

// writeRecord is one entry in the per-session write log. The store keeps the
// log alongside snapshots so DeleteAll can report both counts the way the
// durable backends do.
type writeRecord struct {
	CheckpointID string
	CreatedAt    time.Time
}

// InMemoryStore is a volatile CheckpointStore keeping per-session snapshot
// lists in a process local map. It is safe for concurrent access and suited
// for tests, demos and the production degraded mode where the durable
// backend is unreachable. Snapshots are cloned on the way in and out to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]*core.ConversationState
	writes      map[string][]writeRecord
}

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		checkpoints: make(map[string][]*core.ConversationState),
		writes:      make(map[string][]writeRecord),
	}
}

// Latest returns a clone of the most recently appended snapshot, or
// (nil, nil) when the session has none. Last write wins per session.
func (s *InMemoryStore) Latest(_ context.Context, sessionID string) (*core.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := s.checkpoints[sessionID]
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[len(snaps)-1].Clone(), nil
}

// Append stores a clone of the snapshot and records a write-log entry.
func (s *InMemoryStore) Append(_ context.Context, sessionID string, state *core.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[sessionID] = append(s.checkpoints[sessionID], state.Clone())
	s.writes[sessionID] = append(s.writes[sessionID], writeRecord{
		CheckpointID: core.NewID(),
		CreatedAt:    time.Now().UTC(),
	})
	return nil
}

// DeleteAll removes all snapshots and write-log entries for the session.
// Zero deleted is a valid success.
func (s *InMemoryStore) DeleteAll(_ context.Context, sessionID string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	checkpoints := len(s.checkpoints[sessionID])
	writes := len(s.writes[sessionID])
	delete(s.checkpoints, sessionID)
	delete(s.writes, sessionID)
	return checkpoints, writes, nil
}

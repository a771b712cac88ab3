package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/parley-ai/parley/core"
)

// storedFact is the internal representation persisted by InMemoryService.
type storedFact struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// InMemoryService is a naive process-local MemoryService scoped by user id.
//
// Add performs trivial "fact extraction": each user/assistant line of the
// submitted transcript becomes one stored fact. Search is a linear scan with
// case-insensitive token matching assigning a constant score of 1.0 to every
// hit. Suitable only for tests / demos; swap for a vector DB or a hosted
// semantic memory service for production retrieval.
//
// Concurrency: protected by RWMutex.
type InMemoryService struct {
	mu    sync.RWMutex
	facts map[string][]storedFact // userID -> facts in insertion order
}

// NewInMemoryService creates a new in-memory memory service.
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{facts: make(map[string][]storedFact)}
}

// Search returns facts whose text contains any whitespace-separated token of
// the query (case-insensitive), in insertion order. An empty query matches
// everything.
func (m *InMemoryService) Search(_ context.Context, userID, query string) ([]core.MemoryHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := strings.Fields(strings.ToLower(query))
	hits := []core.MemoryHit{}
	for _, fact := range m.facts[userID] {
		if !matches(strings.ToLower(fact.Text), tokens) {
			continue
		}
		md := make(map[string]any, len(fact.Metadata))
		for k, v := range fact.Metadata {
			md[k] = v
		}
		hits = append(hits, core.MemoryHit{ID: fact.ID, Memory: fact.Text, Score: 1.0, Metadata: md})
	}
	return hits, nil
}

func matches(text string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// Add stores each user/assistant transcript line as one fact tagged with the
// turn metadata.
func (m *InMemoryService) Add(_ context.Context, msgs []core.ChatMessage, userID string, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	for _, msg := range msgs {
		if msg.Content == "" {
			continue
		}
		m.facts[userID] = append(m.facts[userID], storedFact{
			ID:       fmt.Sprintf("mem_%d", len(m.facts[userID])),
			Text:     fmt.Sprintf("%s: %s", msg.Role, msg.Content),
			Metadata: md,
		})
	}
	return nil
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parley-ai/parley/core"
)

// Compile-time interface check.
var _ core.MemoryService = (*InMemoryService)(nil)

func TestInMemoryService_AddAndSearch(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	err := svc.Add(ctx, []core.ChatMessage{
		{Role: "user", Content: "I live in Berlin"},
		{Role: "assistant", Content: "Noted, Berlin it is."},
	}, "u1", map[string]string{"session_id": "s1"})
	assert.NoError(t, err)

	hits, err := svc.Search(ctx, "u1", "berlin")
	assert.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "user: I live in Berlin", hits[0].Memory)
	assert.Equal(t, 1.0, hits[0].Score)
	assert.Equal(t, "s1", hits[0].Metadata["session_id"])
}

func TestInMemoryService_SearchIsUserScoped(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	assert.NoError(t, svc.Add(ctx, []core.ChatMessage{{Role: "user", Content: "likes coffee"}}, "u1", nil))

	hits, err := svc.Search(ctx, "u2", "coffee")
	assert.NoError(t, err)
	assert.Empty(t, hits)
}

func TestInMemoryService_SearchMatchesAnyToken(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	assert.NoError(t, svc.Add(ctx, []core.ChatMessage{
		{Role: "user", Content: "my favorite city is Paris"},
		{Role: "user", Content: "I prefer tea"},
	}, "u1", nil))

	hits, err := svc.Search(ctx, "u1", "weather paris tea")
	assert.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = svc.Search(ctx, "u1", "paris")
	assert.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestInMemoryService_AddSkipsEmptyContent(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	assert.NoError(t, svc.Add(ctx, []core.ChatMessage{
		{Role: "user", Content: ""},
		{Role: "assistant", Content: "kept"},
	}, "u1", nil))

	hits, err := svc.Search(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Len(t, hits, 1)
}

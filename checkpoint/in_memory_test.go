package checkpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parley-ai/parley/core"
)

// Compile-time interface check.
var _ core.CheckpointStore = (*InMemoryStore)(nil)

func TestInMemoryStore_LatestUnknownSession(t *testing.T) {
	store := NewInMemoryStore()
	state, err := store.Latest(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestInMemoryStore_AppendAndLatest(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first := core.NewConversationState()
	first.Append(core.NewUserMessage("hello"))
	assert.NoError(t, store.Append(ctx, "s1", first))

	second := first.Clone()
	second.Append(core.NewAssistantMessage("hi there"))
	assert.NoError(t, store.Append(ctx, "s1", second))

	latest, err := store.Latest(ctx, "s1")
	assert.NoError(t, err)
	assert.Len(t, latest.Messages, 2)
	assert.Equal(t, "hi there", latest.Messages[1].Text())
}

func TestInMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	state := core.NewConversationState()
	state.Append(core.NewUserMessage("original"))
	assert.NoError(t, store.Append(ctx, "s1", state))

	// Mutating the caller's state must not affect the stored snapshot.
	state.Append(core.NewAssistantMessage("mutation"))

	latest, err := store.Latest(ctx, "s1")
	assert.NoError(t, err)
	assert.Len(t, latest.Messages, 1)

	// Nor must mutating a returned snapshot.
	latest.Append(core.NewAssistantMessage("another mutation"))
	again, err := store.Latest(ctx, "s1")
	assert.NoError(t, err)
	assert.Len(t, again.Messages, 1)
}

func TestInMemoryStore_DeleteAll(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	state := core.NewConversationState()
	state.Append(core.NewUserMessage("hello"))
	assert.NoError(t, store.Append(ctx, "s1", state))
	assert.NoError(t, store.Append(ctx, "s1", state))

	checkpoints, writes, err := store.DeleteAll(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, 2, checkpoints)
	assert.Equal(t, 2, writes)

	// Deleting again is a valid zero-count success.
	checkpoints, writes, err = store.DeleteAll(ctx, "s1")
	assert.NoError(t, err)
	assert.Zero(t, checkpoints)
	assert.Zero(t, writes)

	latest, err := store.Latest(ctx, "s1")
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestInMemoryStore_SessionsAreIndependent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	a := core.NewConversationState()
	a.Append(core.NewUserMessage("session a"))
	b := core.NewConversationState()
	b.Append(core.NewUserMessage("session b"))

	assert.NoError(t, store.Append(ctx, "a", a))
	assert.NoError(t, store.Append(ctx, "b", b))

	_, _, err := store.DeleteAll(ctx, "a")
	assert.NoError(t, err)

	latest, err := store.Latest(ctx, "b")
	assert.NoError(t, err)
	assert.Equal(t, "session b", latest.Messages[0].Text())
}

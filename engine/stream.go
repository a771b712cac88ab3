package engine

import (
	"context"
	"fmt"

	"github.com/parley-ai/parley/core"
)

// Stream runs one complete turn for the session, emitting the text of the
// final answer incrementally on the returned token channel. Intermediate
// tool rounds produce no tokens; only the closing chat step streams.
//
// Both channels are closed when the turn finishes. At most one error is
// sent; a turn that fails mid-stream closes the token channel after
// whatever fragments were already delivered. After the tokens are
// exhausted the committed state can be read back with History.
func (e *Engine) Stream(ctx context.Context, msgs []core.Message, sessionID, userID string) (<-chan string, <-chan error) {
	tokens := make(chan string, e.streamBuf)
	errs := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(errs)

		unlock := e.lockSession(sessionID)
		defer unlock()

		store, err := e.checkpointer()
		if err != nil {
			errs <- err
			return
		}

		state, err := e.loadState(ctx, store, sessionID)
		if err != nil {
			errs <- err
			return
		}
		state.Append(msgs...)
		state.LongTermMemory = e.relevantMemory(ctx, userID, state.LastUserText())

		onToken := func(tok string) {
			select {
			case tokens <- tok:
			case <-ctx.Done():
			}
		}

		if err := e.runTurn(ctx, state, sessionID, onToken); err != nil {
			e.logger.Error("streaming turn failed",
				"session_id", sessionID,
				"user_id", userID,
				"message_count", len(state.Messages),
				"error", err,
			)
			errs <- err
			return
		}

		if err := store.Append(ctx, sessionID, state); err != nil {
			errs <- fmt.Errorf("committing checkpoint for session %s: %w", sessionID, err)
			return
		}

		// Re-read the committed state so the memory update observes
		// exactly what was persisted for this turn.
		committed, err := store.Latest(ctx, sessionID)
		if err != nil || committed == nil {
			e.logger.Warn("post-stream state read-back failed, using local state",
				"session_id", sessionID,
				"error", err,
			)
			committed = state.Clone()
		}
		e.scheduleMemoryUpdate(userID, sessionID, committed)
	}()

	return tokens, errs
}

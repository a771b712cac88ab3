package engine

import (
	"context"
	"time"

	"github.com/parley-ai/parley/core"
)

const memoryUpdateTimeout = 60 * time.Second

type updateTask struct {
	userID    string
	sessionID string
	state     *core.ConversationState
}

// scheduleMemoryUpdate queues a fire-and-forget long-term memory update for
// a committed turn. A full queue drops the update with a warning rather
// than blocking the response path.
func (e *Engine) scheduleMemoryUpdate(userID, sessionID string, state *core.ConversationState) {
	if e.memory == nil || userID == "" {
		return
	}

	select {
	case e.updates <- updateTask{userID: userID, sessionID: sessionID, state: state}:
	default:
		e.logger.Warn("memory update queue full, dropping update",
			"session_id", sessionID,
			"user_id", userID,
		)
	}
}

func (e *Engine) updateWorker() {
	defer close(e.workerDone)
	for task := range e.updates {
		e.runMemoryUpdate(task)
	}
}

// runMemoryUpdate submits the turn transcript to the memory service. Update
// failures are logged and swallowed; long-term memory is best effort and
// never affects a served response.
func (e *Engine) runMemoryUpdate(task updateTask) {
	ctx, cancel := context.WithTimeout(context.Background(), memoryUpdateTimeout)
	defer cancel()

	transcript := normalizeTranscript(task.state.Messages)
	if len(transcript) == 0 {
		return
	}

	metadata := map[string]string{
		"user_id":     task.userID,
		"session_id":  task.sessionID,
		"environment": string(e.env),
	}

	if err := e.memory.Add(ctx, transcript, task.userID, metadata); err != nil {
		e.logger.Error("long-term memory update failed",
			"session_id", task.sessionID,
			"user_id", task.userID,
			"error", err,
		)
		return
	}

	e.logger.Info("long-term memory updated",
		"session_id", task.sessionID,
		"user_id", task.userID,
		"message_count", len(transcript),
	)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/parley-ai/parley/checkpoint"
	"github.com/parley-ai/parley/config"
	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/logging"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/tool"
)

const (
	defaultMaxToolHops      = 8
	defaultStreamBufferSize = 64
	defaultUpdateQueueSize  = 16
)

// Options configure an Engine.
type Options struct {
	// Tools the model may call during a turn. Optional.
	Tools *tool.Registry

	// CheckpointStore is used directly when set. Takes precedence over
	// CheckpointStoreFactory.
	CheckpointStore core.CheckpointStore

	// CheckpointStoreFactory builds the checkpoint store lazily on first
	// use. A factory failure is fatal except in production, where the
	// engine degrades to an ephemeral in-memory store (see Engine).
	CheckpointStoreFactory func() (core.CheckpointStore, error)

	// Memory enables long-term memory retrieval and post-turn updates.
	// Optional; without it turns run memory-free.
	Memory core.MemoryService

	Logger      logging.Logger
	Environment config.Environment

	// SystemPrompt is a text/template rendered per chat step with
	// {{.LongTermMemory}} and {{.CurrentDate}}. Empty selects the default.
	SystemPrompt string

	// MaxToolHops caps tool rounds per turn. When the cap is reached the
	// final model call is made without tool definitions, forcing a plain
	// answer. Zero selects the default; negative means unlimited.
	MaxToolHops int

	// MemorySearchLimit caps rendered memory hits. Zero means no cap.
	MemorySearchLimit int

	// HistoryLimit caps the messages sent to the model per chat step
	// (checkpoints always keep the full history). Zero means no cap.
	HistoryLimit int

	StreamBufferSize int
	UpdateQueueSize  int
}

// Engine orchestrates conversation turns against a Model, persisting state
// through a CheckpointStore and feeding completed turns to a MemoryService
// in the background.
//
// The checkpoint store is constructed lazily and memoized on first use. If
// construction fails in production the engine logs a warning and continues
// with an ephemeral in-memory store so user traffic is served without
// persistence; in every other environment the first operation fails.
//
// Turns for the same session are mutually exclusive; distinct sessions run
// concurrently.
type Engine struct {
	model        model.Model
	tools        *tool.Registry
	memory       core.MemoryService
	logger       logging.Logger
	env          config.Environment
	systemPrompt string
	maxToolHops  int
	memoryLimit  int
	historyLimit int
	streamBuf    int

	storeOnce    sync.Once
	storeFactory func() (core.CheckpointStore, error)
	store        core.CheckpointStore
	storeErr     error
	degraded     bool

	updates    chan updateTask
	workerDone chan struct{}
	closeOnce  sync.Once

	mu           sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

// New creates an Engine around the given model.
func New(m model.Model, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		Environment: config.EnvironmentDevelopment,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Tools == nil {
		opts.Tools = tool.NewRegistry()
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}
	switch {
	case opts.MaxToolHops == 0:
		opts.MaxToolHops = defaultMaxToolHops
	case opts.MaxToolHops < 0:
		opts.MaxToolHops = 0 // unlimited
	}
	if opts.StreamBufferSize <= 0 {
		opts.StreamBufferSize = defaultStreamBufferSize
	}
	if opts.UpdateQueueSize <= 0 {
		opts.UpdateQueueSize = defaultUpdateQueueSize
	}

	factory := opts.CheckpointStoreFactory
	if opts.CheckpointStore != nil {
		store := opts.CheckpointStore
		factory = func() (core.CheckpointStore, error) { return store, nil }
	}

	e := &Engine{
		model:        m,
		tools:        opts.Tools,
		memory:       opts.Memory,
		logger:       opts.Logger,
		env:          opts.Environment,
		systemPrompt: opts.SystemPrompt,
		maxToolHops:  opts.MaxToolHops,
		memoryLimit:  opts.MemorySearchLimit,
		historyLimit: opts.HistoryLimit,
		streamBuf:    opts.StreamBufferSize,
		storeFactory: factory,
		updates:      make(chan updateTask, opts.UpdateQueueSize),
		workerDone:   make(chan struct{}),
		sessionLocks: make(map[string]*sync.Mutex),
	}

	go e.updateWorker()

	return e
}

// checkpointer returns the memoized checkpoint store, constructing it on
// first call.
func (e *Engine) checkpointer() (core.CheckpointStore, error) {
	e.storeOnce.Do(func() {
		if e.storeFactory == nil {
			e.store = checkpoint.NewInMemoryStore()
			return
		}
		store, err := e.storeFactory()
		if err == nil {
			e.store = store
			return
		}
		if e.env == config.EnvironmentProduction {
			e.logger.Warn("checkpoint store unavailable, continuing without persistence",
				"error", err,
			)
			e.store = checkpoint.NewInMemoryStore()
			e.degraded = true
			return
		}
		e.storeErr = fmt.Errorf("initializing checkpoint store: %w", err)
	})
	return e.store, e.storeErr
}

// lockSession serializes turns per session id and returns the unlock func.
func (e *Engine) lockSession(sessionID string) func() {
	e.mu.Lock()
	l, ok := e.sessionLocks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		e.sessionLocks[sessionID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (e *Engine) loadState(ctx context.Context, store core.CheckpointStore, sessionID string) (*core.ConversationState, error) {
	state, err := store.Latest(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint for session %s: %w", sessionID, err)
	}
	if state == nil {
		state = core.NewConversationState()
	}
	return state, nil
}

// Respond runs one complete turn for the session and returns the assembled
// user/assistant transcript including the new response. The turn is
// committed to the checkpoint store before the long-term memory update is
// scheduled.
func (e *Engine) Respond(ctx context.Context, msgs []core.Message, sessionID, userID string) ([]core.ChatMessage, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	store, err := e.checkpointer()
	if err != nil {
		return nil, err
	}

	state, err := e.loadState(ctx, store, sessionID)
	if err != nil {
		return nil, err
	}
	state.Append(msgs...)
	state.LongTermMemory = e.relevantMemory(ctx, userID, state.LastUserText())

	if err := e.runTurn(ctx, state, sessionID, nil); err != nil {
		e.logger.Error("turn failed",
			"session_id", sessionID,
			"user_id", userID,
			"message_count", len(state.Messages),
			"error", err,
		)
		return nil, err
	}

	if err := store.Append(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("committing checkpoint for session %s: %w", sessionID, err)
	}

	e.scheduleMemoryUpdate(userID, sessionID, state.Clone())

	return assembleMessages(state.Messages), nil
}

// History returns the assembled user/assistant transcript for the session.
// An unknown session yields an empty slice.
func (e *Engine) History(ctx context.Context, sessionID string) ([]core.ChatMessage, error) {
	store, err := e.checkpointer()
	if err != nil {
		return nil, err
	}

	state, err := store.Latest(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading history for session %s: %w", sessionID, err)
	}
	if state == nil {
		return []core.ChatMessage{}, nil
	}
	return assembleMessages(state.Messages), nil
}

// ErrNoPersistence is returned by Clear when the engine is running in the
// degraded production mode without a reachable checkpoint store.
var ErrNoPersistence = errors.New("checkpoint store unavailable")

// Clear deletes all checkpoints and write records for the session and
// returns the deleted counts. Clearing an unknown session succeeds with
// zero counts. Unlike turn processing, Clear never degrades: it fails when
// the checkpoint store is unreachable.
func (e *Engine) Clear(ctx context.Context, sessionID string) (int, int, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	store, err := e.checkpointer()
	if err != nil {
		return 0, 0, err
	}
	if e.degraded {
		return 0, 0, fmt.Errorf("clearing session %s: %w", sessionID, ErrNoPersistence)
	}

	checkpoints, writes, err := store.DeleteAll(ctx, sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("clearing session %s: %w", sessionID, err)
	}
	return checkpoints, writes, nil
}

// Close stops the background memory updater, waiting for queued updates to
// drain.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.updates)
		<-e.workerDone
	})
}

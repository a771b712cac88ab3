// Package parley provides a high-level façade over the conversation engine
// and its service abstractions (checkpoints, long-term memory, tools &
// logging). Most applications interact with this package by:
//  1. Creating a Parley via New() around a model (optionally overriding the
//     default in-memory services)
//  2. Registering tools the model may call
//  3. Sending turns synchronously (Chat) or as a token stream (ChatStream)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable checkpoint
// store, a real memory backend and a structured logger.
package parley

import (
	"context"

	"github.com/parley-ai/parley/config"
	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/engine"
	"github.com/parley-ai/parley/logging"
	"github.com/parley-ai/parley/memory"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/tool"
)

// Options configures the Parley instance.
type Options struct {
	// Tools the model may call. Tools can also be registered later via
	// RegisterTool.
	Tools []tool.Tool

	// CheckpointStore persists conversation state per session. Defaults to
	// an in-memory store. Takes precedence over CheckpointStoreFactory.
	CheckpointStore core.CheckpointStore

	// CheckpointStoreFactory builds the store lazily on first use; see
	// engine.Options for the production degraded mode.
	CheckpointStoreFactory func() (core.CheckpointStore, error)

	// Memory supplies long-term memory. Defaults to an in-memory service.
	// Set to nil explicitly via DisableMemory to run memory-free.
	Memory core.MemoryService

	// DisableMemory turns long-term memory off entirely.
	DisableMemory bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	Environment config.Environment

	// SystemPrompt overrides the default system prompt template.
	SystemPrompt string

	// MaxToolHops caps tool rounds per turn (0 selects the engine default).
	MaxToolHops int

	// HistoryLimit caps the messages sent to the model per step.
	HistoryLimit int
}

// Parley is the high-level façade aggregating the engine and its services.
type Parley struct {
	opts   Options
	tools  *tool.Registry
	engine *engine.Engine
}

// New creates a new Parley instance around a model with optional overrides.
// Any unset service is initialized with an in-memory implementation.
func New(m model.Model, optFns ...func(o *Options)) *Parley {
	opts := Options{
		Memory:      memory.NewInMemoryService(),
		Logger:      logging.NoOpLogger{},
		Environment: config.EnvironmentDevelopment,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.DisableMemory {
		opts.Memory = nil
	}

	registry := tool.NewRegistry(opts.Tools...)

	e := engine.New(m, func(o *engine.Options) {
		o.Tools = registry
		o.CheckpointStore = opts.CheckpointStore
		o.CheckpointStoreFactory = opts.CheckpointStoreFactory
		o.Memory = opts.Memory
		o.Logger = opts.Logger
		o.Environment = opts.Environment
		o.SystemPrompt = opts.SystemPrompt
		o.MaxToolHops = opts.MaxToolHops
		o.HistoryLimit = opts.HistoryLimit
	})

	return &Parley{opts: opts, tools: registry, engine: e}
}

// RegisterTool adds a tool to the underlying registry.
func (p *Parley) RegisterTool(t tool.Tool) { p.tools.Register(t) }

// Chat runs one synchronous turn and returns the assembled user/assistant
// transcript including the new response.
func (p *Parley) Chat(ctx context.Context, text, sessionID, userID string) ([]core.ChatMessage, error) {
	return p.engine.Respond(ctx, []core.Message{core.NewUserMessage(text)}, sessionID, userID)
}

// ChatMessages runs one synchronous turn with caller-built messages.
func (p *Parley) ChatMessages(ctx context.Context, msgs []core.Message, sessionID, userID string) ([]core.ChatMessage, error) {
	return p.engine.Respond(ctx, msgs, sessionID, userID)
}

// ChatStream runs one turn, emitting the final answer incrementally on the
// returned token channel. Both channels close when the turn finishes.
func (p *Parley) ChatStream(ctx context.Context, text, sessionID, userID string) (<-chan string, <-chan error) {
	return p.engine.Stream(ctx, []core.Message{core.NewUserMessage(text)}, sessionID, userID)
}

// History returns the assembled transcript for a session. Unknown sessions
// yield an empty slice.
func (p *Parley) History(ctx context.Context, sessionID string) ([]core.ChatMessage, error) {
	return p.engine.History(ctx, sessionID)
}

// ClearHistory deletes all persisted state for a session and returns the
// deleted checkpoint and write-record counts.
func (p *Parley) ClearHistory(ctx context.Context, sessionID string) (int, int, error) {
	return p.engine.Clear(ctx, sessionID)
}

// Close stops background processing, draining pending memory updates.
func (p *Parley) Close() { p.engine.Close() }

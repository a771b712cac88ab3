// Package engine implements the conversation orchestration engine: a
// two-state turn machine alternating between asking the model (chat) and
// executing requested tools (tool_call), coordinated with a durable
// checkpoint store and an asynchronous long-term memory service.
//
// The exposed surface is Respond (single-shot), Stream (token channel),
// History and Clear. Transport, authentication and metrics belong to the
// embedding application; the engine only consumes a logging.Logger for
// observability breadcrumbs.
package engine

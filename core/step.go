package core

// StepResult is the tagged outcome of a chat step. It separates the state
// machine's control decision (continue into tool execution vs terminate)
// from genuine errors, which travel on the ordinary error return.
type StepResult struct {
	message   Message
	toolCalls []ToolCall
	final     bool
}

// ContinueStep tags a chat step whose assistant message requests tool calls;
// the state machine transitions to tool execution.
func ContinueStep(message Message, toolCalls []ToolCall) StepResult {
	return StepResult{message: message, toolCalls: toolCalls}
}

// FinalStep tags a terminal chat step: an assistant message with no pending
// tool calls.
func FinalStep(message Message) StepResult {
	return StepResult{message: message, final: true}
}

// Final reports whether the step terminates the turn.
func (r StepResult) Final() bool { return r.final }

// Message returns the assistant message produced by the step.
func (r StepResult) Message() Message { return r.message }

// ToolCalls returns the pending tool calls in the order given by the model.
func (r StepResult) ToolCalls() []ToolCall { return r.toolCalls }

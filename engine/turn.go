package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/model"
)

// runTurn drives the turn state machine to completion, mutating state in
// place. It alternates between chat steps and tool execution until a chat
// step produces no tool calls. When the hop limit is reached the closing
// chat step is made without tool definitions, forcing a plain answer.
func (e *Engine) runTurn(ctx context.Context, state *core.ConversationState, sessionID string, onToken func(string)) error {
	limiter := core.NewHopLimiter(e.maxToolHops)

	for {
		res, err := e.chatStep(ctx, state, sessionID, limiter.Exhausted(), onToken)
		if err != nil {
			return err
		}
		state.Append(res.Message())

		if res.Final() {
			return nil
		}

		if err := limiter.Increment(); err != nil {
			// Tools were withheld on the closing step, so calls here mean
			// the model ignored the request shape.
			return fmt.Errorf("session %s: %w", sessionID, err)
		}

		if err := e.executeToolCalls(ctx, state, res.ToolCalls(), sessionID); err != nil {
			return err
		}
	}
}

// chatStep makes one model call over the current state and classifies the
// outcome. finalHop withholds tool definitions so the model must answer in
// prose. onToken, when set, receives partial text fragments as they arrive.
func (e *Engine) chatStep(ctx context.Context, state *core.ConversationState, sessionID string, finalHop bool, onToken func(string)) (core.StepResult, error) {
	req := model.Request{
		Instructions: e.renderSystemPrompt(state.LongTermMemory),
		Messages:     e.historyWindow(state.Messages),
		Stream:       onToken != nil,
	}
	if !finalHop {
		req.Tools = e.toolDefinitions()
	}

	e.logger.Info("chat step",
		"session_id", sessionID,
		"message_count", len(state.Messages),
		"model", e.model.Info().Name,
	)

	respCh, errCh := e.model.Generate(ctx, req)

	var final *core.Message
	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				e.forwardPartial(resp, sessionID, onToken)
				continue
			}
			m := resp.Message
			final = &m
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return core.StepResult{}, fmt.Errorf("model call failed after exhausting retries: %w", err)
			}
		case <-ctx.Done():
			return core.StepResult{}, ctx.Err()
		}
	}

	if final == nil {
		return core.StepResult{}, fmt.Errorf("model returned no final response for session %s", sessionID)
	}

	if calls := final.ToolCalls(); len(calls) > 0 {
		return core.ContinueStep(*final, calls), nil
	}
	return core.FinalStep(*final), nil
}

// forwardPartial hands a streaming fragment to the token callback. A chunk
// the engine cannot use is logged and skipped rather than aborting the turn.
func (e *Engine) forwardPartial(resp model.Response, sessionID string, onToken func(string)) {
	if onToken == nil {
		return
	}
	text := resp.Message.Text()
	if text == "" {
		if len(resp.Message.ToolCalls()) == 0 {
			e.logger.Warn("skipping empty stream chunk", "session_id", sessionID)
		}
		return
	}
	onToken(text)
}

// executeToolCalls runs the requested tools sequentially in call order,
// appending one tool result message per call. A call naming an unregistered
// tool aborts the turn; a tool returning an error is recorded in its result
// so the model can react to it on the next hop.
func (e *Engine) executeToolCalls(ctx context.Context, state *core.ConversationState, calls []core.ToolCall, sessionID string) error {
	for _, call := range calls {
		impl, err := e.tools.Lookup(call.Name)
		if err != nil {
			return fmt.Errorf("tool call in session %s: %w", sessionID, err)
		}

		args, err := decodeArguments(call.Arguments)
		if err != nil {
			e.logger.Warn("malformed tool arguments",
				"session_id", sessionID,
				"tool", call.Name,
				"error", err,
			)
			state.Append(core.NewToolResultMessage(call.ID, call.Name, nil, err))
			continue
		}

		start := time.Now()
		result, callErr := impl.Call(ctx, args)
		e.logger.Info("tool executed",
			"session_id", sessionID,
			"tool", call.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"success", callErr == nil,
		)

		state.Append(core.NewToolResultMessage(call.ID, call.Name, result, callErr))
	}
	return nil
}

func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("decoding tool arguments: %w", err)
	}
	return args, nil
}

func (e *Engine) toolDefinitions() []model.ToolDefinition {
	tools := e.tools.All()
	if len(tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// historyWindow trims the model-visible history to the configured limit.
// The window never starts on a tool result: the leading assistant message
// that requested it is pulled back in so providers see matched pairs.
func (e *Engine) historyWindow(msgs []core.Message) []core.Message {
	if e.historyLimit <= 0 || len(msgs) <= e.historyLimit {
		return msgs
	}
	start := len(msgs) - e.historyLimit
	for start > 0 && msgs[start].Role == core.RoleTool {
		start--
	}
	return msgs[start:]
}

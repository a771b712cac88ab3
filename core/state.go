package core

// ConversationState is the unit of checkpointed data: an ordered message
// sequence (insertion order = turn order, never reordered) plus a rendered
// snapshot of long-term memory retrieved for the current turn. The memory
// snapshot is transient context, not semantic memory itself.
//
// A state value is only ever mutated by the turn actively processing it, so
// no internal locking is required; stores hand out clones to keep snapshots
// independent.
type ConversationState struct {
	Messages       []Message `json:"messages"`
	LongTermMemory string    `json:"long_term_memory,omitempty"`
}

// NewConversationState creates an empty state.
func NewConversationState() *ConversationState {
	return &ConversationState{Messages: []Message{}}
}

// Append adds messages to the end of the sequence. The sequence is
// append-only within a turn.
func (s *ConversationState) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// LastMessage returns the most recent message, if any.
func (s *ConversationState) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastUserText returns the flattened text of the most recent user message,
// or "" if none exists. Used as the long-term memory retrieval query.
func (s *ConversationState) LastUserText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Text()
		}
	}
	return ""
}

// Clone returns a deep copy of the message slice (parts are value types and
// copy with the slice) safe for independent mutation.
func (s *ConversationState) Clone() *ConversationState {
	clone := &ConversationState{
		Messages:       make([]Message, len(s.Messages)),
		LongTermMemory: s.LongTermMemory,
	}
	for i, m := range s.Messages {
		parts := make([]Part, len(m.Parts))
		copy(parts, m.Parts)
		clone.Messages[i] = Message{Role: m.Role, Parts: parts}
	}
	return clone
}

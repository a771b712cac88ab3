package core

import (
	"fmt"
	"sync"
)

// HopLimiter bounds the number of chat/tool-call hops within a single turn,
// guarding against a model that perpetually requests tool calls.
type HopLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewHopLimiter creates a new limiter with a max number of hops.
// If max == 0, unlimited hops are allowed.
func NewHopLimiter(max int) *HopLimiter {
	return &HopLimiter{max: max}
}

// Increment increases the hop counter and returns an error if the limit is
// exceeded.
func (l *HopLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("exceeded max tool hops: %d", l.max)
	}

	return nil
}

// Count returns the current number of hops taken.
func (l *HopLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Exhausted reports whether the next hop would exceed the limit. The engine
// uses this to strip tool definitions from the closing model call, forcing a
// final answer.
func (l *HopLimiter) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.max > 0 && l.count >= l.max
}

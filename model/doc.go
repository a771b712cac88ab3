// Package model defines the normalized request/response contract between the
// orchestration engine and language model providers, plus a deterministic
// MockModel for tests. Provider adapters live in sub-packages (openai,
// anthropic) and are expected to handle their own retry/fallback policy; the
// engine only observes a final failure after exhaustion.
package model

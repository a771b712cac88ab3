// Package memory contains concrete MemoryService implementations. The
// service interface and MemoryHit type reside in the core package; depend on
// core.MemoryService in your code and select an implementation (like the
// in-memory service below) at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (vector databases, hosted fact-extraction services, etc.) to be
// added without introducing dependency cycles.
package memory

// Package core defines the domain contracts shared by the orchestration
// engine and its pluggable services: the message model (role + ordered
// parts), the checkpointed conversation state, the CheckpointStore and
// MemoryService interfaces, and the tagged step result used by the
// conversation state machine.
//
// Concrete store implementations live in the checkpoint and memory packages;
// keeping only the contracts here prevents higher level packages (engine,
// model adapters) from depending on concrete storage.
package core

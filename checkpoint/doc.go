// Package checkpoint houses concrete implementations of the
// core.CheckpointStore contract. The interface itself lives in the core
// package to centralize domain contracts; keeping only implementations here
// prevents the engine from depending on concrete storage.
//
// Two backends are provided: a volatile in-memory store (tests, demos and
// the production degraded mode) and a SQLite store (sub-package sqlite) for
// durable single-node deployments. Add additional backends in sub-packages
// without changing any calling code; only the wiring layer decides which
// implementation to instantiate.
package checkpoint

// Package store provides SQLite-backed storage for typewriter transition
// traces.
//
// The store is an append-only log with:
//   - Runs: one row per recorded engine run (strings + config snapshot)
//   - Transitions: every engine transition of a run, keyed by (run_id, seq)
//
// A trace is for inspection and regression comparison only. Nothing in the
// store is ever loaded back into a live engine.
//
// # Critical Patterns
//
// Logical Ordering:
//   - Transitions are ordered by the engine's seq, NEVER by wall time
//   - at_ms is virtual (scheduler) time, recorded for display
//
// Idempotent Writes:
//   - PRIMARY KEY(run_id, seq) with ON CONFLICT DO NOTHING
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

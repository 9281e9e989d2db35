// Package repositories implements SQLite persistence for sync history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// History is write-only from the point of view of a sync: nothing here is read back to decide what to process.
//
// Key Implementations:
//   - [RunRepository] : One row per sync invocation with its counts and status
//   - [OutcomeRepository] : One row per file operation, keyed to its run
//   - [HistoryRecorder] : Adapts [OutcomeRepository] to receive outcomes while a batch runs
//
// Sequence numbers provide stable, human-readable run numbers (e.g. run #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

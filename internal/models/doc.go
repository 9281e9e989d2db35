// Package models defines domain entities and persistence interfaces for sinkmuzik.
//
// The package contains two categories of types:
//
// 1. Pipeline values: plain structs owned by a single sync run
//   - [AudioFile] : One discovered input file and its destination in the library
//   - [Policy] : The configured conversion rule, evaluated per file by [Decide]
//   - [Decision] : Transcode or copy verbatim
//
// 2. Persistent Entities: Database-backed models recording sync history
//   - [SyncRun] : One invocation of the sync action with its aggregate counts
//   - [FileOutcome] : The result of a single file operation within a run
//
// All persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models

// Package tasks applies the copy or transcode decision to every discovered file with real-time progress reporting.
//
// # Core Operations
//
// [Engine] exposes two operations over a batch of [models.AudioFile] entries:
//
//  1. [Engine.Sync] : Copy or transcode every file into the library
//     - Decides per file with [models.Decide] under the configured policy
//     - Runs [Copy] or [Transcode] on a bounded worker pool
//     - Never stops early; each file's outcome is tagged with its source path
//
//  2. [Engine.Preview] : Dry run
//     - Lists where each file would land under the encoder's extension
//     - Sums source sizes in whole megabytes when nothing will be transcoded
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Outcome Recording
//
// The optional [Recorder] interface receives every outcome as it completes, e.g. to persist sync history.
// Recorder errors are logged and never change the outcome of a file.
package tasks

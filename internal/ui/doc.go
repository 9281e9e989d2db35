// Package ui implements the live sync progress screen using bubbletea's Elm architecture.
//
// The TUI walks through three views:
//  1. [ConfirmView] : List the planned source to destination mappings and ask to proceed
//  2. [SyncView] : Show a progress bar and the most recent file outcomes
//  3. [ResultView] : Display the summary and a browsable list of failed files
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the sync engine, so the batch never blocks on rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

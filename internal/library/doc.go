// Package library turns files found under a source directory into [models.AudioFile] entries.
//
// Each file's embedded tags are read with [github.com/dhowden/tag] and rendered through the
// configured path template, e.g. "<artist>/<album>/<title>", to give the file its place under the
// storage path. The extension of that place is chosen later, when the file is copied or transcoded.
//
// Files that carry no tags, or that have no extension at all, never enter the batch. [Discover]
// reports them as skipped so the caller can count them.
package library

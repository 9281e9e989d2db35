package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Discovery errors, these exclude a file from the batch
	ErrNoMetadata       = fmt.Errorf("file contains no metadata")
	ErrUnknownExtension = fmt.Errorf("file has no extension")
	ErrOutsideLibrary   = fmt.Errorf("destination is outside the library")

	// Operation errors
	ErrIO     = fmt.Errorf("copy failed")
	ErrEncode = fmt.Errorf("encode failed")

	// Library and history errors
	ErrLocked          = fmt.Errorf("library is locked by another sync")
	ErrHistoryDisabled = fmt.Errorf("sync history is not configured")
	ErrRunNotFound     = fmt.Errorf("sync run not found")
)

// IsUsageError reports whether err stems from a bad invocation rather than a failed run.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidFlag)
}

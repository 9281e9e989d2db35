package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/gofrs/flock"
)

// LockFileName is created in the library root while a sync writes into it.
const LockFileName = ".sinkmuzik.lock"

// Lock is an exclusive advisory lock on a library root.
type Lock struct {
	path string
	lock *flock.Flock
}

// LockLibrary creates root if needed and takes the library lock without waiting.
//
// A lock held by another process fails with [shared.ErrLocked].
func LockLibrary(root string) (*Lock, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create library root: %v", shared.ErrIO, err)
	}

	path := filepath.Join(root, LockFileName)
	l := &Lock{path: path, lock: flock.New(path)}

	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrLocked, path)
	}
	return l, nil
}

func (l *Lock) Path() string { return l.path }

// Unlock releases the lock. The lock file is left in place.
func (l *Lock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release library lock: %w", err)
	}
	return nil
}

package fileutil

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"benchcat/internal/failure"
)

// LockFileName is created in every directory a workflow operates on.
const LockFileName = ".benchcat.lock"

// DirLock is an advisory lock held for the duration of one workflow run.
type DirLock struct {
	lock *flock.Flock
}

// LockDir takes the advisory lock for dir without blocking. A lock held by
// another process fails with failure.ErrLocked.
func LockDir(dir string) (*DirLock, error) {
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failure.Wrap(failure.ErrLocked, "fileutil", "lock", path, err)
	}
	if !ok {
		return nil, failure.Wrap(failure.ErrLocked, "fileutil", "lock", fmt.Sprintf("%s is held by another benchcat run", path), nil)
	}
	return &DirLock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	if l == nil || l.lock == nil {
		return ""
	}
	return l.lock.Path()
}

// Unlock releases the lock. The lock file itself is left in place.
func (l *DirLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

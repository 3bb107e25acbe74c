package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// The pipeline assumes a single invocation at a time against one ledger
// file. WithLock enforces that precondition instead of documenting it
// away: a second invocation blocks briefly, then fails.

// locksDirName is the subdirectory for lock files. A separate file keeps
// the lock lifecycle away from the ledger's own atomic rename.
const locksDirName = ".locks"

// LockTimeout is how long an invocation waits for a concurrent run to
// finish before giving up.
const LockTimeout = 2 * time.Second

var (
	errLockTimeout  = errors.New("another booktrack run holds the ledger lock")
	errLockFileOpen = errors.New("failed to open lock file")
)

// WithLock runs handler while holding an exclusive lock derived from the
// ledger path. The lock is always released when handler returns.
func WithLock(path string, handler func() error) error {
	lock, err := acquireLock(path, LockTimeout)
	if err != nil {
		return fmt.Errorf("acquiring ledger lock: %w", err)
	}

	defer lock.release()

	return handler()
}

// fileLock represents a held lock.
type fileLock struct {
	path string
	file *os.File
}

// release removes the lock file, unlocks, then closes. Order matters:
// remove while still holding the lock so a waiter cannot grab a file we
// are about to delete.
func (l *fileLock) release() {
	if l.file != nil {
		_ = os.Remove(l.path)
		_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		_ = l.file.Close()
		l.file = nil
	}
}

// acquireLock takes an exclusive flock on <dir>/.locks/<base>.lock.
// After the flock succeeds it verifies the file at the path still has
// the same inode; if a releasing run deleted it in between, retry.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	locksDir := filepath.Join(dir, locksDirName)
	lockPath := filepath.Join(locksDir, base+".lock")

	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		if err := os.MkdirAll(locksDir, dirPerms); err != nil {
			return nil, fmt.Errorf("creating locks dir: %w", err)
		}

		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errLockFileOpen, err)
		}

		var openStat unix.Stat_t
		if err := unix.Fstat(int(file.Fd()), &openStat); err != nil {
			_ = file.Close()

			return nil, fmt.Errorf("fstat lock file: %w", err)
		}

		fd := int(file.Fd())
		done := make(chan error, 1)

		go func() {
			done <- unix.Flock(fd, unix.LOCK_EX)
		}()

		select {
		case err := <-done:
			if err != nil {
				_ = file.Close()

				return nil, fmt.Errorf("flock: %w", err)
			}

			var pathStat unix.Stat_t

			statErr := unix.Stat(lockPath, &pathStat)
			if statErr != nil || pathStat.Ino != openStat.Ino {
				// Lock file was deleted/replaced while we waited, retry.
				_ = unix.Flock(fd, unix.LOCK_UN)
				_ = file.Close()

				continue
			}

			return &fileLock{path: lockPath, file: file}, nil
		case <-time.After(remaining):
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}
	}
}

// Package lockfile provides advisory file locking for serializing
// mutating operations on a shared directory tree.
package lockfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrBusy indicates the lock is held by another process.
var ErrBusy = errors.New("lockfile: already locked")

// Lock is a held exclusive advisory lock backed by an open descriptor.
type Lock struct {
	path string
	f    *os.File
}

// Acquire blocks until the exclusive lock at path is held, creating the
// lock file, and its directory, if absent. After the lock is taken the
// path is re-checked: when the on-disk file no longer matches the
// locked descriptor, which happens when another holder removed and
// recreated it, the acquisition is retried against the fresh file.
func Acquire(path string) (*Lock, error) {
	return acquire(path, 0)
}

// TryAcquire acquires the lock without blocking. It returns ErrBusy
// when another process holds the lock.
func TryAcquire(path string) (*Lock, error) {
	return acquire(path, unix.LOCK_NB)
}

func acquire(path string, flags int) (*Lock, error) {
	for {
		// A holder that unlinked the lock file may have removed its
		// directory too; recreate it before reopening.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			return nil, err
		}

		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|flags); err != nil {
			f.Close()
			if err == unix.EWOULDBLOCK {
				return nil, ErrBusy
			}
			return nil, &os.PathError{Op: "flock", Path: path, Err: err}
		}

		ok, err := sameFile(f, path)
		if err != nil {
			f.Close()
			return nil, err
		}
		if ok {
			return &Lock{path: path, f: f}, nil
		}

		// Lost a race with a holder that unlinked the file. Closing
		// drops the now-meaningless lock; retry on the fresh path.
		f.Close()
	}
}

// Release drops the lock and closes the descriptor. The lock file
// itself is left in place. Release is safe to call more than once.
func (l *Lock) Release() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// sameFile reports whether the open descriptor still refers to the file
// currently at path. A missing path counts as a mismatch.
func sameFile(f *os.File, path string) (bool, error) {
	fi, err := f.Stat()
	if err != nil {
		return false, err
	}
	di, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return os.SameFile(fi, di), nil
}

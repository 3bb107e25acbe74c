package fsx

import (
	"errors"
	"os"
)

// ErrInjected marks an error as intentionally injected by [Fault].
// errors.Is works through wrapping, so tests can tell injected failures
// apart from real OS errors.
var ErrInjected = errors.New("injected fault")

// Fault wraps an [FS] and fails selected operations deterministically.
// Unlike random fault injection, every configured operation fails every
// time, which keeps atomicity tests reproducible.
type Fault struct {
	Inner FS

	// FailWrites makes WriteFileAtomic return an injected error
	// without touching the target file.
	FailWrites bool

	// FailReads makes ReadFile return an injected error.
	FailReads bool
}

func (f *Fault) ReadFile(path string) ([]byte, error) {
	if f.FailReads {
		return nil, &os.PathError{Op: "read", Path: path, Err: ErrInjected}
	}

	return f.Inner.ReadFile(path)
}

func (f *Fault) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if f.FailWrites {
		return &os.PathError{Op: "write", Path: path, Err: ErrInjected}
	}

	return f.Inner.WriteFileAtomic(path, data, perm)
}

func (f *Fault) MkdirAll(path string, perm os.FileMode) error {
	return f.Inner.MkdirAll(path, perm)
}

func (f *Fault) Exists(path string) (bool, error) {
	return f.Inner.Exists(path)
}

// Compile-time interface check.
var _ FS = (*Fault)(nil)

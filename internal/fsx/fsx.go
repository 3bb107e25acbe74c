// Package fsx provides the small filesystem seam the pipeline writes
// through. Production code uses [Real]; tests swap in [Fault] to prove
// that a failed ledger write leaves the previous file untouched.
package fsx

import "os"

// FS defines the filesystem operations the pipeline needs.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically using a temp
	// file + rename, so a crash mid-write cannot leave a partial file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}

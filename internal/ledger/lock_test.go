package ledger_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"booktrack/internal/ledger"
)

func TestWithLockRunsHandler(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.csv")

	ran := false

	err := ledger.WithLock(path, func() error {
		ran = true

		return nil
	})
	if err != nil {
		t.Fatalf("WithLock failed: %v", err)
	}

	if !ran {
		t.Fatal("handler did not run")
	}
}

func TestWithLockPropagatesHandlerError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.csv")
	want := errors.New("boom")

	err := ledger.WithLock(path, func() error {
		return want
	})

	if !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}

func TestWithLockCleansUpLockFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")

	err := ledger.WithLock(path, func() error {
		lockPath := filepath.Join(dir, ".locks", "ledger.csv.lock")
		if _, statErr := os.Stat(lockPath); statErr != nil {
			t.Errorf("lock file should exist while held: %v", statErr)
		}

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	lockPath := filepath.Join(dir, ".locks", "ledger.csv.lock")
	if _, statErr := os.Stat(lockPath); !os.IsNotExist(statErr) {
		t.Error("lock file should be removed after release")
	}
}

func TestWithLockCanBeReacquired(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.csv")

	for i := 0; i < 3; i++ {
		err := ledger.WithLock(path, func() error { return nil })
		if err != nil {
			t.Fatalf("reacquire failed: %v", err)
		}
	}
}

package ledger_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"booktrack/internal/book"
	"booktrack/internal/ledger"
)

func record(title, author string) book.Record {
	return book.Record{
		Title:     title,
		Author:    author,
		Pages:     100,
		StartDate: date(2024, 1, 1),
	}
}

func TestReconcileAppendsUnseenRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	remote := []book.Record{record("Dune", "Frank Herbert"), record("Solaris", "Stanislaw Lem")}

	added, warnings := ledger.Reconcile(remote, nil, now)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if len(added) != 2 {
		t.Fatalf("got %d new entries, want 2", len(added))
	}

	for _, e := range added {
		if !e.FirstSeen.Equal(now) {
			t.Errorf("FirstSeen = %v, want %v", e.FirstSeen, now)
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	remote := []book.Record{record("Dune", "Frank Herbert"), record("Solaris", "Stanislaw Lem")}

	first, _ := ledger.Reconcile(remote, nil, now)

	entries := first

	second, warnings := ledger.Reconcile(remote, entries, now.Add(time.Hour))

	if len(second) != 0 {
		t.Errorf("second run added %d entries, want 0", len(second))
	}

	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestReconcileNeverOverwritesCapturedRows(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	original := record("Dune", "Frank Herbert")
	entries := []book.Entry{{Record: original, FirstSeen: now}}

	// The remote row changed its page count after capture.
	changed := original
	changed.Pages = 999

	added, _ := ledger.Reconcile([]book.Record{changed}, entries, now.Add(time.Hour))

	if len(added) != 0 {
		t.Fatalf("changed remote row must not produce a new entry, got %d", len(added))
	}

	if diff := cmp.Diff(original, entries[0].Record); diff != "" {
		t.Errorf("ledger entry mutated (-want +got):\n%s", diff)
	}
}

func TestReconcileDuplicateIdentifiersFirstWins(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	first := record("Dune", "Frank Herbert")
	first.Pages = 412

	second := record("dune", "FRANK HERBERT") // same identifier after normalization
	second.Pages = 999

	added, warnings := ledger.Reconcile([]book.Record{first, second}, nil, now)

	if len(added) != 1 {
		t.Fatalf("got %d new entries, want 1", len(added))
	}

	if added[0].Pages != 412 {
		t.Errorf("pages = %d, want first occurrence (412)", added[0].Pages)
	}

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}

	if !strings.Contains(warnings[0], "duplicate identifier") {
		t.Errorf("warning %q should mention the duplicate", warnings[0])
	}
}

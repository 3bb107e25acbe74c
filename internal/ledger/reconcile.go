package ledger

import (
	"fmt"
	"time"

	"booktrack/internal/book"
)

// Reconcile diffs a remote snapshot against the existing ledger entries.
//
// Rows whose identifier is not yet in the ledger become new entries,
// stamped with now. Rows already present are never overwritten, even if
// other fields changed remotely: the ledger is the source of truth once
// a row is captured. Duplicate identifiers within the same snapshot keep
// the first occurrence; later ones are dropped with a warning.
//
// Running Reconcile twice with the same snapshot yields no new entries
// the second time.
func Reconcile(remote []book.Record, entries []book.Entry, now time.Time) (newEntries []book.Entry, warnings []string) {
	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		existing[e.Key()] = true
	}

	inBatch := make(map[string]bool, len(remote))

	for _, rec := range remote {
		key := rec.Key()

		if inBatch[key] {
			warnings = append(warnings, fmt.Sprintf(
				"duplicate identifier %q in remote snapshot, keeping first occurrence", key))

			continue
		}

		inBatch[key] = true

		if existing[key] {
			continue
		}

		newEntries = append(newEntries, book.Entry{Record: rec, FirstSeen: now.UTC()})
	}

	return newEntries, warnings
}

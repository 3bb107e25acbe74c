// Package ledger persists the append-only record of every book entry
// ever ingested, and reconciles remote snapshots against it.
//
// The ledger is a flat CSV file with a stable column order. It is the
// durable source of truth: once a row is captured it is never rewritten,
// which makes the pipeline idempotent and the history auditable.
package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"booktrack/internal/book"
	"booktrack/internal/fsx"
)

// ErrWrite wraps any failure to persist the ledger. It is fatal for the
// run: the caller must not report success, and the previous ledger file
// is guaranteed intact (the write is temp-file + rename).
var ErrWrite = errors.New("ledger write failed")

var (
	errHeaderMismatch = errors.New("ledger header mismatch")
	errCorruptEntry   = errors.New("corrupt ledger entry")
)

// header is the stable ledger column order. Changing it breaks every
// existing ledger file, so don't.
var header = []string{
	"title",
	"author",
	"category",
	"pages",
	"start_date",
	"end_date",
	"score",
	"first_seen",
}

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Load reads the ledger at path. A missing file is an empty ledger, not
// an error: the first run starts from nothing.
func Load(fsys fsx.FS, path string) ([]book.Entry, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		ok, existsErr := fsys.Exists(path)
		if existsErr == nil && !ok {
			return nil, nil
		}

		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	return decode(data)
}

// Save serializes the full ledger in memory and performs a single atomic
// write. A failure leaves the previous file byte-identical.
func Save(fsys fsx.FS, path string, entries []book.Entry) error {
	if err := fsys.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return fmt.Errorf("%w: creating ledger dir: %w", ErrWrite, err)
	}

	data, err := encode(entries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := fsys.WriteFileAtomic(path, data, filePerms); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

func encode(entries []book.Entry) ([]byte, error) {
	var buf bytes.Buffer

	cw := csv.NewWriter(&buf)

	if err := cw.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if err := cw.Write(toRow(e)); err != nil {
			return nil, err
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decode(data []byte) ([]book.Entry, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = len(header)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing ledger: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	for i, col := range header {
		if rows[0][i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", errHeaderMismatch, i, rows[0][i], col)
		}
	}

	entries := make([]book.Entry, 0, len(rows)-1)

	for i, row := range rows[1:] {
		entry, rowErr := fromRow(row)
		if rowErr != nil {
			// Ledger lines were written by us; a bad one means the
			// file was edited or truncated by hand.
			return nil, fmt.Errorf("%w at line %d: %w", errCorruptEntry, i+2, rowErr)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func toRow(e book.Entry) []string {
	end := ""
	if e.EndDate != nil {
		end = e.EndDate.Format(book.DateLayout)
	}

	score := ""
	if e.Score != nil {
		score = strconv.FormatFloat(*e.Score, 'g', -1, 64)
	}

	return []string{
		e.Title,
		e.Author,
		e.Category,
		strconv.Itoa(e.Pages),
		e.StartDate.Format(book.DateLayout),
		end,
		score,
		e.FirstSeen.UTC().Format(time.RFC3339),
	}
}

func fromRow(row []string) (book.Entry, error) {
	rec, err := book.Parse(book.RawRow{
		Title:     row[0],
		Author:    row[1],
		Category:  row[2],
		Pages:     row[3],
		StartDate: row[4],
		EndDate:   row[5],
		Score:     row[6],
	})
	if err != nil {
		return book.Entry{}, err
	}

	firstSeen, err := time.Parse(time.RFC3339, row[7])
	if err != nil {
		return book.Entry{}, fmt.Errorf("first_seen: %w", err)
	}

	return book.Entry{Record: rec, FirstSeen: firstSeen.UTC()}, nil
}

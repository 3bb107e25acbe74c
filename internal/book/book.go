// Package book defines the domain model for tracked readings: raw rows
// from the remote sheet, validated records, ledger entries, and the
// per-book metrics derived from them.
package book

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the whole-day date format used everywhere: in the remote
// sheet, in the ledger file, and in rendered reports.
const DateLayout = "2006-01-02"

// Score bounds. Scores outside this range are rejected as malformed.
const (
	minScore = 0
	maxScore = 10
)

// Row-level validation errors. They are wrapped in a [RowError] so callers
// can report the offending line without aborting the whole fetch.
var (
	errTitleRequired  = errors.New("title is required")
	errPagesInvalid   = errors.New("pages must be a positive integer")
	errStartInvalid   = errors.New("start_date must be a valid YYYY-MM-DD date")
	errEndInvalid     = errors.New("end_date must be a valid YYYY-MM-DD date")
	errEndBeforeStart = errors.New("end_date is before start_date")
	errScoreInvalid   = errors.New("score must be a number between 0 and 10")
)

// RawRow is one unvalidated row from the remote sheet, already mapped to
// named columns but not yet parsed. Line is the 1-based worksheet line,
// kept for error reporting.
type RawRow struct {
	Line      int
	Title     string
	Author    string
	Category  string
	Pages     string
	StartDate string
	EndDate   string
	Score     string
}

// Record is a validated book-reading attempt.
//
// EndDate is nil while a reading is ongoing. Score is nil until the book
// is finished; a present end date with a nil score means the book was
// dropped. Status is always derived from these two fields, never stored.
type Record struct {
	Title     string
	Author    string
	Category  string
	Pages     int
	StartDate time.Time
	EndDate   *time.Time
	Score     *float64
}

// Key returns the record identifier used for reconciliation: the
// normalized title/author pair. Two rows with the same key are the same
// reading attempt.
func (r Record) Key() string {
	return norm(r.Title) + "|" + norm(r.Author)
}

// Entry is a Record plus the timestamp at which it was first observed
// locally. Entries are immutable once written to the ledger.
type Entry struct {
	Record

	FirstSeen time.Time
}

// RowError reports a single malformed row. It never aborts a fetch;
// callers collect RowErrors and surface them as warnings.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Parse validates a raw row into a Record.
func Parse(raw RawRow) (Record, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Record{}, errTitleRequired
	}

	pages, err := strconv.Atoi(strings.TrimSpace(raw.Pages))
	if err != nil || pages <= 0 {
		return Record{}, fmt.Errorf("%w: %q", errPagesInvalid, raw.Pages)
	}

	start, err := parseDate(raw.StartDate)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q", errStartInvalid, raw.StartDate)
	}

	rec := Record{
		Title:     title,
		Author:    strings.TrimSpace(raw.Author),
		Category:  strings.TrimSpace(raw.Category),
		Pages:     pages,
		StartDate: start,
	}

	if s := strings.TrimSpace(raw.EndDate); s != "" {
		end, endErr := parseDate(s)
		if endErr != nil {
			return Record{}, fmt.Errorf("%w: %q", errEndInvalid, raw.EndDate)
		}

		if end.Before(start) {
			return Record{}, fmt.Errorf("%w: %s < %s", errEndBeforeStart, s, raw.StartDate)
		}

		rec.EndDate = &end
	}

	if s := strings.TrimSpace(raw.Score); s != "" {
		score, scoreErr := strconv.ParseFloat(s, 64)
		if scoreErr != nil || score < minScore || score > maxScore {
			return Record{}, fmt.Errorf("%w: %q", errScoreInvalid, raw.Score)
		}

		rec.Score = &score
	}

	return rec, nil
}

// ParseAll validates every raw row, splitting the batch into valid
// records and per-row errors. A malformed row never blocks the rest.
func ParseAll(raws []RawRow) ([]Record, []RowError) {
	records := make([]Record, 0, len(raws))

	var rowErrs []RowError

	for _, raw := range raws {
		rec, err := Parse(raw)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: raw.Line, Err: err})

			continue
		}

		records = append(records, rec)
	}

	return records, rowErrs
}

// parseDate parses a whole-day date and normalizes it to UTC midnight.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC(), nil
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

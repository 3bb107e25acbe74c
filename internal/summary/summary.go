// Package summary aggregates transformed reading rows into a report
// snapshot and renders it. Snapshots are recomputed fresh on every run
// and never persisted.
package summary

import (
	"sort"
	"time"

	"booktrack/internal/book"
)

// topSize is how many best-ranked books the report shows.
const topSize = 3

// Options control the aggregation.
type Options struct {
	// Year is the report year for the per-year figures. Zero means the
	// current year (from Now). A year outside the data's range is
	// clamped to the most recent year with finished books.
	Year int

	// Now anchors "this year" and days-since-last. Injected so reports
	// are reproducible in tests.
	Now time.Time
}

// Snapshot is the aggregate view over all ledger entries at report time.
// An empty input yields a zeroed Snapshot, never an error.
type Snapshot struct {
	Year int

	TotalFinished  int
	FinishedInYear int
	Ongoing        []book.Row
	Dropped        []book.Row

	// Averages skip rows with undefined metrics. Nil when no row
	// qualifies.
	AvgPagesPerDay      *float64
	AvgDurationDays     *float64
	YearAvgPagesPerDay  *float64
	YearAvgDurationDays *float64

	// Top3 is the finished rows ranked by score descending; ties go to
	// the earlier end date, then identifier order. Deterministic.
	Top3 []book.Row

	// LastCompleted is the finished row with the latest end date; ties
	// go to identifier lexical order. Nil when nothing is finished.
	LastCompleted *book.Row
	DaysSinceLast *int
}

// Summarize computes the aggregate snapshot from transformed rows.
func Summarize(rows []book.Row, opts Options) Snapshot {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	var finished []book.Row

	snap := Snapshot{Year: reportYear(rows, opts)}

	for _, r := range rows {
		switch r.Status {
		case book.StatusFinished:
			finished = append(finished, r)
		case book.StatusOngoing:
			snap.Ongoing = append(snap.Ongoing, r)
		case book.StatusDropped:
			snap.Dropped = append(snap.Dropped, r)
		}
	}

	snap.TotalFinished = len(finished)

	var inYear []book.Row

	for _, r := range finished {
		if r.EndDate.Year() == snap.Year {
			inYear = append(inYear, r)
		}
	}

	snap.FinishedInYear = len(inYear)

	snap.AvgPagesPerDay = meanPace(finished)
	snap.AvgDurationDays = meanDuration(finished)
	snap.YearAvgPagesPerDay = meanPace(inYear)
	snap.YearAvgDurationDays = meanDuration(inYear)

	snap.Top3 = topRanked(finished)

	if last := lastCompleted(finished); last != nil {
		snap.LastCompleted = last

		days := int(opts.Now.Sub(*last.EndDate) / (24 * time.Hour))
		snap.DaysSinceLast = &days
	}

	return snap
}

// reportYear resolves the requested year against the data: zero defaults
// to the current year, and a year outside the finished range clamps to
// the latest year that has finished books.
func reportYear(rows []book.Row, opts Options) int {
	year := opts.Year
	if year == 0 {
		year = opts.Now.Year()
	}

	minYear, maxYear := 0, 0

	for _, r := range rows {
		if r.Status != book.StatusFinished {
			continue
		}

		y := r.EndDate.Year()
		if minYear == 0 || y < minYear {
			minYear = y
		}

		if y > maxYear {
			maxYear = y
		}
	}

	if maxYear == 0 {
		return year // nothing finished, nothing to clamp against
	}

	if year < minYear || year > maxYear {
		return maxYear
	}

	return year
}

// topRanked sorts finished rows by score descending, breaking ties by
// earlier end date, then identifier. Rows without a score cannot reach
// finished status, so Score is always set here.
func topRanked(finished []book.Row) []book.Row {
	ranked := make([]book.Row, len(finished))
	copy(ranked, finished)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if *a.Score != *b.Score {
			return *a.Score > *b.Score
		}

		if !a.EndDate.Equal(*b.EndDate) {
			return a.EndDate.Before(*b.EndDate)
		}

		return a.Key() < b.Key()
	})

	if len(ranked) > topSize {
		ranked = ranked[:topSize]
	}

	return ranked
}

// lastCompleted picks the finished row with the maximum end date; ties
// go to the lexically smallest identifier.
func lastCompleted(finished []book.Row) *book.Row {
	var last *book.Row

	for i := range finished {
		r := &finished[i]

		switch {
		case last == nil:
			last = r
		case r.EndDate.After(*last.EndDate):
			last = r
		case r.EndDate.Equal(*last.EndDate) && r.Key() < last.Key():
			last = r
		}
	}

	return last
}

func meanPace(rows []book.Row) *float64 {
	var sum float64

	n := 0

	for _, r := range rows {
		if r.Metrics.PagesPerDay == nil {
			continue
		}

		sum += *r.Metrics.PagesPerDay
		n++
	}

	if n == 0 {
		return nil
	}

	mean := sum / float64(n)

	return &mean
}

func meanDuration(rows []book.Row) *float64 {
	var sum float64

	n := 0

	for _, r := range rows {
		if r.Metrics.DurationDays == nil {
			continue
		}

		sum += float64(*r.Metrics.DurationDays)
		n++
	}

	if n == 0 {
		return nil
	}

	mean := sum / float64(n)

	return &mean
}

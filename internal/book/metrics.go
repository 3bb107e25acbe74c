package book

import "time"

// Status of a reading attempt, derived from end date and score.
type Status string

// Status values.
const (
	StatusFinished Status = "finished"
	StatusOngoing  Status = "ongoing"
	StatusDropped  Status = "dropped"
)

// Metrics holds the derived per-book reading metrics.
//
// DurationDays is nil while the reading has no end date. PagesPerDay is
// nil when the duration is undefined or zero (started and finished the
// same day). Values keep full precision; rounding happens at render time.
type Metrics struct {
	DurationDays *int
	PagesPerDay  *float64
}

// Row pairs a ledger entry with its derived status and metrics. Rows are
// ephemeral: recomputed on every invocation, never persisted.
type Row struct {
	Entry

	Status  Status
	Metrics Metrics
}

// DeriveStatus classifies a record:
//
//   - finished: end date and score both present
//   - dropped:  end date present, score absent
//   - ongoing:  no end date
func DeriveStatus(r Record) Status {
	switch {
	case r.EndDate == nil:
		return StatusOngoing
	case r.Score == nil:
		return StatusDropped
	default:
		return StatusFinished
	}
}

// DeriveMetrics computes duration and pace for a record.
func DeriveMetrics(r Record) Metrics {
	if r.EndDate == nil {
		return Metrics{}
	}

	days := wholeDays(r.StartDate, *r.EndDate)

	m := Metrics{DurationDays: &days}
	if days > 0 {
		pace := float64(r.Pages) / float64(days)
		m.PagesPerDay = &pace
	}

	return m
}

// Transform derives status and metrics for every entry. Pure: no I/O, no
// side effects, input order preserved.
func Transform(entries []Entry) []Row {
	rows := make([]Row, 0, len(entries))

	for _, e := range entries {
		rows = append(rows, Row{
			Entry:   e,
			Status:  DeriveStatus(e.Record),
			Metrics: DeriveMetrics(e.Record),
		})
	}

	return rows
}

// wholeDays returns the whole-day difference between two UTC-midnight
// dates. Dates are whole-day granularity so the division is exact.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

package summary

import (
	"fmt"
	"io"
	"text/tabwriter"

	"booktrack/internal/book"
)

// Render writes the report as prose plus tables. Rounding to one decimal
// happens here and nowhere else; aggregates are computed at full
// precision.
func Render(w io.Writer, snap Snapshot, added []book.Entry) {
	fmt.Fprintf(w, "So far, you have read %d books.\n", snap.TotalFinished)
	fmt.Fprintf(w, "In %d you completed %d books. You are currently reading %d, and %d were dropped.\n",
		snap.Year, snap.FinishedInYear, len(snap.Ongoing), len(snap.Dropped))

	if snap.AvgPagesPerDay != nil {
		fmt.Fprintf(w, "Overall you read an average of %s pages per day and finish a book in %s days.\n",
			round1(snap.AvgPagesPerDay), round1(snap.AvgDurationDays))
	}

	if snap.YearAvgPagesPerDay != nil {
		fmt.Fprintf(w, "This year: %s pages per day, %s days per book.\n",
			round1(snap.YearAvgPagesPerDay), round1(snap.YearAvgDurationDays))
	}

	if snap.LastCompleted != nil {
		fmt.Fprintf(w, "Last book completed: %s by %s on %s (%d days ago).\n",
			snap.LastCompleted.Title, snap.LastCompleted.Author,
			snap.LastCompleted.EndDate.Format(book.DateLayout), *snap.DaysSinceLast)
	}

	if len(snap.Top3) > 0 {
		fmt.Fprintf(w, "\nTop-%d best ranked books:\n", len(snap.Top3))
		writeRowTable(w, snap.Top3)
	}

	if len(snap.Ongoing) > 0 {
		fmt.Fprintf(w, "\nCurrently reading:\n")
		writeRowTable(w, snap.Ongoing)
	}

	if len(added) > 0 {
		fmt.Fprintf(w, "\nNew entries this run:\n")

		for _, e := range added {
			fmt.Fprintf(w, "  - %s by %s\n", e.Title, e.Author)
		}
	}
}

func writeRowTable(w io.Writer, rows []book.Row) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "  TITLE\tAUTHOR\tSCORE\tPACE")

	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
			r.Title, r.Author, round1(r.Score), round1(r.Metrics.PagesPerDay))
	}

	_ = tw.Flush()
}

// round1 formats a nullable float to one decimal, "-" when undefined.
func round1(f *float64) string {
	if f == nil {
		return "-"
	}

	return fmt.Sprintf("%.1f", *f)
}

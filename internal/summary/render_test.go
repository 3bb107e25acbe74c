package summary_test

import (
	"strings"
	"testing"

	"booktrack/internal/book"
	"booktrack/internal/summary"
)

func TestRenderReport(t *testing.T) {
	t.Parallel()

	rows := []book.Row{
		finished("Piranesi", date(2025, 6, 9), 9, 272, 8),
		ongoing("Solaris"),
	}

	snap := summary.Summarize(rows, summary.Options{Now: testNow})

	added := []book.Entry{{Record: book.Record{Title: "Piranesi", Author: "Susanna Clarke"}}}

	var buf strings.Builder

	summary.Render(&buf, snap, added)

	out := buf.String()

	for _, want := range []string{
		"you have read 1 books",
		"In 2025 you completed 1 books",
		"currently reading 1",
		"Piranesi",
		"34.0", // 272 pages / 8 days, rounded at render time
		"New entries this run",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySnapshot(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	summary.Render(&buf, summary.Summarize(nil, summary.Options{Now: testNow}), nil)

	out := buf.String()

	if !strings.Contains(out, "you have read 0 books") {
		t.Errorf("empty report should render zeroed totals:\n%s", out)
	}

	if strings.Contains(out, "Top-") {
		t.Error("empty report should not render a top list")
	}
}

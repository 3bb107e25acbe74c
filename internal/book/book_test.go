package book

import (
	"testing"
	"time"
)

func validRaw() RawRow {
	return RawRow{
		Line:      2,
		Title:     "The Dispossessed",
		Author:    "Ursula K. Le Guin",
		Category:  "sci-fi",
		Pages:     "387",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-11",
		Score:     "9.5",
	}
}

func TestParseValidRow(t *testing.T) {
	t.Parallel()

	rec, err := Parse(validRaw())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if rec.Title != "The Dispossessed" {
		t.Errorf("title = %q", rec.Title)
	}

	if rec.Pages != 387 {
		t.Errorf("pages = %d, want 387", rec.Pages)
	}

	wantStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !rec.StartDate.Equal(wantStart) {
		t.Errorf("start = %v, want %v", rec.StartDate, wantStart)
	}

	if rec.EndDate == nil || !rec.EndDate.Equal(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", rec.EndDate)
	}

	if rec.Score == nil || *rec.Score != 9.5 {
		t.Errorf("score = %v", rec.Score)
	}
}

func TestParseOptionalFieldsEmpty(t *testing.T) {
	t.Parallel()

	raw := validRaw()
	raw.EndDate = ""
	raw.Score = ""
	raw.Category = ""

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if rec.EndDate != nil {
		t.Error("end date should be nil")
	}

	if rec.Score != nil {
		t.Error("score should be nil")
	}
}

func TestParseRejectsMalformedRows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*RawRow)
	}{
		{"missing title", func(r *RawRow) { r.Title = "  " }},
		{"pages not a number", func(r *RawRow) { r.Pages = "many" }},
		{"pages zero", func(r *RawRow) { r.Pages = "0" }},
		{"pages negative", func(r *RawRow) { r.Pages = "-10" }},
		{"bad start date", func(r *RawRow) { r.StartDate = "01/02/2024" }},
		{"bad end date", func(r *RawRow) { r.EndDate = "soon" }},
		{"end before start", func(r *RawRow) { r.StartDate = "2024-05-01"; r.EndDate = "2024-04-01" }},
		{"score not a number", func(r *RawRow) { r.Score = "great" }},
		{"score out of range", func(r *RawRow) { r.Score = "11" }},
		{"score negative", func(r *RawRow) { r.Score = "-1" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			raw := validRaw()
			tc.mutate(&raw)

			_, err := Parse(raw)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseAllSplitsValidAndInvalid(t *testing.T) {
	t.Parallel()

	good := validRaw()

	bad := validRaw()
	bad.Line = 3
	bad.Pages = "n/a"

	records, rowErrs := ParseAll([]RawRow{good, bad})

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	if len(rowErrs) != 1 {
		t.Fatalf("got %d row errors, want 1", len(rowErrs))
	}

	if rowErrs[0].Line != 3 {
		t.Errorf("row error line = %d, want 3", rowErrs[0].Line)
	}
}

func TestKeyNormalizesTitleAndAuthor(t *testing.T) {
	t.Parallel()

	a := Record{Title: "  Dune ", Author: "Frank Herbert"}
	b := Record{Title: "dune", Author: "FRANK HERBERT"}

	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}

	c := Record{Title: "Dune", Author: "Someone Else"}
	if a.Key() == c.Key() {
		t.Error("different authors must produce different keys")
	}
}

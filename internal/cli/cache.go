package cli

import (
	"bytes"
	"encoding/csv"

	"booktrack/internal/book"
)

// rawHeader mirrors the canonical sheet columns; the cache file is a
// plain copy of what the remote returned, before validation.
var rawHeader = []string{"title", "author", "category", "pages", "start_date", "end_date", "score"}

func encodeRawRows(raw []book.RawRow) []byte {
	var buf bytes.Buffer

	cw := csv.NewWriter(&buf)
	_ = cw.Write(rawHeader)

	for _, r := range raw {
		_ = cw.Write([]string{r.Title, r.Author, r.Category, r.Pages, r.StartDate, r.EndDate, r.Score})
	}

	cw.Flush()

	return buf.Bytes()
}

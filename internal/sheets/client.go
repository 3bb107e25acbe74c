// Package sheets reads the full current snapshot of book rows from a
// Google Sheets worksheet. It is strictly read-only: the pipeline never
// writes back to the remote.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"booktrack/internal/book"
	"booktrack/internal/logctx"
)

const defaultBaseURL = "https://sheets.googleapis.com"

// Required columns in the sheet header. Everything else is optional.
var requiredColumns = []string{"title", "author", "pages", "start_date"}

// columnAliases maps legacy header names to the canonical ones, so older
// sheets keep working without a migration.
var columnAliases = map[string]string{
	"book_name":   "title",
	"total_pages": "pages",
	"genre":       "category",
}

// Client fetches rows from one named worksheet. It is constructed once
// per run and shared by every fetch call; there is no global session.
type Client struct {
	// BaseURL of the Sheets API. Overridable for tests.
	BaseURL string

	SpreadsheetID string
	Sheet         string

	HTTP   *http.Client
	tokens *tokenSource
}

// New builds a Client from resolved credentials.
func New(creds Credentials, spreadsheetID, sheet string) *Client {
	httpClient := &http.Client{Timeout: 2 * time.Minute}

	return &Client{
		BaseURL:       defaultBaseURL,
		SpreadsheetID: spreadsheetID,
		Sheet:         sheet,
		HTTP:          httpClient,
		tokens:        newTokenSource(creds, httpClient),
	}
}

// valuesResponse mirrors the Sheets values.get payload.
type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// FetchAll reads the entire worksheet and maps it to raw rows. The first
// sheet line is the header; data rows keep their 1-based worksheet line
// for error reporting.
//
// Fails with ErrUnavailable on auth or connectivity problems and with
// ErrSchemaMismatch when a required column is absent. Malformed data
// rows are NOT detected here; validation happens in [book.ParseAll].
func (c *Client) FetchAll(ctx context.Context) ([]book.RawRow, error) {
	logger := logctx.FromContext(ctx)

	token, err := c.tokens.bearer(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.BaseURL, url.PathEscape(c.SpreadsheetID), url.PathEscape(c.Sheet))

	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if reqErr != nil {
			return nil, reqErr
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		return req, nil
	}

	status, body, err := doWithRetry(ctx, c.HTTP, buildReq)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching sheet %q: %w", ErrUnavailable, c.Sheet, err)
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching sheet %q: status=%d body=%s",
			ErrUnavailable, c.Sheet, status, snippet(body))
	}

	var resp valuesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing values response: %w", ErrUnavailable, err)
	}

	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrSchemaMismatch, c.Sheet)
	}

	cols, err := mapHeader(resp.Values[0])
	if err != nil {
		return nil, err
	}

	rows := make([]book.RawRow, 0, len(resp.Values)-1)

	for i, cells := range resp.Values[1:] {
		rows = append(rows, book.RawRow{
			Line:      i + 2, // header is worksheet line 1
			Title:     cell(cells, cols, "title"),
			Author:    cell(cells, cols, "author"),
			Category:  cell(cells, cols, "category"),
			Pages:     cell(cells, cols, "pages"),
			StartDate: cell(cells, cols, "start_date"),
			EndDate:   cell(cells, cols, "end_date"),
			Score:     cell(cells, cols, "score"),
		})
	}

	logger.Debug().Int("rows", len(rows)).Str("sheet", c.Sheet).Msg("fetched remote snapshot")

	return rows, nil
}

// mapHeader resolves header cells to column indexes, applying aliases.
func mapHeader(headerCells []string) (map[string]int, error) {
	cols := make(map[string]int, len(headerCells))

	for i, name := range headerCells {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := columnAliases[key]; ok {
			key = canonical
		}

		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}

	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, required)
		}
	}

	return cols, nil
}

// cell returns the named column's value, tolerating ragged rows: the
// values API omits trailing empty cells.
func cell(cells []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(cells) {
		return ""
	}

	return cells[idx]
}

package sheets

import "errors"

// Failure taxonomy of the remote source. All three abort the run before
// the ledger is touched.
var (
	// ErrMissingCredential means no service-account credential could be
	// found. Detected at startup, before any network call.
	ErrMissingCredential = errors.New("missing service account credential (set BOOKTRACK_CREDS_B64 or credentials_file)")

	// ErrUnavailable means authentication or connectivity to the remote
	// spreadsheet failed.
	ErrUnavailable = errors.New("remote source unavailable")

	// ErrSchemaMismatch means the sheet's header row lacks a required
	// column.
	ErrSchemaMismatch = errors.New("remote sheet schema mismatch")
)

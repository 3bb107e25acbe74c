package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"booktrack/internal/book"
	"booktrack/internal/ledger"
	"booktrack/internal/logctx"
	"booktrack/internal/sheets"
	"booktrack/internal/summary"
)

var errSpreadsheetIDMissing = errors.New("spreadsheet_id is required (config file or BOOKTRACK_SPREADSHEET_ID)")

func (a *app) syncCommand() *Command {
	flags := flag.NewFlagSet("sync", flag.ContinueOnError)
	dryRun := flags.Bool("dry-run", false, "reconcile but do not persist the ledger")
	year := flags.Int("year", 0, "report year (default: current year)")
	localCache := flags.Bool("local-cache", false, "also save the raw remote fetch locally")

	return &Command{
		Flags: flags,
		Usage: "sync [flags]",
		Short: "fetch the sheet, append new books to the ledger, print the report",
		Long: "Runs the full pipeline: fetches the whole worksheet, appends rows\n" +
			"not yet in the ledger (existing entries are never rewritten),\n" +
			"persists the ledger atomically, and prints the summary report.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return a.runSync(ctx, o, syncOptions{
				dryRun:     *dryRun,
				year:       pickYear(*year, a.cfg.Year),
				localCache: *localCache || a.cfg.LocalCache,
			})
		},
	}
}

type syncOptions struct {
	dryRun     bool
	year       int
	localCache bool
}

func (a *app) runSync(ctx context.Context, o *IO, opts syncOptions) error {
	logger := logctx.FromContext(ctx)

	// Credential problems surface before any fetch attempt.
	creds, err := sheets.LoadCredentials(a.cfg.CredentialsFile)
	if err != nil {
		return err
	}

	if a.cfg.SpreadsheetID == "" {
		return errSpreadsheetIDMissing
	}

	client := sheets.New(creds, a.cfg.SpreadsheetID, a.cfg.SheetName)

	logger.Info().Str("sheet", a.cfg.SheetName).Msg("starting extraction")

	raw, err := client.FetchAll(ctx)
	if err != nil {
		return err
	}

	if opts.localCache {
		if cacheErr := a.writeRawCache(raw, time.Now().UTC()); cacheErr != nil {
			// The cache is a convenience copy; failing to write it
			// must not fail the run.
			o.Warnf("could not save raw fetch: %v", cacheErr)
		}
	}

	records, rowErrs := book.ParseAll(raw)
	for _, rowErr := range rowErrs {
		o.Warnf("skipping %v", rowErr)
	}

	logger.Info().
		Int("rows", len(raw)).
		Int("valid", len(records)).
		Int("skipped", len(rowErrs)).
		Msg("extraction done, loading ledger")

	var (
		entries []book.Entry
		added   []book.Entry
	)

	path := a.ledgerPath()

	err = ledger.WithLock(path, func() error {
		var loadErr error

		entries, loadErr = ledger.Load(a.fs, path)
		if loadErr != nil {
			return loadErr
		}

		var warnings []string

		added, warnings = ledger.Reconcile(records, entries, time.Now())
		for _, w := range warnings {
			o.Warnf("%s", w)
		}

		if len(added) == 0 || opts.dryRun {
			return nil
		}

		entries = append(entries, added...)

		return ledger.Save(a.fs, path, entries)
	})
	if err != nil {
		return err
	}

	if opts.dryRun {
		logger.Info().Int("new", len(added)).Msg("dry run, ledger not written")

		entries = append(entries, added...)
	} else {
		logger.Info().Int("new", len(added)).Int("total", len(entries)).Msg("ledger up to date")
	}

	rows := book.Transform(entries)

	snap := summary.Summarize(rows, summary.Options{Year: opts.year, Now: time.Now().UTC()})
	summary.Render(o.Out(), snap, added)

	return nil
}

// writeRawCache saves the raw fetch as a dated CSV under the cache dir.
func (a *app) writeRawCache(raw []book.RawRow, now time.Time) error {
	dir := a.cacheDir()
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	name := fmt.Sprintf("raw_books_%s.csv", now.Format("2006-01-02"))

	return a.fs.WriteFileAtomic(filepath.Join(dir, name), encodeRawRows(raw), 0o644)
}

// pickYear prefers the flag over the config value.
func pickYear(flagYear, cfgYear int) int {
	if flagYear != 0 {
		return flagYear
	}

	return cfgYear
}

package cli

import (
	"context"
	"time"

	flag "github.com/spf13/pflag"

	"booktrack/internal/book"
	"booktrack/internal/ledger"
	"booktrack/internal/summary"
)

func (a *app) reportCommand() *Command {
	flags := flag.NewFlagSet("report", flag.ContinueOnError)
	year := flags.Int("year", 0, "report year (default: current year)")

	return &Command{
		Flags: flags,
		Usage: "report [flags]",
		Short: "print the summary report from the local ledger, no network",
		Long: "Recomputes metrics and the summary from the local ledger only.\n" +
			"Useful offline, or to re-render without touching the remote.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			entries, err := ledger.Load(a.fs, a.ledgerPath())
			if err != nil {
				return err
			}

			rows := book.Transform(entries)

			snap := summary.Summarize(rows, summary.Options{
				Year: pickYear(*year, a.cfg.Year),
				Now:  time.Now().UTC(),
			})
			summary.Render(o.Out(), snap, nil)

			return nil
		},
	}
}

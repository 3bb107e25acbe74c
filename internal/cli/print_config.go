package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func (a *app) printConfigCommand() *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "show the effective configuration and where it came from",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			o.Println("spreadsheet_id:  ", a.cfg.SpreadsheetID)
			o.Println("sheet_name:      ", a.cfg.SheetName)
			o.Println("ledger_path:     ", a.ledgerPath())
			o.Println("credentials_file:", a.cfg.CredentialsFile)
			o.Println("local_cache:     ", a.cfg.LocalCache)
			o.Println("cache_dir:       ", a.cacheDir())
			o.Println("year:            ", a.cfg.Year)
			o.Println()

			if a.sources.Global != "" {
				o.Println("global config: ", a.sources.Global)
			}

			if a.sources.Project != "" {
				o.Println("project config:", a.sources.Project)
			}

			if a.sources.Global == "" && a.sources.Project == "" {
				o.Println("no config files loaded (defaults + environment)")
			}

			return nil
		},
	}
}

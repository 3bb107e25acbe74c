// Command booktrack tracks personal reading activity: it pulls book
// rows from a Google Sheet, reconciles them into a local append-only
// ledger, and prints summary statistics.
package main

import (
	"os"

	"booktrack/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdout, os.Stderr, os.Args[1:]))
}

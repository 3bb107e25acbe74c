// Package cli implements the booktrack command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"booktrack/internal/config"
	"booktrack/internal/fsx"
	"booktrack/internal/logctx"
)

var errFlagRequiresArg = errors.New("flag requires an argument")

// globalFlags are parsed before the command name.
type globalFlags struct {
	configPath string
	workDir    string
	verbose    bool
	remaining  []string
}

// Run is the main entry point. Returns exit code.
//
// Invoking booktrack with no arguments runs the full pipeline, so the
// usual invocation needs nothing but the command itself.
func Run(out, errOut io.Writer, args []string) int {
	o := NewIO(out, errOut)

	flags, err := parseGlobalFlags(args)
	if err != nil {
		o.ErrPrintln("error:", err)
		printUsage(o)

		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			o.ErrPrintln("error: cannot get working directory:", err)

			return 1
		}
	}

	cfg, sources, err := config.Load(workDir, flags.configPath)
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	level := zerolog.InfoLevel
	if flags.verbose {
		level = zerolog.DebugLevel
	}

	ctx := logctx.WithLogger(context.Background(), logctx.Console(level))

	a := &app{
		cfg:     cfg,
		sources: sources,
		workDir: workDir,
		fs:      fsx.NewReal(),
	}

	name := "sync" // bare invocation runs the pipeline

	cmdArgs := flags.remaining
	if len(cmdArgs) > 0 {
		name = cmdArgs[0]
		cmdArgs = cmdArgs[1:]
	}

	if name == "help" || name == "-h" || name == "--help" {
		printUsage(o)

		return 0
	}

	for _, cmd := range a.commands() {
		if cmd.Name() == name {
			return cmd.Run(ctx, o, cmdArgs)
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o)

	return 1
}

// app carries the resolved run environment into command Exec funcs.
type app struct {
	cfg     config.Config
	sources config.Sources
	workDir string
	fs      fsx.FS
}

// ledgerPath resolves the configured ledger path against the work dir.
func (a *app) ledgerPath() string {
	if filepath.IsAbs(a.cfg.LedgerPath) {
		return a.cfg.LedgerPath
	}

	return filepath.Join(a.workDir, a.cfg.LedgerPath)
}

func (a *app) cacheDir() string {
	if filepath.IsAbs(a.cfg.CacheDir) {
		return a.cfg.CacheDir
	}

	return filepath.Join(a.workDir, a.cfg.CacheDir)
}

func (a *app) commands() []*Command {
	return []*Command{
		a.syncCommand(),
		a.reportCommand(),
		a.printConfigCommand(),
	}
}

func printUsage(o *IO) {
	o.Println("Usage: booktrack [global flags] [command] [flags]")
	o.Println()
	o.Println("Tracks reading activity: pulls book rows from a Google Sheet,")
	o.Println("appends new ones to the local ledger, and prints a summary.")
	o.Println("Without a command, booktrack runs sync.")
	o.Println()
	o.Println("Commands:")

	blank := &app{}
	for _, cmd := range blank.commands() {
		o.Println(cmd.HelpLine())
	}

	o.Println()
	o.Println("Global flags:")
	o.Println("  --config <file>        explicit config file (JSONC)")
	o.Println("  -C, --workdir <dir>    run as if started in <dir>")
	o.Println("  -v, --verbose          debug logging")
}

// parseGlobalFlags consumes leading global flags; everything from the
// first non-flag argument on belongs to the command.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	i := 0

	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "--config":
			v, n, err := flagValue(args, i, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.configPath = v
			i += n
		case strings.HasPrefix(arg, "--config="):
			flags.configPath = strings.TrimPrefix(arg, "--config=")
			i++
		case arg == "-C" || arg == "--workdir":
			v, n, err := flagValue(args, i, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.workDir = v
			i += n
		case strings.HasPrefix(arg, "--workdir="):
			flags.workDir = strings.TrimPrefix(arg, "--workdir=")
			i++
		case arg == "-v" || arg == "--verbose":
			flags.verbose = true
			i++
		default:
			flags.remaining = args[i:]

			return flags, nil
		}
	}

	return flags, nil
}

func flagValue(args []string, i int, name string) (string, int, error) {
	if i+1 >= len(args) {
		return "", 0, fmt.Errorf("%w: %s", errFlagRequiresArg, name)
	}

	return args[i+1], 2, nil
}

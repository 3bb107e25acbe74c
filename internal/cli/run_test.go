package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"booktrack/internal/book"
	"booktrack/internal/fsx"
	"booktrack/internal/ledger"
	"booktrack/internal/sheets"
)

// isolate keeps the host environment out of CLI tests.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(sheets.CredsEnvVar, "")
	t.Setenv("BOOKTRACK_SPREADSHEET_ID", "")
	t.Setenv("BOOKTRACK_SHEET", "")
	t.Setenv("BOOKTRACK_LEDGER", "")
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut strings.Builder

	code = Run(&out, &errOut, args)

	return code, out.String(), errOut.String()
}

func seedLedger(t *testing.T, dir string) {
	t.Helper()

	end := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	score := 8.5

	entries := []book.Entry{{
		Record: book.Record{
			Title:     "Piranesi",
			Author:    "Susanna Clarke",
			Pages:     272,
			StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   &end,
			Score:     &score,
		},
		FirstSeen: time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC),
	}}

	err := ledger.Save(fsx.NewReal(), filepath.Join(dir, "ledger.csv"), entries)
	if err != nil {
		t.Fatal(err)
	}

	cfg := `{"ledger_path": "ledger.csv"}`
	if err := os.WriteFile(filepath.Join(dir, ".booktrack.json"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	isolate(t)

	code, _, stderr := runCLI(t, "-C", t.TempDir(), "frobnicate")

	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}

	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunHelp(t *testing.T) {
	isolate(t)

	code, stdout, _ := runCLI(t, "help")

	if code != 0 {
		t.Errorf("exit = %d, want 0", code)
	}

	for _, want := range []string{"sync", "report", "print-config"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRunReportOffline(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	seedLedger(t, dir)

	code, stdout, stderr := runCLI(t, "-C", dir, "report")

	if code != 0 {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}

	if !strings.Contains(stdout, "you have read 1 books") {
		t.Errorf("report output:\n%s", stdout)
	}

	if !strings.Contains(stdout, "Piranesi") {
		t.Errorf("report should name the book:\n%s", stdout)
	}
}

func TestRunReportYearFlag(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	seedLedger(t, dir)

	code, stdout, _ := runCLI(t, "-C", dir, "report", "--year", "2025")

	if code != 0 {
		t.Fatalf("exit = %d", code)
	}

	if !strings.Contains(stdout, "In 2025 you completed 1 books") {
		t.Errorf("report output:\n%s", stdout)
	}
}

func TestRunSyncMissingCredential(t *testing.T) {
	isolate(t)

	code, _, stderr := runCLI(t, "-C", t.TempDir(), "sync")

	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}

	if !strings.Contains(stderr, "credential") {
		t.Errorf("stderr should mention the missing credential: %q", stderr)
	}
}

func TestRunPrintConfig(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	seedLedger(t, dir)

	code, stdout, _ := runCLI(t, "-C", dir, "print-config")

	if code != 0 {
		t.Fatalf("exit = %d", code)
	}

	if !strings.Contains(stdout, "ledger.csv") {
		t.Errorf("print-config output:\n%s", stdout)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	t.Parallel()

	flags, err := parseGlobalFlags([]string{"--config", "x.json", "-v", "report", "--year", "2024"})
	if err != nil {
		t.Fatal(err)
	}

	if flags.configPath != "x.json" {
		t.Errorf("configPath = %q", flags.configPath)
	}

	if !flags.verbose {
		t.Error("verbose should be set")
	}

	want := []string{"report", "--year", "2024"}
	if len(flags.remaining) != len(want) {
		t.Fatalf("remaining = %v, want %v", flags.remaining, want)
	}

	for i := range want {
		if flags.remaining[i] != want[i] {
			t.Fatalf("remaining = %v, want %v", flags.remaining, want)
		}
	}
}

func TestParseGlobalFlagsMissingValue(t *testing.T) {
	t.Parallel()

	_, err := parseGlobalFlags([]string{"--config"})
	if err == nil {
		t.Fatal("expected error for dangling --config")
	}
}

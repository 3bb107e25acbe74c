// Package config loads booktrack configuration from JSONC files and the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	SpreadsheetID   string `json:"spreadsheet_id"`
	SheetName       string `json:"sheet_name,omitempty"`
	LedgerPath      string `json:"ledger_path,omitempty"`
	CredentialsFile string `json:"credentials_file,omitempty"`

	// LocalCache also saves the raw remote fetch under CacheDir.
	LocalCache bool   `json:"local_cache,omitempty"`
	CacheDir   string `json:"cache_dir,omitempty"`

	// Year filters the per-year report figures. Zero means current year.
	Year int `json:"year,omitempty"`
}

// Sources tracks which config files were loaded, for print-config.
type Sources struct {
	Global  string // path to global config if loaded, empty otherwise
	Project string // path to project config if loaded, empty otherwise
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".booktrack.json"

// Environment overrides, applied after config files.
const (
	EnvSpreadsheetID = "BOOKTRACK_SPREADSHEET_ID"
	EnvSheet         = "BOOKTRACK_SHEET"
	EnvLedger        = "BOOKTRACK_LEDGER"
)

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config file")
	errLedgerPathEmpty    = errors.New("ledger_path cannot be empty")
)

// Default returns the default configuration.
func Default() Config {
	return Config{
		SheetName:  "books",
		LedgerPath: filepath.Join(".booktrack", "ledger.csv"),
		CacheDir:   filepath.Join(".booktrack", "cache"),
	}
}

// Load resolves configuration with the following precedence (highest
// wins):
//
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/booktrack/config.json or
//     ~/.config/booktrack/config.json)
//  3. Project config (.booktrack.json in workDir), or the explicit file
//     given via configPath (which must then exist)
//  4. Environment variables
//
// CLI flag overrides are applied by the caller on the returned Config.
func Load(workDir, configPath string) (Config, Sources, error) {
	cfg := Default()

	var sources Sources

	if globalPath := globalConfigPath(); globalPath != "" {
		globalCfg, loaded, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, Sources{}, err
		}

		if loaded {
			cfg = merge(cfg, globalCfg)
			sources.Global = globalPath
		}
	}

	projectFile := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if configPath != "" {
		projectFile = configPath
		if !filepath.IsAbs(projectFile) {
			projectFile = filepath.Join(workDir, projectFile)
		}

		mustExist = true
	}

	projectCfg, loaded, err := loadFile(projectFile, mustExist)
	if err != nil {
		return Config{}, Sources{}, err
	}

	if loaded {
		cfg = merge(cfg, projectCfg)
		sources.Project = projectFile
	}

	cfg = applyEnv(cfg)

	if strings.TrimSpace(cfg.LedgerPath) == "" {
		return Config{}, Sources{}, errLedgerPathEmpty
	}

	return cfg, sources, nil
}

// globalConfigPath returns the global config location, or empty when the
// home directory cannot be determined.
func globalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "booktrack", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "booktrack", "config.json")
}

// loadFile loads one config file. A missing file is only an error when
// mustExist is set (explicit --config).
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
	}

	cfg, parseErr := parse(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	// Standardize JSONC (comments, trailing commas) to plain JSON.
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// merge overlays set fields of over onto base. Bool fields merge with OR
// since false is indistinguishable from unset.
func merge(base, over Config) Config {
	if over.SpreadsheetID != "" {
		base.SpreadsheetID = over.SpreadsheetID
	}

	if over.SheetName != "" {
		base.SheetName = over.SheetName
	}

	if over.LedgerPath != "" {
		base.LedgerPath = over.LedgerPath
	}

	if over.CredentialsFile != "" {
		base.CredentialsFile = over.CredentialsFile
	}

	if over.CacheDir != "" {
		base.CacheDir = over.CacheDir
	}

	if over.Year != 0 {
		base.Year = over.Year
	}

	base.LocalCache = base.LocalCache || over.LocalCache

	return base
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvSpreadsheetID); v != "" {
		cfg.SpreadsheetID = v
	}

	if v := os.Getenv(EnvSheet); v != "" {
		cfg.SheetName = v
	}

	if v := os.Getenv(EnvLedger); v != "" {
		cfg.LedgerPath = v
	}

	return cfg
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxWorkers = 64

// Config holds all run settings, populated from environment variables and
// then overridden by command-line flags.
type Config struct {
	// PfilePath is the reference event file. It is set from the command line.
	PfilePath string

	BaseFolder    string
	ReportPattern string
	OutputDir     string
	OutputPath    string // explicit table path; derived from BaseFolder and PfilePath when empty
	Workers       int

	MetricsTextfile string
	LogLevel        string
	LogFormat       string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	workers, err := parseWorkers(sharedcfg.EnvOrDefault("PARSE_WORKERS", "4"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseFolder:      sharedcfg.EnvOrDefault("EEW_BASE_FOLDER", "./192"),
		ReportPattern:   sharedcfg.EnvOrDefault("REPORT_PATTERN", "*.rep"),
		OutputDir:       sharedcfg.EnvOrDefault("SUMMARY_OUTPUT_DIR", "./outputs"),
		OutputPath:      os.Getenv("SUMMARY_PATH"),
		Workers:         workers,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a fully assembled configuration, including the reference
// Pfile path that only the command line provides.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.PfilePath == "" {
		return errors.New("reference pfile path is required")
	}
	return nil
}

func (c *Config) validate() error {
	if c.BaseFolder == "" {
		return errors.New("EEW_BASE_FOLDER is required")
	}
	if c.OutputDir == "" && c.OutputPath == "" {
		return errors.New("SUMMARY_OUTPUT_DIR is required")
	}
	if c.ReportPattern == "" {
		return errors.New("REPORT_PATTERN is required")
	}
	if _, err := filepath.Match(c.ReportPattern, ""); err != nil {
		return fmt.Errorf("invalid REPORT_PATTERN: %w", err)
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		return fmt.Errorf("invalid PARSE_WORKERS: must be between 1 and %d", maxWorkers)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// SummaryPath is where the table is written: OutputPath when set, otherwise
// summary_<base folder name>_<pfile stem>.txt under OutputDir.
func (c *Config) SummaryPath() string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	folder := filepath.Base(filepath.Clean(c.BaseFolder))
	pfile := filepath.Base(c.PfilePath)
	pfile = strings.TrimSuffix(pfile, filepath.Ext(pfile))
	return filepath.Join(c.OutputDir, fmt.Sprintf("summary_%s_%s.txt", folder, pfile))
}

func parseWorkers(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxWorkers {
		return 0, fmt.Errorf("invalid PARSE_WORKERS: must be between 1 and %d", maxWorkers)
	}
	return n, nil
}

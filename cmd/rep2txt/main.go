// Command rep2txt summarizes the early-warning solution reports in a base
// folder into one ranked, fixed-width table, using a Pfile as the reference
// event.
//
// Usage:
//
//	go run ./cmd/rep2txt [flags] <reference.pfile>
//
// Settings come from the environment (and a .env file when present) and may
// be overridden with flags:
//
//	go run ./cmd/rep2txt -base-folder ./192 -output-dir ./outputs data/17010623.P20
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/eew-summary/internal/adapter/reportfs"
	"github.com/couchcryptid/eew-summary/internal/config"
	"github.com/couchcryptid/eew-summary/internal/domain"
	"github.com/couchcryptid/eew-summary/internal/observability"
	"github.com/couchcryptid/eew-summary/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 2
	}
	if err := parseFlags(cfg, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		slog.Error("invalid arguments", "error", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		return 2
	}

	logger := observability.NewLogger(cfg)

	ref, err := domain.ReadPfile(cfg.PfilePath)
	if err != nil {
		logger.Error("failed to read reference pfile", "path", cfg.PfilePath, "error", err)
		return 1
	}
	logger.Info("reference event loaded",
		"path", cfg.PfilePath,
		"origin_time", ref.OriginTime,
		"magnitude", ref.Magnitude,
		"stations", len(ref.Stations),
	)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer := reportfs.NewWriter(cfg.SummaryPath(), logger)
	p := pipeline.New(
		reportfs.NewSource(cfg.BaseFolder, cfg.ReportPattern),
		pipeline.NewTransformer(&ref, logger, metrics),
		writer,
		logger, metrics, cfg.Workers,
	)

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("summary failed", "base_folder", cfg.BaseFolder, "error", err)
		return 1
	}

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile, reg); err != nil {
			logger.Error("failed to write metrics", "error", err)
		}
	}

	if len(res.Failures) > 0 {
		logger.Warn("some reports were skipped", "skipped", len(res.Failures), "rows", len(res.Rows))
	}
	fmt.Printf("Final summary: %s\n", writer.Path())
	return 0
}

// parseFlags applies command-line overrides on top of the environment
// configuration. The single positional argument is the reference Pfile.
func parseFlags(cfg *config.Config, args []string) error {
	fset := flag.NewFlagSet("rep2txt", flag.ContinueOnError)
	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), "usage: rep2txt [flags] <reference.pfile>\n\n")
		fset.PrintDefaults()
	}
	fset.StringVar(&cfg.BaseFolder, "base-folder", cfg.BaseFolder, "folder containing the .rep solution reports")
	fset.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "summary table path (derived from -output-dir when empty)")
	fset.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for the derived summary table path")
	fset.StringVar(&cfg.ReportPattern, "pattern", cfg.ReportPattern, "glob selecting report files in the base folder")
	fset.IntVar(&cfg.Workers, "workers", cfg.Workers, "reports parsed concurrently")
	fset.StringVar(&cfg.MetricsTextfile, "metrics-file", cfg.MetricsTextfile, "write Prometheus metrics to this textfile after the run")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fset.Parse(args); err != nil {
		return err
	}
	switch fset.NArg() {
	case 1:
		cfg.PfilePath = fset.Arg(0)
		return nil
	case 0:
		fset.Usage()
		return errors.New("missing reference pfile argument")
	default:
		return fmt.Errorf("expected one reference pfile, got %d arguments", fset.NArg())
	}
}

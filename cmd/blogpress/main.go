// Command blogpress publishes a batch of prepared posts to the blog
// editor.
//
// Usage:
//
//	blogpress -config blogpress.yaml        # run the batch from YAML config
//	blogpress -workbook blog20250101.xlsx   # run against a specific workbook
//	blogpress -extract-only                 # parse documents and print blocks, no browser
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/dhkang/blogpress/extract"
	"github.com/dhkang/blogpress/runlog"
	"github.com/dhkang/blogpress/sheet"
	"github.com/dhkang/blogpress/uploader"
)

func main() {
	configPath := flag.String("config", "", "path to blogpress.yaml config file")
	workbook := flag.String("workbook", "", "workbook path (overrides config and auto-discovery)")
	extractOnly := flag.Bool("extract-only", false, "parse each row's document and print its blocks, without a browser")
	headless := flag.Bool("headless", false, "run the browser without a visible window")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *workbook, *extractOnly, *headless); err != nil {
		logger.Error("blogpress: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, workbook string, extractOnly, headless bool) error {
	cfg := &uploader.Config{}
	if configPath != "" {
		var err error
		cfg, err = uploader.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	cfg.ApplyDefaults()
	if workbook != "" {
		cfg.Workbook = workbook
	}
	if headless {
		cfg.Editor.Headless = true
	}

	if extractOnly {
		return runExtractOnly(ctx, logger, cfg)
	}
	return runBatch(ctx, logger, cfg)
}

func runBatch(ctx context.Context, logger *slog.Logger, cfg *uploader.Config) error {
	ledger, err := runlog.Open(cfg.LedgerDB)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	r := uploader.NewRunner(*cfg, logger, ledger)
	runID, err := r.Run(ctx)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	return runOutcome(ctx, ledger, runID)
}

// runOutcome turns the run's ledger tally into the process exit status:
// any failed post makes the whole invocation fail.
func runOutcome(ctx context.Context, ledger *runlog.Ledger, runID string) error {
	failed, err := ledger.FailedCount(ctx, runID)
	if err != nil {
		return fmt.Errorf("run %s: tally failures: %w", runID, err)
	}
	if failed > 0 {
		return fmt.Errorf("run %s: %d posts failed", runID, failed)
	}
	return nil
}

// runExtractOnly resolves each workbook row's document and prints its
// block sequence to stdout. Useful for checking a batch before the
// browser ever opens.
func runExtractOnly(ctx context.Context, logger *slog.Logger, cfg *uploader.Config) error {
	workbook := cfg.Workbook
	if workbook == "" {
		var err error
		workbook, err = sheet.FindWorkbook(cfg.WorkDir)
		if err != nil {
			return err
		}
	}

	records, err := sheet.Load(workbook, logger)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "blogpress-")
	if err != nil {
		return fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	xcfg := cfg.Extract
	xcfg.Logger = logger
	ex := extract.New(xcfg)

	for _, rec := range records {
		doc := sheet.FindDoc(cfg.OutputDir, rec.Title, rec.Row)
		if doc == "" {
			fmt.Printf("row %d %q: no document (flat body, %d chars, %d images)\n",
				rec.Row, rec.Title, len(rec.Body), len(rec.ImagePaths))
			continue
		}
		seq, err := ex.Extract(ctx, doc, scratch)
		if err != nil {
			fmt.Printf("row %d %q: %v\n", rec.Row, rec.Title, err)
			continue
		}
		fmt.Printf("row %d %q: %s, %d blocks (%d images, %d text chars)\n",
			rec.Row, rec.Title, doc, len(seq), len(seq.Images()), len(seq.JoinedText()))
		for i, b := range seq {
			switch b.Kind {
			case extract.KindText:
				fmt.Printf("  %2d text  %d chars\n", i, len(b.Text))
			case extract.KindImage:
				fmt.Printf("  %2d image %s\n", i, b.Path)
			}
		}
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"salesdash/internal/app"
	"salesdash/internal/config"
	"salesdash/internal/domain"
	"salesdash/internal/observability"
	"salesdash/internal/service"
)

type options struct {
	filePath string
	dryRun   bool
	top      int
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	application, err := app.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	if isPastedText(opts.filePath) {
		err = importText(ctx, application.Service, opts)
	} else {
		err = importSpreadsheet(ctx, application.Service, opts)
	}
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	if opts.top > 0 && !opts.dryRun {
		if err := printBrandTotals(ctx, application, opts.top); err != nil {
			log.Fatalf("brand totals: %v", err)
		}
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(
		&opts.filePath,
		"file",
		"",
		"path to a .xlsx/.csv export (replaces the dataset) or a .txt/.tsv paste (appended)",
	)
	flag.BoolVar(
		&opts.dryRun,
		"dry-run",
		false,
		"only print the column mapping of a spreadsheet, do not store anything",
	)
	flag.IntVar(
		&opts.top,
		"top",
		5,
		"number of brands to list after the import, 0 to skip",
	)
	flag.Parse()

	if strings.TrimSpace(opts.filePath) == "" {
		log.Fatal("-file is required")
	}
	return opts
}

func isPastedText(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".tsv":
		return true
	}
	return false
}

func importText(ctx context.Context, svc *service.Service, opts options) error {
	data, err := os.ReadFile(opts.filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.filePath, err)
	}
	if opts.dryRun {
		log.Printf("dry run is only supported for spreadsheets; %s was not imported", opts.filePath)
		return nil
	}

	res, err := svc.BulkImport(ctx, string(data))
	log.Printf(
		"bulk import: lines=%d imported=%d errors=%d header_skipped=%t batches=%d",
		res.TotalLines,
		res.Imported,
		res.ErrorCount,
		res.HeaderSkipped,
		res.Batches,
	)
	if err != nil {
		return err
	}
	log.Printf("dataset now holds %d records (tier=%s persisted=%t)", res.Total, res.Storage.Tier, res.Storage.Persisted)
	return nil
}

func importSpreadsheet(ctx context.Context, svc *service.Service, opts options) error {
	file, err := os.Open(opts.filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.filePath, err)
	}
	defer file.Close()

	preview, err := svc.PreviewImport(filepath.Base(opts.filePath), file)
	if err != nil {
		return err
	}
	for _, col := range preview.Preview.MappedColumns {
		log.Printf("column %d %q -> %s", col.Position+1, col.Header, domain.LabelOf(col.Field))
	}
	if len(preview.Preview.UnmappedColumns) > 0 {
		log.Printf("ignored columns: %s", strings.Join(preview.Preview.UnmappedColumns, ", "))
	}
	log.Print(preview.Preview.Summary())

	if opts.dryRun {
		return svc.DiscardPreview(preview.Token)
	}

	res, err := svc.CommitImport(ctx, preview.Token)
	if err != nil {
		return err
	}
	log.Printf("dataset replaced with %d records (tier=%s persisted=%t)", res.Total, res.Storage.Tier, res.Storage.Persisted)
	return nil
}

// printBrandTotals reads from PostgreSQL when it is the fallback tier so the
// numbers reflect what was actually persisted there.
func printBrandTotals(ctx context.Context, a *app.App, limit int) error {
	if a.Repository != nil {
		count, err := a.Repository.CountRecords(ctx)
		if err != nil {
			return err
		}
		totals, err := a.Repository.BrandTotals(ctx, limit)
		if err != nil {
			return err
		}
		log.Printf("postgres holds %d records", count)
		for _, t := range totals {
			log.Printf("  %-12s volume=%.0f revenue=%.2f", t.Brand, t.Volume, t.Revenue)
		}
		return nil
	}

	dash, err := a.Service.Dashboard(ctx, domain.FilterSet{})
	if err != nil {
		return err
	}
	for idx, b := range dash.Brands {
		if idx == limit {
			break
		}
		log.Printf("  %-12s volume=%.0f revenue=%.2f", b.Brand, b.Volume, b.Revenue)
	}
	return nil
}

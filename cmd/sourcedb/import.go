package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jchantrell/sourcedb/internal/assets"
	"github.com/jchantrell/sourcedb/internal/bsp"
	"github.com/jchantrell/sourcedb/internal/database"
	"github.com/jchantrell/sourcedb/internal/keyvalues"
	"github.com/jchantrell/sourcedb/internal/utils"
	"github.com/spf13/cobra"
)

type ImportStats struct {
	StartTime      time.Time
	EndTime        time.Time
	TotalFiles     int
	ImportedFiles  int
	BytesRead      int64
	RowsInserted   int64
	ParseErrors    int
	DatabaseErrors int
}

// parseError marks failures that happened before anything was written
type parseError struct {
	err error
}

func (e *parseError) Error() string { return e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Export every asset under a directory into the SQLite database",
	Long: `Import walks a game or mod directory, parses every file whose extension is
configured (KeyValues text and compiled BSP maps), and writes the results into the
SQLite database.

Files that fail to parse are logged and skipped. Re-importing a path replaces the
rows from its previous import.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		stats := &ImportStats{
			StartTime: time.Now(),
		}

		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving import root: %w", err)
		}

		slog.Info("Starting import...", "root", root, "database", cfg.Database)

		found, err := assets.Discover(root, cfg.Extensions)
		if err != nil {
			return fmt.Errorf("discovering assets: %w", err)
		}
		if len(found) == 0 {
			slog.Info("No assets found", "extensions", cfg.Extensions)
			return nil
		}
		stats.TotalFiles = len(found)

		db, err := database.NewDatabase(database.DefaultDatabaseOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if err := database.NewDDLManager(db).CreateSchemas(ctx); err != nil {
			return fmt.Errorf("creating schemas: %w", err)
		}

		inserter := database.NewBulkInserter(db, &database.BulkInsertOptions{
			BatchSize: cfg.BatchSize,
		})

		importID, err := inserter.BeginImport(ctx, root)
		if err != nil {
			return err
		}

		slog.Info("Importing assets", "count", len(found), "import_id", importID)

		progress := utils.NewProgress(len(found), !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug"))
		processingStartTime := time.Now()
		opts := parseOptions()

		for _, asset := range found {
			if err := ctx.Err(); err != nil {
				progress.Finish()
				slog.Warn("Import canceled")
				return fmt.Errorf("import canceled: %w", err)
			}

			rows, err := importAsset(ctx, inserter, importID, asset, opts)
			progress.Step(asset.Rel, err == nil)
			if err != nil {
				var parseErr *parseError
				if errors.As(err, &parseErr) {
					slog.Error("Failed to parse asset", "path", asset.Rel, "error", parseErr.err)
					stats.ParseErrors++
				} else {
					slog.Error("Failed to export asset", "path", asset.Rel, "error", err)
					stats.DatabaseErrors++
				}
				continue
			}

			stats.ImportedFiles++
			stats.BytesRead += asset.Size
			stats.RowsInserted += int64(rows)
		}

		progress.Finish()
		stats.EndTime = time.Now()

		printImportStats(stats, time.Since(processingStartTime))
		return nil
	},
}

// importAsset parses one file and exports it, returning the row count. A
// failed export leaves the database as it was before the call.
func importAsset(ctx context.Context, inserter *database.BulkInserter, importID string, asset assets.Asset, opts keyvalues.Options) (int, error) {
	export := &database.FileExport{
		Path: asset.Rel,
		Kind: string(asset.Kind),
	}

	switch asset.Kind {
	case assets.KindBSP:
		f, err := bsp.Open(asset.Path)
		if err != nil {
			return 0, &parseError{err: err}
		}
		defer f.Close()

		// Entities are optional: compressed or malformed entity lumps still
		// leave the lump table worth exporting.
		entities, err := f.Entities()
		if err != nil {
			slog.Warn("Skipping entity lump", "path", asset.Rel, "error", err)
			entities = nil
		}
		export.Header = f.Header
		export.Entities = entities

	default:
		kv, err := keyvalues.ParseFile(asset.Path, opts)
		if err != nil {
			return 0, &parseError{err: err}
		}
		export.KeyValues = kv
	}

	return inserter.ExportFile(ctx, importID, export)
}

func printImportStats(stats *ImportStats, processing time.Duration) {
	totalDuration := stats.EndTime.Sub(stats.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	var fileRate, rowRate float64
	if seconds := processing.Seconds(); seconds > 0 {
		fileRate = float64(stats.ImportedFiles) / seconds
		rowRate = float64(stats.RowsInserted) / seconds
	}
	successRate := float64(stats.ImportedFiles) / float64(stats.TotalFiles) * 100

	fmt.Printf("Files imported: %d/%d (%.1f%%)\n", stats.ImportedFiles, stats.TotalFiles, successRate)
	fmt.Printf("Bytes read: %s\n", utils.Bytes(stats.BytesRead))
	fmt.Printf("Rows inserted: %s\n", utils.Number(stats.RowsInserted))
	fmt.Printf("Parse errors: %d\n", stats.ParseErrors)
	fmt.Printf("Database errors: %d\n", stats.DatabaseErrors)
	fmt.Printf("Total duration: %s\n", utils.Duration(totalDuration))
	fmt.Printf("Processing rate: %s files/sec\n", utils.Rate(fileRate))
	fmt.Printf("Insertion rate: %s rows/sec\n", utils.Rate(rowRate))
	fmt.Printf("Memory usage: %s\n", utils.Bytes(int64(memStats.Alloc)))
	fmt.Println("Try running: sourcedb query --tables")
}

func init() {
	rootCmd.AddCommand(importCmd)
}

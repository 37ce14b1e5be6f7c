package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jchantrell/sourcedb/internal/config"
	"github.com/jchantrell/sourcedb/internal/keyvalues"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string

	dbPath     string
	extensions []string
	comments   bool
	logLevel   string
	logFormat  string
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "sourcedb",
	Short: "Source engine asset reader and SQLite exporter",
	Long: `sourcedb reads Source engine KeyValues text files (materials, scripts,
resource and map source files) and compiled BSP maps.

Single files can be inspected with the kv and bsp commands. The import command
walks a game directory and exports every recognised asset into a queryable
SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("database") {
			cfg.Database = dbPath
		}
		if cmd.Flags().Changed("extensions") {
			cfg.Extensions = extensions
		}
		if cmd.Flags().Changed("comments") {
			cfg.Comments = comments
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}

		slog.SetDefault(slog.New(handler))

		slog.Debug("Configuration",
			"database", cfg.Database,
			"extensions", cfg.Extensions,
			"comments", cfg.Comments,
			"batch_size", cfg.BatchSize,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is sourcedb.yaml in $HOME or pwd)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "", "database file path")
	rootCmd.PersistentFlags().StringSliceVar(&extensions, "extensions", nil, "comma-separated list of file extensions to import")
	rootCmd.PersistentFlags().BoolVar(&comments, "comments", false, "skip // line comments in KeyValues text")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}

// parseOptions returns the KeyValues options selected by configuration
func parseOptions() keyvalues.Options {
	return keyvalues.Options{Comments: cfg.Comments}
}

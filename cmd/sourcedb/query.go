package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jchantrell/sourcedb/internal/database"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Query the SQLite database directly from command line",
	Long: `Query executes SQL against the exported assets, lists available tables,
or shows a table's columns.

Example:
  sourcedb query "SELECT f.path, k.value FROM keyvalues k JOIN files f ON f.id = k.file_id WHERE k.key = '$basetexture'"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		listTables, err := cmd.Flags().GetBool("tables")
		if err != nil {
			return fmt.Errorf("failed to get tables flag: %w", err)
		}
		schemaTable, err := cmd.Flags().GetString("schema")
		if err != nil {
			return fmt.Errorf("failed to get schema flag: %w", err)
		}

		slog.Debug("Query parameters",
			"database", cfg.Database,
			"list-tables", listTables,
			"schema", schemaTable)

		if _, err := os.Stat(cfg.Database); err != nil {
			return fmt.Errorf("database %s not found, run sourcedb import first: %w", cfg.Database, err)
		}

		db, err := database.NewDatabase(database.DefaultDatabaseOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		switch {
		case listTables:
			tables, err := db.ListTables(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Available tables:")
			for _, table := range tables {
				fmt.Printf("  %s\n", table)
			}
			return nil

		case schemaTable != "":
			return printSchema(ctx, os.Stdout, db, schemaTable)

		case len(args) > 0:
			return runQuery(ctx, os.Stdout, db, args[0])
		}

		return fmt.Errorf("no query provided, use --tables to list tables or --schema <table> to show schema")
	},
}

func printSchema(ctx context.Context, w io.Writer, db *database.Database, table string) error {
	slog.Debug("Getting table schema", "table", table)

	rows, err := db.Query(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("getting schema for table %s: %w", table, err)
	}
	defer rows.Close()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Column\tType\tNotNull\tDefault\tPrimary\n")

	found := false
	for rows.Next() {
		var name, dataType string
		var notNull, primaryKey int
		var defaultValue interface{}

		if err := rows.Scan(&name, &dataType, &notNull, &defaultValue, &primaryKey); err != nil {
			return fmt.Errorf("scanning schema row: %w", err)
		}
		found = true

		defaultStr := "NULL"
		if defaultValue != nil {
			defaultStr = fmt.Sprintf("%v", defaultValue)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, dataType, yesNo(notNull != 0), defaultStr, yesNo(primaryKey != 0))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating schema: %w", err)
	}
	if !found {
		return fmt.Errorf("table %s does not exist", table)
	}

	fmt.Fprintf(w, "Schema for table '%s':\n", table)
	return tw.Flush()
}

func runQuery(ctx context.Context, w io.Writer, db *database.Database, query string) error {
	slog.Debug("Executing SQL query", "query", query)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("getting column names: %w", err)
	}

	fmt.Fprintln(w, strings.Join(columns, "\t"))
	separators := make([]string, len(columns))
	for i, col := range columns {
		separators[i] = strings.Repeat("-", len(col))
	}
	fmt.Fprintln(w, strings.Join(separators, "\t"))

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	fields := make([]string, len(columns))
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}

		for i, val := range values {
			switch v := val.(type) {
			case nil:
				fields[i] = "NULL"
			case []byte:
				fields[i] = string(v)
			default:
				fields[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("tables", false, "List available tables")
	queryCmd.Flags().String("schema", "", "Show schema for specified table")
}

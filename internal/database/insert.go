package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jchantrell/sourcedb/internal/bsp"
	"github.com/jchantrell/sourcedb/internal/keyvalues"
)

// BulkInserter handles batched insertion of parsed assets
type BulkInserter struct {
	db        *Database
	batchSize int
}

// BulkInsertOptions configures bulk insertion behavior
type BulkInsertOptions struct {
	// BatchSize determines how many rows go into one INSERT statement
	BatchSize int
}

// maxVariables is SQLite's default limit on bound parameters per statement
const maxVariables = 32766

// FileExport is everything written for one asset. KeyValues is set for text
// assets, Header and Entities for BSP maps.
type FileExport struct {
	Path      string
	Kind      string
	KeyValues *keyvalues.KeyValues
	Header    *bsp.Header
	Entities  []*keyvalues.KeyValues
}

// DefaultBulkInsertOptions returns sensible defaults for bulk insertion
func DefaultBulkInsertOptions() *BulkInsertOptions {
	return &BulkInsertOptions{
		BatchSize: 1000,
	}
}

// NewBulkInserter creates a new bulk inserter with the given database and options
func NewBulkInserter(db *Database, options *BulkInsertOptions) *BulkInserter {
	if options == nil || options.BatchSize <= 0 {
		options = DefaultBulkInsertOptions()
	}

	return &BulkInserter{
		db:        db,
		batchSize: options.BatchSize,
	}
}

// BeginImport records a new import run and returns its id
func (bi *BulkInserter) BeginImport(ctx context.Context, root string) (string, error) {
	id := uuid.NewString()

	_, err := bi.db.Exec(ctx,
		`INSERT INTO "_imports" (id, root, started_at) VALUES (?, ?, ?)`,
		id, root, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("recording import: %w", err)
	}

	return id, nil
}

// ExportFile writes one file row and all of its data rows in a single
// transaction, replacing an earlier export of the same path. On error nothing
// is changed. It returns the number of data rows written.
func (bi *BulkInserter) ExportFile(ctx context.Context, importID string, export *FileExport) (int, error) {
	tx, err := bi.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM "files" WHERE path = ?`, export.Path); err != nil {
		return 0, fmt.Errorf("removing previous rows for %s: %w", export.Path, err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO "files" (import_id, path, kind) VALUES (?, ?, ?)`,
		importID, export.Path, export.Kind)
	if err != nil {
		return 0, fmt.Errorf("inserting file %s: %w", export.Path, err)
	}
	fileID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading file id for %s: %w", export.Path, err)
	}

	total := 0
	if export.KeyValues != nil {
		rows, err := keyValueRows(fileID, export.KeyValues)
		if err != nil {
			return 0, err
		}
		if err := bi.insertRows(ctx, tx, "keyvalues", []string{"file_id", "node", "key", "value", "child"}, rows); err != nil {
			return 0, err
		}
		total += len(rows)
	}

	if export.Header != nil {
		rows := lumpRows(fileID, export.Header)
		columns := []string{"file_id", "lump_index", "name", "offset", "length", "version", "four_cc"}
		if err := bi.insertRows(ctx, tx, "lumps", columns, rows); err != nil {
			return 0, err
		}
		total += len(rows)
	}

	if len(export.Entities) > 0 {
		rows := entityRows(fileID, export.Entities)
		if err := bi.insertRows(ctx, tx, "entities", []string{"file_id", "entity", "key", "value"}, rows); err != nil {
			return 0, err
		}
		total += len(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", export.Path, err)
	}

	slog.Debug("Exported file", "path", export.Path, "file_id", fileID, "rows", total)
	return total, nil
}

// keyValueRows numbers the blocks of kv in walk order, root first, and emits
// one row per value and per subkey
func keyValueRows(fileID int64, kv *keyvalues.KeyValues) ([][]interface{}, error) {
	ids := map[*keyvalues.KeyValues]int{kv: 0}
	next := 1

	var rows [][]interface{}
	err := kv.Walk(func(_ []string, node *keyvalues.KeyValues) error {
		id, ok := ids[node]
		if !ok {
			return fmt.Errorf("block reached before its parent")
		}
		for _, key := range node.Keys() {
			value, _ := node.Value(key)
			rows = append(rows, []interface{}{fileID, id, key, value, nil})
		}
		for _, name := range node.SubkeyNames() {
			child, _ := node.Subkey(name)
			ids[child] = next
			rows = append(rows, []interface{}{fileID, id, name, nil, next})
			next++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting keyvalues: %w", err)
	}
	return rows, nil
}

// lumpRows lists the lump table of a BSP header, skipping empty slots
func lumpRows(fileID int64, header *bsp.Header) [][]interface{} {
	var rows [][]interface{}
	for i, lump := range header.Lumps {
		if !lump.Exists() {
			continue
		}
		rows = append(rows, []interface{}{
			fileID, i, bsp.LumpIndex(i).String(), lump.Offset, lump.Length, lump.Version, lump.FourCC[:],
		})
	}
	return rows
}

// entityRows lists the top-level values of every entity, numbered in lump order
func entityRows(fileID int64, entities []*keyvalues.KeyValues) [][]interface{} {
	var rows [][]interface{}
	for i, entity := range entities {
		for _, key := range entity.Keys() {
			value, _ := entity.Value(key)
			rows = append(rows, []interface{}{fileID, i, key, value})
		}
	}
	return rows
}

// insertRows inserts rows inside tx using multi-row INSERT statements of up to
// batchSize rows each
func (bi *BulkInserter) insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		slog.Debug("No rows to insert", "table", table)
		return nil
	}

	perStatement := bi.batchSize
	if limit := maxVariables / len(columns); perStatement > limit {
		perStatement = limit
	}

	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quoteSQLIdentifier(column)
	}

	var stmt *sql.Stmt
	stmtRows := 0
	defer func() {
		if stmt != nil {
			stmt.Close()
		}
	}()

	args := make([]interface{}, 0, perStatement*len(columns))
	for i := 0; i < len(rows); i += perStatement {
		end := i + perStatement
		if end > len(rows) {
			end = len(rows)
		}

		// full batches reuse one prepared statement, the tail gets its own
		if stmt == nil || stmtRows != end-i {
			if stmt != nil {
				stmt.Close()
			}
			var err error
			stmt, err = tx.PrepareContext(ctx, buildInsertSQL(table, quoted, end-i))
			if err != nil {
				return fmt.Errorf("preparing insert for table %s: %w", table, err)
			}
			stmtRows = end - i
		}

		args = args[:0]
		for _, row := range rows[i:end] {
			args = append(args, row...)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting batch %d-%d for table %s: %w", i, end-1, table, err)
		}
	}

	return nil
}

func buildInsertSQL(table string, quotedColumns []string, rows int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(quotedColumns)), ", ") + ")"
	tuples := make([]string, rows)
	for i := range tuples {
		tuples[i] = tuple
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteSQLIdentifier(table),
		strings.Join(quotedColumns, ", "),
		strings.Join(tuples, ", "))
}

package database

import (
	"context"
	"fmt"
	"log/slog"
)

// DDLRequest is one schema statement and the table it creates
type DDLRequest struct {
	TableName string
	DDL       string
}

// schema lists the export tables in creation order.
//
// keyvalues stores each tree as numbered blocks: node 0 is the file's root and
// every row belongs to the block in node. A row with a NULL value and a child
// number is the subkey key, whose own rows use child as their node.
var schema = []DDLRequest{
	{TableName: "_imports", DDL: `CREATE TABLE IF NOT EXISTS "_imports" (
    id TEXT PRIMARY KEY,
    root TEXT NOT NULL,
    started_at TEXT NOT NULL
)`},
	{TableName: "files", DDL: `CREATE TABLE IF NOT EXISTS "files" (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    import_id TEXT NOT NULL REFERENCES "_imports"(id),
    path TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL
)`},
	{TableName: "keyvalues", DDL: `CREATE TABLE IF NOT EXISTS "keyvalues" (
    file_id INTEGER NOT NULL REFERENCES "files"(id) ON DELETE CASCADE,
    node INTEGER NOT NULL,
    "key" TEXT NOT NULL,
    "value" TEXT,
    child INTEGER,
    CHECK (("value" IS NULL) <> (child IS NULL))
)`},
	{TableName: "lumps", DDL: `CREATE TABLE IF NOT EXISTS "lumps" (
    file_id INTEGER NOT NULL REFERENCES "files"(id) ON DELETE CASCADE,
    lump_index INTEGER NOT NULL,
    name TEXT NOT NULL,
    "offset" INTEGER NOT NULL,
    "length" INTEGER NOT NULL,
    version INTEGER NOT NULL,
    four_cc BLOB,
    PRIMARY KEY (file_id, lump_index)
)`},
	{TableName: "entities", DDL: `CREATE TABLE IF NOT EXISTS "entities" (
    file_id INTEGER NOT NULL REFERENCES "files"(id) ON DELETE CASCADE,
    entity INTEGER NOT NULL,
    "key" TEXT NOT NULL,
    "value" TEXT NOT NULL
)`},
	{TableName: "keyvalues", DDL: `CREATE INDEX IF NOT EXISTS "idx_keyvalues_key" ON "keyvalues"("key")`},
	{TableName: "keyvalues", DDL: `CREATE INDEX IF NOT EXISTS "idx_keyvalues_node" ON "keyvalues"(file_id, node)`},
	{TableName: "entities", DDL: `CREATE INDEX IF NOT EXISTS "idx_entities_key" ON "entities"("key", "value")`},
}

// DDLManager creates the export schema
type DDLManager struct {
	db *Database
}

// NewDDLManager creates a new DDL manager
func NewDDLManager(db *Database) *DDLManager {
	return &DDLManager{db: db}
}

// CreateSchemas creates every export table in a single transaction. It is
// safe to run against an existing export.
func (dm *DDLManager) CreateSchemas(ctx context.Context) error {
	tx, err := dm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	for _, req := range schema {
		if _, err := tx.ExecContext(ctx, req.DDL); err != nil {
			return fmt.Errorf("executing DDL for %s: %w", req.TableName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	slog.Debug("Created export schema", "statements", len(schema))
	return nil
}

// quoteSQLIdentifier quotes a table or column name for SQLite
func quoteSQLIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, identifier)
}

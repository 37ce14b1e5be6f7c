package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jchantrell/sourcedb/internal/bsp"
	"github.com/jchantrell/sourcedb/internal/keyvalues"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(DefaultDatabaseOptions(filepath.Join(t.TempDir(), "nested", "assets.db")))
	if err != nil {
		t.Fatalf("NewDatabase() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := NewDDLManager(db).CreateSchemas(context.Background()); err != nil {
		t.Fatalf("CreateSchemas() failed: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *Database, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func TestNewDatabase_Validation(t *testing.T) {
	if _, err := NewDatabase(nil); err == nil {
		t.Error("Expected error for nil options")
	}
	if _, err := NewDatabase(&DatabaseOptions{}); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestCreateSchemas_Idempotent(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()

	if err := NewDDLManager(db).CreateSchemas(ctx); err != nil {
		t.Fatalf("second CreateSchemas() failed: %v", err)
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() failed: %v", err)
	}
	want := "entities,files,keyvalues,lumps"
	if got := strings.Join(tables, ","); got != want {
		t.Errorf("Expected tables %s, got %s", want, got)
	}
}

func beginTestImport(t *testing.T, bi *BulkInserter) string {
	t.Helper()
	importID, err := bi.BeginImport(context.Background(), "/game/hl2")
	if err != nil {
		t.Fatalf("BeginImport() failed: %v", err)
	}
	return importID
}

func TestExportFile_KeyValues(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	bi := NewBulkInserter(db, &BulkInsertOptions{BatchSize: 2})
	importID := beginTestImport(t, bi)

	kv, err := keyvalues.Parse("LightmappedGeneric { $basetexture brick/wall01 $decal 1 Proxies { } }")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	n, err := bi.ExportFile(ctx, importID, &FileExport{
		Path:      "materials/brick/wall01.vmt",
		Kind:      "keyvalues",
		KeyValues: kv,
	})
	if err != nil {
		t.Fatalf("ExportFile() failed: %v", err)
	}
	// LightmappedGeneric, $basetexture, $decal, Proxies
	if n != 4 {
		t.Errorf("Expected 4 rows, got %d", n)
	}

	var value string
	err = db.QueryRow(ctx, `
		SELECT v."value" FROM "keyvalues" s
		JOIN "keyvalues" v ON v.file_id = s.file_id AND v.node = s.child
		WHERE s.node = 0 AND s."key" = ? AND v."key" = ?`,
		"LightmappedGeneric", "$basetexture").Scan(&value)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if value != "brick/wall01" {
		t.Errorf("Expected brick/wall01, got %q", value)
	}

	if subkeys := countRows(t, db, `SELECT COUNT(*) FROM "keyvalues" WHERE "value" IS NULL AND child IS NOT NULL`); subkeys != 2 {
		t.Errorf("Expected 2 subkey rows, got %d", subkeys)
	}
}

func TestExportFile_SlashNamedBlocksStayDistinct(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	bi := NewBulkInserter(db, nil)
	importID := beginTestImport(t, bi)

	kv, err := keyvalues.Parse(`"Resource/UI/Hud.res" { Health { xpos 1 } }
Resource { UI { "Hud.res" { Health { xpos 2 } } } }`)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if _, err := bi.ExportFile(ctx, importID, &FileExport{Path: "resource/ui/hud.res", Kind: "keyvalues", KeyValues: kv}); err != nil {
		t.Fatalf("ExportFile() failed: %v", err)
	}

	var xpos string
	err = db.QueryRow(ctx, `
		SELECT x."value" FROM "keyvalues" r
		JOIN "keyvalues" h ON h.file_id = r.file_id AND h.node = r.child AND h."key" = 'Health'
		JOIN "keyvalues" x ON x.file_id = h.file_id AND x.node = h.child AND x."key" = 'xpos'
		WHERE r.node = 0 AND r."key" = 'Resource/UI/Hud.res'`).Scan(&xpos)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if xpos != "1" {
		t.Errorf("Expected xpos 1 under the slash-named block, got %q", xpos)
	}

	if nodes := countRows(t, db, `SELECT COUNT(DISTINCT child) FROM "keyvalues" WHERE child IS NOT NULL`); nodes != 6 {
		t.Errorf("Expected 6 distinct child blocks, got %d", nodes)
	}
}

func TestExportFile_ReimportReplacesRows(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	bi := NewBulkInserter(db, nil)
	importID := beginTestImport(t, bi)

	for i := 0; i < 2; i++ {
		export := &FileExport{Path: "scripts/items.txt", Kind: "keyvalues", KeyValues: keyvalues.FromPair("a", "1")}
		if _, err := bi.ExportFile(ctx, importID, export); err != nil {
			t.Fatalf("ExportFile() failed: %v", err)
		}
	}

	if files := countRows(t, db, `SELECT COUNT(*) FROM "files"`); files != 1 {
		t.Errorf("Expected 1 file row, got %d", files)
	}
	if rows := countRows(t, db, `SELECT COUNT(*) FROM "keyvalues"`); rows != 1 {
		t.Errorf("Expected previous keyvalues to cascade away, got %d rows", rows)
	}
}

func TestExportFile_FailureLeavesNoPartialRows(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	bi := NewBulkInserter(db, &BulkInsertOptions{BatchSize: 1})
	importID := beginTestImport(t, bi)

	good := &FileExport{Path: "scripts/weapons.txt", Kind: "keyvalues", KeyValues: keyvalues.FromPair("damage", "10")}
	if _, err := bi.ExportFile(ctx, importID, good); err != nil {
		t.Fatalf("ExportFile() failed: %v", err)
	}

	// Reject one key so the export fails after earlier batches went in.
	_, err := db.Exec(ctx, `CREATE TRIGGER "reject_key" BEFORE INSERT ON "keyvalues"
		WHEN NEW."key" = 'zzz' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	if err != nil {
		t.Fatalf("creating trigger failed: %v", err)
	}

	kv := keyvalues.New()
	kv.AddValue("aaa", "1")
	kv.AddValue("bbb", "2")
	kv.AddValue("zzz", "3")

	broken := &FileExport{Path: "scripts/weapons.txt", Kind: "keyvalues", KeyValues: kv}
	if _, err := bi.ExportFile(ctx, importID, broken); err == nil {
		t.Fatal("Expected ExportFile() to fail")
	}

	other := &FileExport{Path: "scripts/new.txt", Kind: "keyvalues", KeyValues: kv}
	if _, err := bi.ExportFile(ctx, importID, other); err == nil {
		t.Fatal("Expected ExportFile() to fail")
	}

	if files := countRows(t, db, `SELECT COUNT(*) FROM "files" WHERE path = 'scripts/new.txt'`); files != 0 {
		t.Errorf("Expected no orphan file row, got %d", files)
	}
	if rows := countRows(t, db, `SELECT COUNT(*) FROM "keyvalues"`); rows != 1 {
		t.Errorf("Expected only the previous export's row, got %d rows", rows)
	}

	var damage string
	err = db.QueryRow(ctx, `SELECT "value" FROM "keyvalues" WHERE "key" = 'damage'`).Scan(&damage)
	if err != nil || damage != "10" {
		t.Errorf("Expected previous export to survive, got %q, %v", damage, err)
	}
}

func TestExportFile_BSP(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	bi := NewBulkInserter(db, nil)
	importID := beginTestImport(t, bi)

	header := &bsp.Header{Ident: bsp.Ident, Version: 20}
	header.Lumps[bsp.LumpEntities] = bsp.Lump{Offset: 1036, Length: 100}
	header.Lumps[bsp.LumpPakFile] = bsp.Lump{Offset: 1136, Length: 4000}

	entities, err := keyvalues.ParseSequence(`{ "classname" "worldspawn" } { "classname" "light" "_light" "255 255 255 200" }`, keyvalues.Options{})
	if err != nil {
		t.Fatalf("ParseSequence() failed: %v", err)
	}

	n, err := bi.ExportFile(ctx, importID, &FileExport{
		Path:     "maps/test.bsp",
		Kind:     "bsp",
		Header:   header,
		Entities: entities,
	})
	if err != nil {
		t.Fatalf("ExportFile() failed: %v", err)
	}
	// 2 lumps + 3 entity values
	if n != 5 {
		t.Errorf("Expected 5 rows, got %d", n)
	}

	var name string
	if err := db.QueryRow(ctx, `SELECT name FROM "lumps" WHERE lump_index = 40`).Scan(&name); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if name != "PakFile" {
		t.Errorf("Expected PakFile, got %q", name)
	}

	if lights := countRows(t, db, `SELECT COUNT(*) FROM "entities" WHERE "key" = 'classname' AND "value" = 'light' AND entity = 1`); lights != 1 {
		t.Errorf("Expected light entity at index 1, got %d rows", lights)
	}
}

func TestBuildInsertSQL(t *testing.T) {
	got := buildInsertSQL("entities", []string{`"a"`, `"b"`}, 2)
	want := `INSERT INTO "entities" ("a", "b") VALUES (?, ?), (?, ?)`
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

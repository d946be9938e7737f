// ABOUTME: Tests for the SQLite store: schema, materialization and queries.
// ABOUTME: Loads the shared sample fixture into in-memory and on-disk databases.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harperreed/chococrunch/internal/ingest"
	"github.com/harperreed/chococrunch/internal/models"
)

const samplePath = "../../testdata/chococrunch_sample.csv"

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupSampleDB(t *testing.T) *DB {
	t.Helper()

	ds, err := ingest.LoadFile(samplePath)
	if err != nil {
		t.Fatalf("Failed to load sample: %v", err)
	}
	db := setupTestDB(t)
	if _, err := db.Materialize(context.Background(), ds.Relations); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	return db
}

func TestOpenCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	tables, err := db.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	if len(tables) != len(AllTables) {
		t.Fatalf("Expected %d tables, got %d", len(AllTables), len(tables))
	}
	for i, tbl := range tables {
		if tbl.Name != AllTables[i] {
			t.Errorf("Table %d: got %s, want %s", i, tbl.Name, AllTables[i])
		}
		if tbl.Rows != 0 {
			t.Errorf("Table %s: expected 0 rows, got %d", tbl.Name, tbl.Rows)
		}
		if len(tbl.Columns) == 0 || tbl.Columns[0].Name != "product_code" || !tbl.Columns[0].PrimaryKey {
			t.Errorf("Table %s: expected product_code primary key first, got %+v", tbl.Name, tbl.Columns)
		}
	}
}

func TestMaterializeSample(t *testing.T) {
	ds, err := ingest.LoadFile(samplePath)
	if err != nil {
		t.Fatalf("Failed to load sample: %v", err)
	}
	db := setupTestDB(t)
	ctx := context.Background()

	summary, err := db.Materialize(ctx, ds.Relations)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if summary.Products != 22 || summary.Nutrients != 22 || summary.Derived != 22 || summary.Market != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	// Materializing again replaces rather than appends.
	if _, err := db.Materialize(ctx, ds.Relations); err != nil {
		t.Fatalf("Second Materialize failed: %v", err)
	}
	for _, table := range CoreTables {
		n, err := db.Count(ctx, table)
		if err != nil {
			t.Fatalf("Count %s failed: %v", table, err)
		}
		if n != 22 {
			t.Errorf("%s: expected 22 rows, got %d", table, n)
		}
	}
}

func TestUltraProcessedMatchesNovaInStore(t *testing.T) {
	db := setupSampleDB(t)

	rs, err := db.Query(context.Background(), `
		SELECT COUNT(*) AS mismatches
		FROM derived_metrics d
		JOIN nutrient_info n ON n.product_code = d.product_code
		WHERE NOT (
			(d.is_ultra_processed = 'Yes' AND n."nova-group" = 4) OR
			(d.is_ultra_processed = 'No' AND n."nova-group" IN (1, 2, 3)) OR
			(d.is_ultra_processed = 'Unknown' AND n."nova-group" IS NULL)
		)`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := rs.Value(0, "mismatches"); got != int64(0) {
		t.Errorf("Expected 0 mismatches, got %v", got)
	}
}

func TestReferentialIntegrity(t *testing.T) {
	db := setupSampleDB(t)
	ctx := context.Background()

	rs, err := db.Query(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		t.Fatalf("foreign_key_check failed: %v", err)
	}
	if !rs.Empty() {
		t.Errorf("Expected no foreign key violations, got %v", rs.Rows)
	}

	_, err = db.db.ExecContext(ctx, `INSERT INTO nutrient_info (product_code) VALUES ('orphan')`)
	if err == nil {
		t.Error("Expected orphan nutrient row to be rejected")
	}
}

func TestMaterializeRejectsMisalignedRelations(t *testing.T) {
	db := setupTestDB(t)
	rel := models.Relations{
		Products: []models.Product{{Code: "a"}},
	}
	if _, err := db.Materialize(context.Background(), rel); err == nil {
		t.Fatal("Expected error for misaligned relations")
	}
}

func TestQueryValuesAndErrors(t *testing.T) {
	db := setupSampleDB(t)
	ctx := context.Background()

	rs, err := db.Query(ctx, `
		SELECT p.product_name, n."energy-kcal_value" AS energy, d.calorie_category, d.calorie_rank
		FROM product_info p
		JOIN nutrient_info n ON n.product_code = p.product_code
		JOIN derived_metrics d ON d.product_code = p.product_code
		WHERE p.product_code = ?`, "4000417025005")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if rs.Len() != 1 {
		t.Fatalf("Expected 1 row, got %d", rs.Len())
	}
	if got := rs.Value(0, "product_name"); got != "Ritter Sport Alpine Milk" {
		t.Errorf("product_name: got %v", got)
	}
	if got := rs.Value(0, "energy"); got != 580.0 {
		t.Errorf("energy: got %v (%T)", got, got)
	}
	if got := rs.Value(0, "calorie_category"); got != "High Calorie" {
		t.Errorf("calorie_category: got %v", got)
	}
	if got := rs.Value(0, "calorie_rank"); got != int64(3) {
		t.Errorf("calorie_rank: got %v (%T)", got, got)
	}
	if rs.Value(0, "missing") != nil {
		t.Error("Expected nil for unknown column")
	}

	rs, err = db.Query(ctx, `SELECT product_name FROM product_info WHERE product_code = '3000000000052'`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if rs.Rows[0][0] != nil {
		t.Errorf("Expected NULL product name, got %v", rs.Rows[0][0])
	}

	if _, err := db.Query(ctx, `SELECT no_such_column FROM product_info`); err == nil {
		t.Error("Expected error for unknown column")
	}
}

func TestQueryEmptyResult(t *testing.T) {
	db := setupSampleDB(t)

	rs, err := db.Query(context.Background(), `SELECT product_code FROM nutrient_info WHERE sodium_value > 1`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if !rs.Empty() {
		t.Errorf("Expected empty result, got %d rows", rs.Len())
	}
	if len(rs.Columns) != 1 || rs.Columns[0] != "product_code" {
		t.Errorf("Expected columns to be kept on empty result, got %v", rs.Columns)
	}
}

func TestSaveCopyAndOpenExisting(t *testing.T) {
	db := setupSampleDB(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "choco.db")

	if err := db.SaveCopy(ctx, path); err != nil {
		t.Fatalf("SaveCopy failed: %v", err)
	}
	// A second save overwrites the first.
	if err := db.SaveCopy(ctx, path); err != nil {
		t.Fatalf("Second SaveCopy failed: %v", err)
	}

	copyDB, err := OpenExisting(ctx, path)
	if err != nil {
		t.Fatalf("OpenExisting failed: %v", err)
	}
	defer copyDB.Close()

	n, err := copyDB.Count(ctx, TableDerived)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 22 {
		t.Errorf("Expected 22 derived rows in copy, got %d", n)
	}
	if copyDB.Path() != path {
		t.Errorf("Path: got %s, want %s", copyDB.Path(), path)
	}
}

func TestOpenExistingErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := OpenExisting(ctx, filepath.Join(dir, "missing.db"))
	var le *ingest.LoadError
	if !errors.As(err, &le) || le.Kind != ingest.KindMissingFile {
		t.Errorf("Expected missing file LoadError, got %v", err)
	}

	// A SQLite file without the core tables is rejected.
	otherPath := filepath.Join(dir, "other.db")
	raw, err := sql.Open("sqlite", otherPath)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := raw.Exec(`CREATE TABLE product_info (product_code TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	raw.Close()

	_, err = OpenExisting(ctx, otherPath)
	if !errors.As(err, &le) || le.Kind != ingest.KindInvalidDatabase {
		t.Fatalf("Expected invalid database LoadError, got %v", err)
	}
	if len(le.Columns) != 2 || le.Columns[0] != TableNutrients || le.Columns[1] != TableDerived {
		t.Errorf("Expected missing nutrient_info and derived_metrics, got %v", le.Columns)
	}
}

func TestSaveCopyRejectsMemoryTarget(t *testing.T) {
	db := setupTestDB(t)
	if err := db.SaveCopy(context.Background(), MemoryPath); err == nil {
		t.Error("Expected error when saving to memory")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{580.0, "580"},
		{0.25, "0.25"},
		{int64(12), "12"},
		{"Lindt", "Lindt"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

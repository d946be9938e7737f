// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines product_info, nutrient_info, derived_metrics and market_analysis.
package storage

import (
	"context"
	"fmt"
)

// Table names.
const (
	TableProducts  = "product_info"
	TableNutrients = "nutrient_info"
	TableDerived   = "derived_metrics"
	TableMarket    = "market_analysis"
)

// CoreTables must exist in any database the catalog runs against.
var CoreTables = []string{TableProducts, TableNutrients, TableDerived}

// AllTables lists every table the schema creates, parents first.
var AllTables = []string{TableProducts, TableNutrients, TableDerived, TableMarket}

// initSchema creates the schema if it does not exist.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS product_info (
		product_code TEXT PRIMARY KEY,
		product_name TEXT,
		brand TEXT,
		countries TEXT,
		manufacturer TEXT,
		cacao_percentage REAL,
		price REAL
	);

	CREATE TABLE IF NOT EXISTS nutrient_info (
		product_code TEXT PRIMARY KEY,
		"energy-kcal_value" REAL,
		"energy-kj_value" REAL,
		carbohydrates_value REAL,
		sugars_value REAL,
		fat_value REAL,
		"saturated-fat_value" REAL,
		proteins_value REAL,
		fiber_value REAL,
		salt_value REAL,
		sodium_value REAL,
		"nutrition-score-fr" REAL,
		"nova-group" INTEGER CHECK ("nova-group" BETWEEN 1 AND 4),
		"fruits-vegetables-nuts-estimate-from-ingredients_100g" REAL,
		additives_n REAL,
		ingredients_n REAL,
		FOREIGN KEY (product_code) REFERENCES product_info(product_code)
	);

	CREATE TABLE IF NOT EXISTS derived_metrics (
		product_code TEXT PRIMARY KEY,
		calorie_category TEXT NOT NULL,
		calorie_rank INTEGER NOT NULL,
		sugar_category TEXT NOT NULL,
		sugar_rank INTEGER NOT NULL,
		fat_category TEXT NOT NULL,
		fat_rank INTEGER NOT NULL,
		is_ultra_processed TEXT NOT NULL CHECK (is_ultra_processed IN ('Yes', 'No', 'Unknown')),
		health_score REAL,
		sugar_to_carb_ratio REAL,
		processed_ingredient_ratio REAL,
		FOREIGN KEY (product_code) REFERENCES product_info(product_code)
	);

	CREATE TABLE IF NOT EXISTS market_analysis (
		product_code TEXT NOT NULL,
		region TEXT NOT NULL,
		sales_units REAL,
		market_share REAL,
		rating REAL,
		PRIMARY KEY (product_code, region),
		FOREIGN KEY (product_code) REFERENCES product_info(product_code)
	);

	CREATE INDEX IF NOT EXISTS idx_product_info_brand ON product_info(brand);
	CREATE INDEX IF NOT EXISTS idx_derived_calorie ON derived_metrics(calorie_rank);
	CREATE INDEX IF NOT EXISTS idx_market_region ON market_analysis(region);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Column describes one table column.
type Column struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
}

// TableInfo describes one table and its row count.
type TableInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Rows    int      `json:"rows" yaml:"rows"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Schema describes every table present in the database, in AllTables order.
func (d *DB) Schema(ctx context.Context) ([]TableInfo, error) {
	present, err := d.tableSet(ctx)
	if err != nil {
		return nil, err
	}

	var out []TableInfo
	for _, name := range AllTables {
		if !present[name] {
			continue
		}
		info := TableInfo{Name: name}
		if info.Columns, err = d.tableColumns(ctx, name); err != nil {
			return nil, err
		}
		if info.Rows, err = d.Count(ctx, name); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Count returns the number of rows in table.
func (d *DB) Count(ctx context.Context, table string) (int, error) {
	var n int
	q := "SELECT COUNT(*) FROM " + quoteIdent(table)
	if err := d.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (d *DB) tableSet(ctx context.Context) (map[string]bool, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		set[name] = true
	}
	return set, rows.Err()
}

func (d *DB) missingTables(ctx context.Context) ([]string, error) {
	present, err := d.tableSet(ctx)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range CoreTables {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (d *DB) tableColumns(ctx context.Context, table string) ([]Column, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, Column{Name: name, Type: ctype, PrimaryKey: pk > 0})
	}
	return cols, rows.Err()
}

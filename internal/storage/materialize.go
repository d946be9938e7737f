// ABOUTME: Loads normalized relations into the SQLite tables.
// ABOUTME: Runs in one transaction with prepared inserts, replacing prior contents.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/chococrunch/internal/ingest"
	"github.com/harperreed/chococrunch/internal/models"
)

// MaterializeSummary holds row counts written per table.
type MaterializeSummary struct {
	Products  int `json:"product_info" yaml:"product_info"`
	Nutrients int `json:"nutrient_info" yaml:"nutrient_info"`
	Derived   int `json:"derived_metrics" yaml:"derived_metrics"`
	Market    int `json:"market_analysis" yaml:"market_analysis"`
}

var productColumns = []string{
	ingest.ColCode, ingest.ColName, ingest.ColBrand, ingest.ColCountries,
	ingest.ColManufacturer, ingest.ColCacaoPercentage, ingest.ColPrice,
}

var nutrientColumns = []string{
	ingest.ColCode,
	ingest.ColEnergyKcal, ingest.ColEnergyKJ, ingest.ColCarbohydrates, ingest.ColSugars,
	ingest.ColFat, ingest.ColSaturatedFat, ingest.ColProteins, ingest.ColFiber,
	ingest.ColSalt, ingest.ColSodium, ingest.ColNutritionScore, ingest.ColNovaGroup,
	ingest.ColFruitsVegNuts, ingest.ColAdditives, ingest.ColIngredients,
}

var derivedColumns = []string{
	ingest.ColCode,
	ingest.ColCalorieCategory, "calorie_rank",
	ingest.ColSugarCategory, "sugar_rank",
	"fat_category", "fat_rank",
	ingest.ColUltraProcessed, "health_score",
	ingest.ColSugarToCarbRatio, "processed_ingredient_ratio",
}

var marketColumns = []string{
	ingest.ColCode, ingest.ColRegion, ingest.ColSalesUnits, ingest.ColMarketShare, ingest.ColRating,
}

// Materialize replaces the contents of every table with rel.
func (d *DB) Materialize(ctx context.Context, rel models.Relations) (*MaterializeSummary, error) {
	if len(rel.Nutrients) != len(rel.Products) || len(rel.Derived) != len(rel.Products) {
		return nil, fmt.Errorf("materialize: relations are not aligned (%d products, %d nutrients, %d derived)",
			len(rel.Products), len(rel.Nutrients), len(rel.Derived))
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := len(AllTables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(AllTables[i])); err != nil {
			return nil, fmt.Errorf("clear %s: %w", AllTables[i], err)
		}
	}

	summary := &MaterializeSummary{}

	err = insertAll(ctx, tx, TableProducts, productColumns, len(rel.Products), func(i int) []any {
		p := rel.Products[i]
		return []any{p.Code, nullable(p.Name), nullable(p.Brand), nullable(p.Countries),
			nullable(p.Manufacturer), nullable(p.CacaoPercentage), nullable(p.Price)}
	})
	if err != nil {
		return nil, err
	}
	summary.Products = len(rel.Products)

	err = insertAll(ctx, tx, TableNutrients, nutrientColumns, len(rel.Nutrients), func(i int) []any {
		n := rel.Nutrients[i]
		return []any{n.Code,
			nullable(n.EnergyKcal), nullable(n.EnergyKJ), nullable(n.Carbohydrates), nullable(n.Sugars),
			nullable(n.Fat), nullable(n.SaturatedFat), nullable(n.Proteins), nullable(n.Fiber),
			nullable(n.Salt), nullable(n.Sodium), nullable(n.NutritionScore), nullable(n.NovaGroup),
			nullable(n.FruitsVegNuts), nullable(n.Additives), nullable(n.Ingredients)}
	})
	if err != nil {
		return nil, err
	}
	summary.Nutrients = len(rel.Nutrients)

	err = insertAll(ctx, tx, TableDerived, derivedColumns, len(rel.Derived), func(i int) []any {
		m := rel.Derived[i]
		return []any{m.Code,
			m.CalorieCategory(), m.CalorieTier.Rank(),
			m.SugarCategory(), m.SugarTier.Rank(),
			m.FatCategory(), m.FatTier.Rank(),
			m.UltraProcessed.String(), nullable(m.HealthScore),
			nullable(m.SugarToCarbRatio), nullable(m.ProcessedIngredientRatio)}
	})
	if err != nil {
		return nil, err
	}
	summary.Derived = len(rel.Derived)

	err = insertAll(ctx, tx, TableMarket, marketColumns, len(rel.Market), func(i int) []any {
		m := rel.Market[i]
		return []any{m.Code, m.Region, nullable(m.SalesUnits), nullable(m.MarketShare), nullable(m.Rating)}
	})
	if err != nil {
		return nil, err
	}
	summary.Market = len(rel.Market)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return summary, nil
}

func insertAll(ctx context.Context, tx *sql.Tx, table string, cols []string, n int, row func(int) []any) error {
	if n == 0 {
		return nil
	}
	placeholders := make([]byte, 0, len(cols)*3)
	for i := range cols {
		if i > 0 {
			placeholders = append(placeholders, ", "...)
		}
		placeholders = append(placeholders, '?')
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), joinIdents(cols), placeholders)

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		args := row(i)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %v: %w", table, args[0], err)
		}
	}
	return nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

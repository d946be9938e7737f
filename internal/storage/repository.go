// ABOUTME: Read side of the store: rebuilds normalized relations from the tables.
// ABOUTME: Lets a materialized database feed the same analysis as a freshly loaded CSV.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/chococrunch/internal/models"
)

// LoadRelations reads products, nutrients and derived metrics back as
// index-aligned relations ordered by product code, plus any market rows.
func (d *DB) LoadRelations(ctx context.Context) (models.Relations, error) {
	var rel models.Relations

	cols := make([]string, 0, len(productColumns)+len(nutrientColumns)+len(derivedColumns))
	for _, c := range productColumns {
		cols = append(cols, "p."+quoteIdent(c))
	}
	for _, c := range nutrientColumns[1:] {
		cols = append(cols, "n."+quoteIdent(c))
	}
	for _, c := range []string{"calorie_rank", "sugar_rank", "fat_rank", "is_ultra_processed",
		"health_score", "sugar_to_carb_ratio", "processed_ingredient_ratio"} {
		cols = append(cols, "d."+quoteIdent(c))
	}
	query := `SELECT ` + strings.Join(cols, ", ") + `
		FROM product_info p
		JOIN nutrient_info n ON n.product_code = p.product_code
		JOIN derived_metrics d ON d.product_code = p.product_code
		ORDER BY p.product_code`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return rel, fmt.Errorf("load relations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, n, m, err := scanProductRow(rows)
		if err != nil {
			return rel, err
		}
		rel.Products = append(rel.Products, p)
		rel.Nutrients = append(rel.Nutrients, n)
		rel.Derived = append(rel.Derived, m)
	}
	if err := rows.Err(); err != nil {
		return rel, fmt.Errorf("load relations: %w", err)
	}

	market, err := d.loadMarket(ctx)
	if err != nil {
		return rel, err
	}
	rel.Market = market
	return rel, nil
}

func scanProductRow(rows *sql.Rows) (models.Product, models.NutrientProfile, models.DerivedMetrics, error) {
	var (
		p models.Product
		n models.NutrientProfile
		m models.DerivedMetrics

		name, brand, countries, manufacturer sql.NullString
		cacao, price                          sql.NullFloat64

		energyKcal, energyKJ, carbs, sugars, fat, satFat, proteins, fiber sql.NullFloat64
		salt, sodium, score, fvn, additives, ingredients                sql.NullFloat64
		nova                                                            sql.NullInt64

		calorieRank, sugarRank, fatRank int
		ultra                           string
		health, ratio, processed        sql.NullFloat64
	)
	err := rows.Scan(
		&p.Code, &name, &brand, &countries, &manufacturer, &cacao, &price,
		&energyKcal, &energyKJ, &carbs, &sugars, &fat, &satFat, &proteins, &fiber,
		&salt, &sodium, &score, &nova, &fvn, &additives, &ingredients,
		&calorieRank, &sugarRank, &fatRank, &ultra, &health, &ratio, &processed,
	)
	if err != nil {
		return p, n, m, fmt.Errorf("scan relations: %w", err)
	}

	p.Name, p.Brand = nullString(name), nullString(brand)
	p.Countries, p.Manufacturer = nullString(countries), nullString(manufacturer)
	p.CacaoPercentage, p.Price = nullFloat(cacao), nullFloat(price)

	n.Code = p.Code
	n.EnergyKcal, n.EnergyKJ = nullFloat(energyKcal), nullFloat(energyKJ)
	n.Carbohydrates, n.Sugars = nullFloat(carbs), nullFloat(sugars)
	n.Fat, n.SaturatedFat = nullFloat(fat), nullFloat(satFat)
	n.Proteins, n.Fiber = nullFloat(proteins), nullFloat(fiber)
	n.Salt, n.Sodium = nullFloat(salt), nullFloat(sodium)
	n.NutritionScore, n.FruitsVegNuts = nullFloat(score), nullFloat(fvn)
	n.Additives, n.Ingredients = nullFloat(additives), nullFloat(ingredients)
	if nova.Valid {
		v := int(nova.Int64)
		n.NovaGroup = &v
	}

	m.Code = p.Code
	m.CalorieTier = models.Tier(calorieRank)
	m.SugarTier = models.Tier(sugarRank)
	m.FatTier = models.Tier(fatRank)
	if m.UltraProcessed, err = models.ParseFlag(ultra); err != nil {
		return p, n, m, fmt.Errorf("scan relations %s: %w", p.Code, err)
	}
	m.HealthScore = nullFloat(health)
	m.SugarToCarbRatio = nullFloat(ratio)
	m.ProcessedIngredientRatio = nullFloat(processed)
	return p, n, m, nil
}

func (d *DB) loadMarket(ctx context.Context) ([]models.MarketAnalysis, error) {
	query := `SELECT ` + joinIdents(marketColumns) + ` FROM market_analysis ORDER BY product_code, region`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load market: %w", err)
	}
	defer rows.Close()

	var out []models.MarketAnalysis
	for rows.Next() {
		var (
			m                    models.MarketAnalysis
			units, share, rating sql.NullFloat64
		)
		if err := rows.Scan(&m.Code, &m.Region, &units, &share, &rating); err != nil {
			return nil, fmt.Errorf("scan market: %w", err)
		}
		m.SalesUnits, m.MarketShare, m.Rating = nullFloat(units), nullFloat(share), nullFloat(rating)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load market: %w", err)
	}
	return out, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

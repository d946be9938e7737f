// ABOUTME: Product, nutrient, derived-metric and market models for chocolate data.
// ABOUTME: Relations groups the normalized rows that are materialized together.
package models

// Product is one chocolate product, identified by its barcode-like code.
type Product struct {
	Code            string   `json:"product_code" yaml:"product_code"`
	Name            *string  `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Brand           *string  `json:"brand,omitempty" yaml:"brand,omitempty"`
	Countries       *string  `json:"countries,omitempty" yaml:"countries,omitempty"`
	Manufacturer    *string  `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	CacaoPercentage *float64 `json:"cacao_percentage,omitempty" yaml:"cacao_percentage,omitempty"`
	Price           *float64 `json:"price,omitempty" yaml:"price,omitempty"`
}

// NutrientProfile holds per-100g nutrient values for one product.
// Every numeric field is nil when the source cell was empty.
type NutrientProfile struct {
	Code           string   `json:"product_code" yaml:"product_code"`
	EnergyKcal     *float64 `json:"energy_kcal,omitempty" yaml:"energy_kcal,omitempty"`
	EnergyKJ       *float64 `json:"energy_kj,omitempty" yaml:"energy_kj,omitempty"`
	Carbohydrates  *float64 `json:"carbohydrates,omitempty" yaml:"carbohydrates,omitempty"`
	Sugars         *float64 `json:"sugars,omitempty" yaml:"sugars,omitempty"`
	Fat            *float64 `json:"fat,omitempty" yaml:"fat,omitempty"`
	SaturatedFat   *float64 `json:"saturated_fat,omitempty" yaml:"saturated_fat,omitempty"`
	Proteins       *float64 `json:"proteins,omitempty" yaml:"proteins,omitempty"`
	Fiber          *float64 `json:"fiber,omitempty" yaml:"fiber,omitempty"`
	Salt           *float64 `json:"salt,omitempty" yaml:"salt,omitempty"`
	Sodium         *float64 `json:"sodium,omitempty" yaml:"sodium,omitempty"`
	NutritionScore *float64 `json:"nutrition_score_fr,omitempty" yaml:"nutrition_score_fr,omitempty"`
	NovaGroup      *int     `json:"nova_group,omitempty" yaml:"nova_group,omitempty"`
	FruitsVegNuts  *float64 `json:"fruits_vegetables_nuts,omitempty" yaml:"fruits_vegetables_nuts,omitempty"`
	Additives      *float64 `json:"additives_n,omitempty" yaml:"additives_n,omitempty"`
	Ingredients    *float64 `json:"ingredients_n,omitempty" yaml:"ingredients_n,omitempty"`
}

// DerivedMetrics are computed from a NutrientProfile at load time.
type DerivedMetrics struct {
	Code                     string   `json:"product_code" yaml:"product_code"`
	CalorieTier              Tier     `json:"calorie_tier" yaml:"calorie_tier"`
	SugarTier                Tier     `json:"sugar_tier" yaml:"sugar_tier"`
	FatTier                  Tier     `json:"fat_tier" yaml:"fat_tier"`
	UltraProcessed           Flag     `json:"ultra_processed" yaml:"ultra_processed"`
	HealthScore              *float64 `json:"health_score,omitempty" yaml:"health_score,omitempty"`
	SugarToCarbRatio         *float64 `json:"sugar_to_carb_ratio,omitempty" yaml:"sugar_to_carb_ratio,omitempty"`
	ProcessedIngredientRatio *float64 `json:"processed_ingredient_ratio,omitempty" yaml:"processed_ingredient_ratio,omitempty"`
}

// CalorieCategory returns the stored calorie label.
func (d DerivedMetrics) CalorieCategory() string { return d.CalorieTier.Label(MetricCalories) }

// SugarCategory returns the stored sugar label.
func (d DerivedMetrics) SugarCategory() string { return d.SugarTier.Label(MetricSugar) }

// FatCategory returns the stored fat label.
func (d DerivedMetrics) FatCategory() string { return d.FatTier.Label(MetricFat) }

// MarketAnalysis is an optional region-scoped sales row for a product.
type MarketAnalysis struct {
	Code        string   `json:"product_code" yaml:"product_code"`
	Region      string   `json:"region" yaml:"region"`
	SalesUnits  *float64 `json:"sales_units,omitempty" yaml:"sales_units,omitempty"`
	MarketShare *float64 `json:"market_share,omitempty" yaml:"market_share,omitempty"`
	Rating      *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// Relations is the normalized form of a loaded dataset.
// Products, Nutrients and Derived are index-aligned by product code order.
type Relations struct {
	Products  []Product
	Nutrients []NutrientProfile
	Derived   []DerivedMetrics
	Market    []MarketAnalysis
}

// Len returns the number of products.
func (r *Relations) Len() int {
	return len(r.Products)
}

// ABOUTME: CSV column names for the cleaned chocolate dataset.
// ABOUTME: Hyphenated source names are kept verbatim and quoted in SQL.
package ingest

// Product columns.
const (
	ColCode            = "product_code"
	ColName            = "product_name"
	ColBrand           = "brand"
	ColCountries       = "countries"
	ColManufacturer    = "manufacturer"
	ColCacaoPercentage = "cacao_percentage"
	ColPrice           = "price"
)

// Nutrient columns.
const (
	ColEnergyKcal     = "energy-kcal_value"
	ColEnergyKJ       = "energy-kj_value"
	ColCarbohydrates  = "carbohydrates_value"
	ColSugars         = "sugars_value"
	ColFat            = "fat_value"
	ColSaturatedFat   = "saturated-fat_value"
	ColProteins       = "proteins_value"
	ColFiber          = "fiber_value"
	ColSalt           = "salt_value"
	ColSodium         = "sodium_value"
	ColNutritionScore = "nutrition-score-fr"
	ColNovaGroup      = "nova-group"
	ColFruitsVegNuts  = "fruits-vegetables-nuts-estimate-from-ingredients_100g"
	ColAdditives      = "additives_n"
	ColIngredients    = "ingredients_n"
)

// Market columns.
const (
	ColRegion      = "region"
	ColSalesUnits  = "sales_units"
	ColMarketShare = "market_share"
	ColRating      = "rating"
)

// Derived columns some cleaned exports already carry. They are ignored on
// load because derivation always runs.
const (
	ColSugarToCarbRatio = "sugar_to_carb_ratio"
	ColCalorieCategory  = "calorie_category"
	ColSugarCategory    = "sugar_category"
	ColUltraProcessed   = "is_ultra_processed"
)

// RequiredColumns must be present in every input file.
var RequiredColumns = []string{
	ColCode, ColName, ColBrand,
	ColEnergyKcal, ColEnergyKJ, ColCarbohydrates, ColSugars,
	ColFat, ColSaturatedFat, ColProteins, ColFiber,
	ColSalt, ColSodium, ColNutritionScore, ColNovaGroup,
	ColFruitsVegNuts,
}

// OptionalColumns are read when present.
var OptionalColumns = []string{
	ColCountries, ColManufacturer, ColCacaoPercentage, ColPrice,
	ColAdditives, ColIngredients,
	ColRegion, ColSalesUnits, ColMarketShare, ColRating,
}

// DerivedColumns are recognised and ignored.
var DerivedColumns = []string{
	ColSugarToCarbRatio, ColCalorieCategory, ColSugarCategory, ColUltraProcessed,
}

// NumericColumns lists every column parsed as a number.
var NumericColumns = []string{
	ColCacaoPercentage, ColPrice,
	ColEnergyKcal, ColEnergyKJ, ColCarbohydrates, ColSugars,
	ColFat, ColSaturatedFat, ColProteins, ColFiber,
	ColSalt, ColSodium, ColNutritionScore, ColNovaGroup,
	ColFruitsVegNuts, ColAdditives, ColIngredients,
	ColSalesUnits, ColMarketShare, ColRating,
}

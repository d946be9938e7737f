// ABOUTME: SQL text of every built-in catalog query.
// ABOUTME: Each ORDER BY ends with an explicit tie-break so results are deterministic.
package catalog

func bar(label, value string) *ChartSpec { return &ChartSpec{Kind: ChartBar, Label: label, Value: value} }
func pie(label, value string) *ChartSpec { return &ChartSpec{Kind: ChartPie, Label: label, Value: value} }

// Shared joins.
const fromAll = `
FROM derived_metrics d
JOIN product_info p ON p.product_code = d.product_code
JOIN nutrient_info n ON n.product_code = d.product_code`

const hasBrand = `p.brand IS NOT NULL AND p.brand != ''`

func builtinQueries() []Query {
	return []Query{
		// Product info.
		{
			ID: "products-per-brand", Section: SectionProduct, Number: 1,
			Title:       "Products per Brand",
			Description: "Number of products each brand carries.",
			SQL: `SELECT brand, COUNT(product_code) AS product_count
FROM product_info
WHERE brand IS NOT NULL AND brand != ''
GROUP BY brand
ORDER BY product_count DESC, brand ASC`,
		},
		{
			ID: "unique-products-per-brand", Section: SectionProduct, Number: 2,
			Title:       "Unique Products per Brand",
			Description: "Distinct product codes per brand.",
			SQL: `SELECT brand, COUNT(DISTINCT product_code) AS unique_products
FROM product_info
WHERE brand IS NOT NULL AND brand != ''
GROUP BY brand
ORDER BY unique_products DESC, brand ASC`,
		},
		{
			ID: "top-brands", Section: SectionProduct, Number: 3,
			Title:       "Top 5 Brands by Product Count",
			Description: "The five brands with the most products.",
			SQL: `SELECT brand, COUNT(product_code) AS product_count
FROM product_info
WHERE brand IS NOT NULL AND brand != ''
GROUP BY brand
ORDER BY product_count DESC, brand ASC
LIMIT 5`,
			Chart: bar("brand", "product_count"),
		},
		{
			ID: "missing-product-names", Section: SectionProduct, Number: 4,
			Title:       "Products with Missing Names",
			Description: "Products whose name is empty.",
			SQL: `SELECT product_code, brand
FROM product_info
WHERE product_name IS NULL OR product_name = ''
ORDER BY product_code`,
		},
		{
			ID: "unique-brand-count", Section: SectionProduct, Number: 5,
			Title:       "Number of Unique Brands",
			Description: "Distinct non-empty brands.",
			SQL: `SELECT COUNT(DISTINCT brand) AS total_brands
FROM product_info
WHERE brand IS NOT NULL AND brand != ''`,
		},
		{
			ID: "codes-starting-with-3", Section: SectionProduct, Number: 6,
			Title:       "Product Codes Starting with 3",
			Description: "Up to 20 products whose code begins with 3.",
			SQL: `SELECT product_code, product_name, brand
FROM product_info
WHERE product_code LIKE '3%'
ORDER BY product_code
LIMIT 20`,
		},

		// Nutrient info.
		{
			ID: "top-energy-products", Section: SectionNutrient, Number: 7,
			Title:       "Top 10 Highest Energy Products",
			Description: "Products with the most kcal per 100 g.",
			SQL: `SELECT n.product_code, p.product_name,
	n."energy-kcal_value" AS energy_kcal,
	n."energy-kj_value" AS energy_kj
FROM nutrient_info n
JOIN product_info p ON p.product_code = n.product_code
WHERE n."energy-kcal_value" IS NOT NULL
ORDER BY energy_kcal DESC, n.product_code ASC
LIMIT 10`,
			Chart: bar("product_code", "energy_kcal"),
		},
		{
			ID: "avg-sugar-per-nova-group", Section: SectionNutrient, Number: 8,
			Title:       "Average Sugar per NOVA Group",
			Description: "Mean sugar and product count for each NOVA processing group.",
			SQL: `SELECT "nova-group" AS nova_group,
	ROUND(AVG(sugars_value), 2) AS avg_sugar,
	COUNT(*) AS product_count
FROM nutrient_info
WHERE "nova-group" IS NOT NULL
GROUP BY "nova-group"
ORDER BY nova_group`,
			Chart: bar("nova_group", "avg_sugar"),
		},
		{
			ID: "high-fat-count", Section: SectionNutrient, Number: 9,
			Title:       "Products with Fat above 20 g",
			Description: "Count of products with more than 20 g fat per 100 g.",
			SQL: `SELECT COUNT(product_code) AS high_fat_products
FROM nutrient_info
WHERE fat_value > 20`,
		},
		{
			ID: "avg-carbohydrates", Section: SectionNutrient, Number: 10,
			Title:       "Average Carbohydrates",
			Description: "Mean, minimum and maximum carbohydrates per 100 g.",
			SQL: `SELECT ROUND(AVG(carbohydrates_value), 2) AS avg_carbohydrates,
	MIN(carbohydrates_value) AS min_carbs,
	MAX(carbohydrates_value) AS max_carbs
FROM nutrient_info`,
		},
		{
			ID: "high-sodium-products", Section: SectionNutrient, Number: 11,
			Title:       "Products with Sodium above 1 g",
			Description: "Products exceeding 1 g sodium per 100 g.",
			SQL: `SELECT product_code, sodium_value
FROM nutrient_info
WHERE sodium_value > 1.0
ORDER BY sodium_value DESC, product_code ASC`,
		},
		{
			ID: "fvn-product-count", Section: SectionNutrient, Number: 12,
			Title:       "Products with Fruits, Vegetables or Nuts",
			Description: "Count of products with a positive fruits/vegetables/nuts estimate.",
			SQL: `SELECT COUNT(product_code) AS products_with_fvn
FROM nutrient_info
WHERE "fruits-vegetables-nuts-estimate-from-ingredients_100g" > 0`,
		},
		{
			ID: "high-energy-count", Section: SectionNutrient, Number: 13,
			Title:       "Products above 500 kcal",
			Description: "Count and mean energy of products over 500 kcal per 100 g.",
			SQL: `SELECT COUNT(product_code) AS high_energy_products,
	ROUND(AVG("energy-kcal_value"), 2) AS avg_energy
FROM nutrient_info
WHERE "energy-kcal_value" > 500`,
		},

		// Derived metrics.
		{
			ID: "products-per-calorie-category", Section: SectionDerived, Number: 14,
			Title:       "Products per Calorie Category",
			Description: "Product count per calorie tier, Unknown last.",
			SQL: `SELECT calorie_category, COUNT(product_code) AS product_count
FROM derived_metrics
GROUP BY calorie_category, calorie_rank
ORDER BY calorie_rank = 0, calorie_rank`,
			Chart: bar("calorie_category", "product_count"),
		},
		{
			ID: "high-sugar-count", Section: SectionDerived, Number: 15,
			Title:       "High Sugar Products",
			Description: "Count of products in the High Sugar tier.",
			SQL: `SELECT COUNT(product_code) AS high_sugar_products
FROM derived_metrics
WHERE sugar_category = 'High Sugar'`,
		},
		{
			ID: "avg-ratio-high-calorie", Section: SectionDerived, Number: 16,
			Title:       "Average Sugar-to-Carb Ratio for High Calorie Products",
			Description: "Mean sugar-to-carb ratio within the High Calorie tier.",
			SQL: `SELECT ROUND(AVG(sugar_to_carb_ratio), 3) AS avg_ratio
FROM derived_metrics
WHERE calorie_category = 'High Calorie'`,
		},
		{
			ID: "double-risk-count", Section: SectionDerived, Number: 17,
			Title:       "High Calorie and High Sugar Products",
			Description: "Count of products that are both High Calorie and High Sugar.",
			SQL: `SELECT COUNT(product_code) AS risky_products
FROM derived_metrics
WHERE calorie_category = 'High Calorie'
	AND sugar_category = 'High Sugar'`,
		},
		{
			ID: "ultra-processed-count", Section: SectionDerived, Number: 18,
			Title:       "Ultra-Processed Products",
			Description: "Products by ultra-processed flag.",
			SQL: `SELECT is_ultra_processed, COUNT(product_code) AS product_count
FROM derived_metrics
GROUP BY is_ultra_processed
ORDER BY CASE is_ultra_processed WHEN 'Yes' THEN 1 WHEN 'No' THEN 2 ELSE 3 END`,
			Chart: pie("is_ultra_processed", "product_count"),
		},
		{
			ID: "high-ratio-count", Section: SectionDerived, Number: 19,
			Title:       "Sugar-to-Carb Ratio above 0.7",
			Description: "Count of products where sugar is over 70% of carbohydrates.",
			SQL: `SELECT COUNT(product_code) AS high_ratio_products
FROM derived_metrics
WHERE sugar_to_carb_ratio > 0.7`,
		},
		{
			ID: "avg-ratio-per-calorie-category", Section: SectionDerived, Number: 20,
			Title:       "Average Sugar-to-Carb Ratio per Calorie Category",
			Description: "Mean sugar-to-carb ratio for each calorie tier, Unknown last.",
			SQL: `SELECT calorie_category, ROUND(AVG(sugar_to_carb_ratio), 3) AS avg_ratio
FROM derived_metrics
GROUP BY calorie_category, calorie_rank
ORDER BY calorie_rank = 0, calorie_rank`,
			Chart: bar("calorie_category", "avg_ratio"),
		},

		// Joins.
		{
			ID: "top-high-calorie-brands", Section: SectionJoins, Number: 21,
			Title:       "Top 5 Brands with Most High Calorie Products",
			Description: "Brands ranked by High Calorie product count, with their share of the brand's range.",
			SQL: `SELECT p.brand,
	SUM(CASE WHEN d.calorie_category = 'High Calorie' THEN 1 ELSE 0 END) AS high_calorie_count,
	ROUND(AVG(CASE WHEN d.calorie_category = 'High Calorie' THEN n."energy-kcal_value" END), 1) AS avg_calories,
	COUNT(*) AS total_products,
	ROUND(100.0 * SUM(CASE WHEN d.calorie_category = 'High Calorie' THEN 1 ELSE 0 END) / COUNT(*), 1) AS percentage_high_cal` + fromAll + `
WHERE ` + hasBrand + `
GROUP BY p.brand
HAVING high_calorie_count > 0
ORDER BY high_calorie_count DESC, p.brand ASC
LIMIT 5`,
			Chart: bar("brand", "high_calorie_count"),
		},
		{
			ID: "avg-energy-per-calorie-category", Section: SectionJoins, Number: 22,
			Title:       "Average Energy per Calorie Category",
			Description: "Energy spread within each known calorie tier.",
			SQL: `SELECT d.calorie_category,
	ROUND(AVG(n."energy-kcal_value"), 1) AS avg_energy,
	ROUND(MIN(n."energy-kcal_value"), 1) AS min_energy,
	ROUND(MAX(n."energy-kcal_value"), 1) AS max_energy,
	COUNT(*) AS product_count
FROM derived_metrics d
JOIN nutrient_info n ON n.product_code = d.product_code
WHERE d.calorie_rank > 0
GROUP BY d.calorie_category
ORDER BY avg_energy DESC, d.calorie_category ASC`,
			Chart: bar("calorie_category", "avg_energy"),
		},
		{
			ID: "ultra-processed-per-brand", Section: SectionJoins, Number: 23,
			Title:       "Ultra-Processed Products per Brand",
			Description: "Brands with at least one ultra-processed product, by share of their range.",
			SQL: `SELECT p.brand,
	SUM(CASE WHEN d.is_ultra_processed = 'Yes' THEN 1 ELSE 0 END) AS ultra_processed_count,
	COUNT(*) AS total_products,
	ROUND(100.0 * SUM(CASE WHEN d.is_ultra_processed = 'Yes' THEN 1 ELSE 0 END) / COUNT(*), 1) AS percentage_ultra_processed
FROM derived_metrics d
JOIN product_info p ON p.product_code = d.product_code
WHERE ` + hasBrand + `
GROUP BY p.brand
HAVING ultra_processed_count > 0
ORDER BY percentage_ultra_processed DESC, ultra_processed_count DESC, p.brand ASC
LIMIT 15`,
			Chart: bar("brand", "percentage_ultra_processed"),
		},
		{
			ID: "high-sugar-high-calorie", Section: SectionJoins, Number: 24,
			Title:       "High Sugar and High Calorie Products",
			Description: "Double risk products, highest energy first.",
			SQL: `SELECT p.product_code, p.product_name, p.brand,
	n."energy-kcal_value" AS energy_kcal,
	n.sugars_value AS sugars,
	n.fat_value AS fat,
	ROUND(d.sugar_to_carb_ratio, 2) AS sugar_to_carb_ratio,
	'Double Risk' AS risk_label` + fromAll + `
WHERE d.calorie_category = 'High Calorie'
	AND d.sugar_category = 'High Sugar'
ORDER BY energy_kcal DESC, sugars DESC, p.product_code ASC
LIMIT 20`,
		},
		{
			ID: "avg-sugar-ultra-processed", Section: SectionJoins, Number: 25,
			Title:       "Average Sugar in Ultra-Processed Products per Brand",
			Description: "Brands with at least two ultra-processed products, by mean sugar.",
			SQL: `SELECT p.brand,
	COUNT(*) AS ultra_processed_count,
	ROUND(AVG(n.sugars_value), 2) AS avg_sugar,
	ROUND(MIN(n.sugars_value), 2) AS min_sugar,
	ROUND(MAX(n.sugars_value), 2) AS max_sugar,
	ROUND(AVG(n."energy-kcal_value"), 1) AS avg_calories` + fromAll + `
WHERE d.is_ultra_processed = 'Yes'
	AND ` + hasBrand + `
GROUP BY p.brand
HAVING COUNT(*) >= 2
ORDER BY avg_sugar DESC, p.brand ASC
LIMIT 10`,
			Chart: bar("brand", "avg_sugar"),
		},
		{
			ID: "fvn-per-calorie-category", Section: SectionJoins, Number: 26,
			Title:       "Fruits, Vegetables and Nuts per Calorie Category",
			Description: "Share of each known calorie tier with a positive fruits/vegetables/nuts estimate.",
			SQL: `SELECT d.calorie_category,
	COUNT(*) AS total_products,
	SUM(CASE WHEN n."fruits-vegetables-nuts-estimate-from-ingredients_100g" > 0 THEN 1 ELSE 0 END) AS products_with_fvn,
	ROUND(100.0 * SUM(CASE WHEN n."fruits-vegetables-nuts-estimate-from-ingredients_100g" > 0 THEN 1 ELSE 0 END) / COUNT(*), 1) AS percentage_with_fvn
FROM derived_metrics d
JOIN nutrient_info n ON n.product_code = d.product_code
WHERE d.calorie_rank > 0
GROUP BY d.calorie_category
ORDER BY percentage_with_fvn DESC, d.calorie_category ASC`,
			Chart: bar("calorie_category", "percentage_with_fvn"),
		},
		{
			ID: "top-sugar-to-carb", Section: SectionJoins, Number: 27,
			Title:       "Top 5 Products by Sugar-to-Carb Ratio",
			Description: "Products whose carbohydrates are most concentrated in sugar.",
			SQL: `SELECT p.product_code, p.product_name, p.brand,
	ROUND(d.sugar_to_carb_ratio, 3) AS sugar_to_carb_ratio,
	ROUND(d.sugar_to_carb_ratio * 100, 1) AS percentage_sugar,
	n.sugars_value AS sugars,
	n.carbohydrates_value AS carbohydrates,
	d.calorie_category` + fromAll + `
WHERE d.sugar_to_carb_ratio IS NOT NULL
ORDER BY d.sugar_to_carb_ratio DESC, p.product_code ASC
LIMIT 5`,
		},

		// Overview.
		{
			ID: "overview-kpis", Section: SectionOverview, Number: 28,
			Title:       "Key Metrics",
			Description: "Headline counts and averages for the whole dataset.",
			SQL: `SELECT COUNT(*) AS total_products,
	COUNT(DISTINCT NULLIF(p.brand, '')) AS unique_brands,
	ROUND(AVG(n."energy-kcal_value"), 1) AS avg_calories,
	ROUND(AVG(n.sugars_value), 1) AS avg_sugar,
	ROUND(AVG(n.fat_value), 1) AS avg_fat,
	ROUND(AVG(n.proteins_value), 1) AS avg_protein,
	SUM(CASE WHEN d.calorie_category = 'High Calorie' THEN 1 ELSE 0 END) AS high_calorie_products,
	SUM(CASE WHEN d.sugar_category = 'High Sugar' THEN 1 ELSE 0 END) AS high_sugar_products,
	SUM(CASE WHEN n."fruits-vegetables-nuts-estimate-from-ingredients_100g" > 0 THEN 1 ELSE 0 END) AS fvn_products,
	ROUND(100.0 * SUM(CASE WHEN d.is_ultra_processed = 'Yes' THEN 1 ELSE 0 END) / COUNT(*), 1) AS ultra_processed_pct` + fromAll,
		},
		{
			ID: "top-10-brands", Section: SectionOverview, Number: 29,
			Title:       "Top 10 Brands",
			Description: "The ten brands with the most products.",
			SQL: `SELECT brand, COUNT(product_code) AS product_count
FROM product_info
WHERE brand IS NOT NULL AND brand != ''
GROUP BY brand
ORDER BY product_count DESC, brand ASC
LIMIT 10`,
			Chart: bar("brand", "product_count"),
		},
		{
			ID: "calorie-distribution", Section: SectionOverview, Number: 30,
			Title:       "Calorie Category Distribution",
			Description: "Share of products in each calorie tier.",
			SQL: `SELECT calorie_category, COUNT(*) AS product_count
FROM derived_metrics
GROUP BY calorie_category, calorie_rank
ORDER BY calorie_rank = 0, calorie_rank`,
			Chart: pie("calorie_category", "product_count"),
		},
		{
			ID: "sugar-distribution", Section: SectionOverview, Number: 31,
			Title:       "Sugar Category Distribution",
			Description: "Share of products in each sugar tier.",
			SQL: `SELECT sugar_category, COUNT(*) AS product_count
FROM derived_metrics
GROUP BY sugar_category, sugar_rank
ORDER BY sugar_rank = 0, sugar_rank`,
			Chart: pie("sugar_category", "product_count"),
		},

		// Market.
		{
			ID: "market-by-region", Section: SectionMarket, Number: 32,
			Title:       "Market by Region",
			Description: "Sales, share and rating per region.",
			SQL: `SELECT m.region,
	COUNT(DISTINCT m.product_code) AS products,
	ROUND(SUM(m.sales_units), 0) AS total_sales_units,
	ROUND(AVG(m.market_share), 3) AS avg_market_share,
	ROUND(AVG(m.rating), 2) AS avg_rating
FROM market_analysis m
GROUP BY m.region
ORDER BY total_sales_units DESC, m.region ASC`,
			Chart: bar("region", "total_sales_units"),
		},
		{
			ID: "market-by-brand", Section: SectionMarket, Number: 33,
			Title:       "Market by Brand",
			Description: "Top 10 brands by units sold across regions.",
			SQL: `SELECT p.brand,
	COUNT(DISTINCT m.region) AS regions,
	ROUND(SUM(m.sales_units), 0) AS total_sales_units,
	ROUND(AVG(m.rating), 2) AS avg_rating
FROM market_analysis m
JOIN product_info p ON p.product_code = m.product_code
WHERE ` + hasBrand + `
GROUP BY p.brand
ORDER BY total_sales_units DESC, p.brand ASC
LIMIT 10`,
			Chart: bar("brand", "total_sales_units"),
		},
	}
}

// ABOUTME: Category derivation from raw nutrient values using fixed thresholds.
// ABOUTME: Computes tiers, the ultra-processed flag, ratios and the health score.
package derive

import (
	"math"

	"github.com/harperreed/chococrunch/internal/models"
)

// Cutoffs holds the two boundaries of a three-tier metric.
// value < Low is TierLow, Low <= value < High is TierModerate, value >= High is TierHigh.
type Cutoffs struct {
	Low  float64
	High float64
}

// Fixed thresholds per 100g.
const (
	CalorieModerateKcal = 250.0
	CalorieHighKcal     = 500.0
	SugarModerateGrams  = 5.0
	SugarHighGrams      = 22.5
	FatModerateGrams    = 20.0
	FatHighGrams        = 30.0

	// UltraProcessedNova is the NOVA group that marks a product ultra-processed.
	UltraProcessedNova = 4
)

// Thresholds maps each metric to its cutoffs.
var Thresholds = map[models.Metric]Cutoffs{
	models.MetricCalories: {Low: CalorieModerateKcal, High: CalorieHighKcal},
	models.MetricSugar:    {Low: SugarModerateGrams, High: SugarHighGrams},
	models.MetricFat:      {Low: FatModerateGrams, High: FatHighGrams},
}

// Classify returns the tier of value for metric. A nil value, a NaN or an
// unknown metric yields TierUnknown.
func Classify(metric models.Metric, value *float64) models.Tier {
	c, ok := Thresholds[metric]
	if !ok || value == nil || math.IsNaN(*value) {
		return models.TierUnknown
	}
	switch v := *value; {
	case v < c.Low:
		return models.TierLow
	case v < c.High:
		return models.TierModerate
	default:
		return models.TierHigh
	}
}

// UltraProcessed returns FlagYes iff nova is 4, FlagNo for other groups and
// FlagUnknown when the group is missing.
func UltraProcessed(nova *int) models.Flag {
	if nova == nil {
		return models.FlagUnknown
	}
	return models.FlagOf(*nova == UltraProcessedNova)
}

// SugarToCarbRatio returns sugars/carbohydrates, or nil when either is
// missing or carbohydrates is not positive.
func SugarToCarbRatio(sugars, carbs *float64) *float64 {
	return ratio(sugars, carbs)
}

// ProcessedIngredientRatio returns additives/ingredients, or nil when either
// is missing or the ingredient count is not positive.
func ProcessedIngredientRatio(additives, ingredients *float64) *float64 {
	return ratio(additives, ingredients)
}

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den <= 0 || math.IsNaN(*num) || math.IsNaN(*den) {
		return nil
	}
	r := *num / *den
	return &r
}

// Health score penalties and bonuses: each term is value/scale*weight,
// capped at weight.
var (
	energyPenalty = term{scale: 900, weight: 30}
	sugarPenalty  = term{scale: 100, weight: 30}
	satFatPenalty = term{scale: 40, weight: 15}
	sodiumPenalty = term{scale: 2, weight: 10}
	fiberBonus    = term{scale: 10, weight: 5}
	fvnBonus      = term{scale: 100, weight: 5}
)

var novaPenalty = map[int]float64{3: 5, 4: 10}

type term struct {
	scale  float64
	weight float64
}

func (t term) apply(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || *v <= 0 {
		return 0
	}
	return math.Min(*v/t.scale*t.weight, t.weight)
}

// HealthScore returns a 0-100 score rounded to one decimal, higher is
// healthier. It is nil when energy or sugars is missing.
func HealthScore(n models.NutrientProfile) *float64 {
	if n.EnergyKcal == nil || n.Sugars == nil || math.IsNaN(*n.EnergyKcal) || math.IsNaN(*n.Sugars) {
		return nil
	}

	score := 100.0
	score -= energyPenalty.apply(n.EnergyKcal)
	score -= sugarPenalty.apply(n.Sugars)
	score -= satFatPenalty.apply(n.SaturatedFat)
	score -= sodiumPenalty.apply(n.Sodium)
	if n.NovaGroup != nil {
		score -= novaPenalty[*n.NovaGroup]
	}
	score += fiberBonus.apply(n.Fiber)
	score += fvnBonus.apply(n.FruitsVegNuts)

	score = math.Max(0, math.Min(100, score))
	score = math.Round(score*10) / 10
	return &score
}

// Metrics derives every computed attribute for one nutrient profile.
func Metrics(n models.NutrientProfile) models.DerivedMetrics {
	return models.DerivedMetrics{
		Code:                     n.Code,
		CalorieTier:              Classify(models.MetricCalories, n.EnergyKcal),
		SugarTier:                Classify(models.MetricSugar, n.Sugars),
		FatTier:                  Classify(models.MetricFat, n.Fat),
		UltraProcessed:           UltraProcessed(n.NovaGroup),
		HealthScore:              HealthScore(n),
		SugarToCarbRatio:         SugarToCarbRatio(n.Sugars, n.Carbohydrates),
		ProcessedIngredientRatio: ProcessedIngredientRatio(n.Additives, n.Ingredients),
	}
}

// All derives metrics for every profile, preserving order.
func All(nutrients []models.NutrientProfile) []models.DerivedMetrics {
	out := make([]models.DerivedMetrics, len(nutrients))
	for i, n := range nutrients {
		out[i] = Metrics(n)
	}
	return out
}

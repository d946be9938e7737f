// ABOUTME: Exploratory analysis of a loaded dataset for the EDA and summary pages.
// ABOUTME: Builds histograms, scatter points, correlations, NOVA and tier breakdowns.
package eda

import (
	"math"
	"sort"

	"github.com/harperreed/chococrunch/internal/ingest"
	"github.com/harperreed/chococrunch/internal/models"
)

// DefaultBins is the histogram bin count used by the dashboard.
const DefaultBins = 20

// Field is a numeric nutrient attribute.
type Field struct {
	Name  string
	Label string
	get   func(models.NutrientProfile) *float64
}

// Values returns the field for every profile, nil where missing.
func (f Field) Values(nutrients []models.NutrientProfile) []*float64 {
	out := make([]*float64, len(nutrients))
	for i, n := range nutrients {
		out[i] = f.get(n)
	}
	return out
}

// Nutrient fields.
var (
	FieldEnergy        = Field{"energy_kcal", "Energy (kcal)", func(n models.NutrientProfile) *float64 { return n.EnergyKcal }}
	FieldCarbohydrates = Field{"carbohydrates", "Carbohydrates (g)", func(n models.NutrientProfile) *float64 { return n.Carbohydrates }}
	FieldSugars        = Field{"sugars", "Sugars (g)", func(n models.NutrientProfile) *float64 { return n.Sugars }}
	FieldFat           = Field{"fat", "Fat (g)", func(n models.NutrientProfile) *float64 { return n.Fat }}
	FieldSaturatedFat  = Field{"saturated_fat", "Saturated fat (g)", func(n models.NutrientProfile) *float64 { return n.SaturatedFat }}
	FieldProteins      = Field{"proteins", "Proteins (g)", func(n models.NutrientProfile) *float64 { return n.Proteins }}
	FieldFiber         = Field{"fiber", "Fiber (g)", func(n models.NutrientProfile) *float64 { return n.Fiber }}
	FieldSodium        = Field{"sodium", "Sodium (g)", func(n models.NutrientProfile) *float64 { return n.Sodium }}
)

// HistogramFields are plotted as distributions.
var HistogramFields = []Field{FieldEnergy, FieldSugars, FieldProteins}

// CorrelationFields make up the correlation matrix.
var CorrelationFields = []Field{FieldEnergy, FieldCarbohydrates, FieldSugars, FieldFat, FieldProteins, FieldSodium}

// SummaryFields get a describe row and a box-plot summary.
var SummaryFields = []Field{FieldEnergy, FieldCarbohydrates, FieldSugars, FieldFat, FieldSaturatedFat, FieldProteins, FieldFiber, FieldSodium}

// FieldHistogram is the distribution of one field.
type FieldHistogram struct {
	Field string `json:"field" yaml:"field"`
	Label string `json:"label" yaml:"label"`
	Bins  []Bin  `json:"bins" yaml:"bins"`
}

// Point is one product on the calories-vs-sugar scatter.
type Point struct {
	Code     string  `json:"product_code" yaml:"product_code"`
	Name     string  `json:"product_name" yaml:"product_name"`
	Energy   float64 `json:"energy_kcal" yaml:"energy_kcal"`
	Sugar    float64 `json:"sugars" yaml:"sugars"`
	Category string  `json:"calorie_category" yaml:"calorie_category"`
}

// Matrix is a symmetric correlation matrix. Cells are nil when undefined.
type Matrix struct {
	Fields []string     `json:"fields" yaml:"fields"`
	Values [][]*float64 `json:"values" yaml:"values"`
}

// NovaStat summarises one NOVA group.
type NovaStat struct {
	Group     int      `json:"nova_group" yaml:"nova_group"`
	Count     int      `json:"count" yaml:"count"`
	MeanSugar *float64 `json:"mean_sugar,omitempty" yaml:"mean_sugar,omitempty"`
}

// TierCount is the number of products in one tier.
type TierCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// FieldSummary is the describe row for one field.
type FieldSummary struct {
	Field    string   `json:"field" yaml:"field"`
	Label    string   `json:"label" yaml:"label"`
	Describe Describe `json:"describe" yaml:"describe"`
}

// Analysis holds every EDA view of a dataset.
type Analysis struct {
	Histograms  []FieldHistogram `json:"histograms" yaml:"histograms"`
	Scatter     []Point          `json:"scatter" yaml:"scatter"`
	Correlation Matrix           `json:"correlation" yaml:"correlation"`
	Nova        []NovaStat       `json:"nova" yaml:"nova"`
	FatTiers    []TierCount      `json:"fat_tiers" yaml:"fat_tiers"`
	Summaries   []FieldSummary   `json:"summaries" yaml:"summaries"`
}

// Analyze computes every EDA view. bins <= 0 uses DefaultBins.
func Analyze(rel models.Relations, bins int) *Analysis {
	if bins <= 0 {
		bins = DefaultBins
	}
	a := &Analysis{
		Scatter:     Scatter(rel),
		Correlation: Correlation(rel.Nutrients, CorrelationFields),
		Nova:        NovaGroups(rel.Nutrients),
		FatTiers:    TierCounts(rel.Derived, models.MetricFat),
	}
	for _, f := range HistogramFields {
		a.Histograms = append(a.Histograms, FieldHistogram{
			Field: f.Name,
			Label: f.Label,
			Bins:  Histogram(present(f.Values(rel.Nutrients)), bins),
		})
	}
	for _, f := range SummaryFields {
		a.Summaries = append(a.Summaries, FieldSummary{
			Field:    f.Name,
			Label:    f.Label,
			Describe: Summarize(present(f.Values(rel.Nutrients))),
		})
	}
	return a
}

// Scatter returns every product with both energy and sugars present.
func Scatter(rel models.Relations) []Point {
	var out []Point
	for i, n := range rel.Nutrients {
		if n.EnergyKcal == nil || n.Sugars == nil {
			continue
		}
		p := Point{Code: n.Code, Energy: *n.EnergyKcal, Sugar: *n.Sugars}
		if i < len(rel.Products) && rel.Products[i].Name != nil {
			p.Name = *rel.Products[i].Name
		}
		if i < len(rel.Derived) {
			p.Category = rel.Derived[i].CalorieCategory()
		}
		out = append(out, p)
	}
	return out
}

// Correlation builds the pairwise-complete Pearson matrix for fields.
func Correlation(nutrients []models.NutrientProfile, fields []Field) Matrix {
	cols := make([][]*float64, len(fields))
	m := Matrix{Fields: make([]string, len(fields)), Values: make([][]*float64, len(fields))}
	for i, f := range fields {
		m.Fields[i] = f.Name
		cols[i] = f.Values(nutrients)
	}
	for i := range fields {
		m.Values[i] = make([]*float64, len(fields))
		for j := range fields {
			if j < i {
				m.Values[i][j] = m.Values[j][i]
				continue
			}
			m.Values[i][j], _ = Pearson(cols[i], cols[j])
		}
	}
	return m
}

// NovaGroups counts products per NOVA group with their mean sugar, in group
// order. Products without a group are skipped.
func NovaGroups(nutrients []models.NutrientProfile) []NovaStat {
	sugars := make(map[int][]float64)
	counts := make(map[int]int)
	for _, n := range nutrients {
		if n.NovaGroup == nil {
			continue
		}
		g := *n.NovaGroup
		counts[g]++
		if n.Sugars != nil {
			sugars[g] = append(sugars[g], *n.Sugars)
		}
	}

	groups := make([]int, 0, len(counts))
	for g := range counts {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	out := make([]NovaStat, 0, len(groups))
	for _, g := range groups {
		s := NovaStat{Group: g, Count: counts[g]}
		if vals := sugars[g]; len(vals) > 0 {
			mean := math.Round(Summarize(vals).Mean*100) / 100
			s.MeanSugar = &mean
		}
		out = append(out, s)
	}
	return out
}

// TierCounts counts derived rows per tier of metric, Low to High then Unknown.
func TierCounts(derived []models.DerivedMetrics, metric models.Metric) []TierCount {
	counts := make(map[models.Tier]int)
	for _, d := range derived {
		switch metric {
		case models.MetricCalories:
			counts[d.CalorieTier]++
		case models.MetricSugar:
			counts[d.SugarTier]++
		case models.MetricFat:
			counts[d.FatTier]++
		}
	}

	var out []TierCount
	for _, t := range append(append([]models.Tier{}, models.AllTiers...), models.TierUnknown) {
		if counts[t] == 0 {
			continue
		}
		out = append(out, TierCount{Label: t.Label(metric), Count: counts[t]})
	}
	return out
}

// ColumnStat describes one raw CSV column.
type ColumnStat struct {
	Name       string    `json:"name" yaml:"name"`
	NonNull    int       `json:"non_null" yaml:"non_null"`
	Missing    int       `json:"missing" yaml:"missing"`
	MissingPct float64   `json:"missing_pct" yaml:"missing_pct"`
	Unique     int       `json:"unique" yaml:"unique"`
	Numeric    *Describe `json:"numeric,omitempty" yaml:"numeric,omitempty"`
}

// DataSummary is the data summary page: load report plus per-column stats.
type DataSummary struct {
	Source  string         `json:"source" yaml:"source"`
	Report  ingest.Report  `json:"report" yaml:"report"`
	Columns []ColumnStat   `json:"columns" yaml:"columns"`
	Fields  []FieldSummary `json:"fields" yaml:"fields"`
}

// Summarise describes every column of the raw table behind ds.
func Summarise(ds *ingest.Dataset) *DataSummary {
	s := &DataSummary{Source: ds.Source, Report: ds.Report}
	if ds.Table != nil {
		s.Columns = Columns(ds.Table)
	}
	for _, f := range SummaryFields {
		s.Fields = append(s.Fields, FieldSummary{
			Field:    f.Name,
			Label:    f.Label,
			Describe: Summarize(present(f.Values(ds.Relations.Nutrients))),
		})
	}
	return s
}

// Columns computes ColumnStat for every header column in order. A column is
// numeric when it has values and every non-null cell parses as a number.
func Columns(t *ingest.Table) []ColumnStat {
	out := make([]ColumnStat, 0, len(t.Header))
	for _, col := range t.Header {
		st := ColumnStat{Name: col}
		seen := make(map[string]bool)
		var nums []float64
		numeric := true
		for row := range t.Rows {
			cell := t.Cell(row, col)
			if ingest.IsNull(cell) {
				st.Missing++
				continue
			}
			st.NonNull++
			seen[cell] = true
			if numeric {
				v, err := ingest.ParseNumber(cell)
				if err != nil || v == nil {
					numeric = false
					continue
				}
				nums = append(nums, *v)
			}
		}
		st.Unique = len(seen)
		if total := len(t.Rows); total > 0 {
			st.MissingPct = math.Round(float64(st.Missing)/float64(total)*1000) / 10
		}
		if numeric && len(nums) > 0 {
			d := Summarize(nums)
			st.Numeric = &d
		}
		out = append(out, st)
	}
	return out
}

// ABOUTME: Tests for exploratory statistics.
// ABOUTME: Covers histogram edges, quantiles, correlation with nulls and the sample summary.
package eda

import (
	"math"
	"testing"

	"github.com/harperreed/chococrunch/internal/ingest"
	"github.com/harperreed/chococrunch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "../../testdata/chococrunch_sample.csv"

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}, 5)
	require.Len(t, bins, 5)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 0.0, bins[0].Lo)
	assert.Equal(t, 10.0, bins[4].Hi)
	assert.Equal(t, 2, bins[0].Count) // 0, 1
	assert.Equal(t, 2, bins[4].Count) // 8, 10

	assert.Nil(t, Histogram(nil, 5))
	constant := Histogram([]float64{3, 3, 3}, 5)
	require.Len(t, constant, 1)
	assert.Equal(t, 3, constant[0].Count)
}

func TestSummarizeAndQuantile(t *testing.T) {
	d := Summarize([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), d.Std, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.InDelta(t, 1.75, d.P25, 1e-12)
	assert.InDelta(t, 2.5, d.P50, 1e-12)
	assert.InDelta(t, 3.25, d.P75, 1e-12)
	assert.Equal(t, 4.0, d.Max)

	five := d.FiveNumber()
	assert.Equal(t, d.P50, five.Median)

	single := Summarize([]float64{7})
	assert.Equal(t, 0.0, single.Std)
	assert.Equal(t, 7.0, single.P75)

	assert.Equal(t, Describe{}, Summarize(nil))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestPearson(t *testing.T) {
	x := []*float64{f(1), f(2), nil, f(3), f(4)}
	y := []*float64{f(2), f(4), f(100), f(6), f(8)}
	r, n := Pearson(x, y)
	require.NotNil(t, r)
	assert.Equal(t, 4, n)
	assert.InDelta(t, 1.0, *r, 1e-12)

	neg, _ := Pearson([]*float64{f(1), f(2), f(3)}, []*float64{f(3), f(2), f(1)})
	require.NotNil(t, neg)
	assert.InDelta(t, -1.0, *neg, 1e-12)

	flat, _ := Pearson([]*float64{f(1), f(2)}, []*float64{f(5), f(5)})
	assert.Nil(t, flat)

	few, n := Pearson([]*float64{f(1)}, []*float64{f(2)})
	assert.Nil(t, few)
	assert.Equal(t, 1, n)
}

func TestNovaGroupsAndTierCounts(t *testing.T) {
	nutrients := []models.NutrientProfile{
		{Code: "a", NovaGroup: i(4), Sugars: f(50)},
		{Code: "b", NovaGroup: i(4), Sugars: f(40)},
		{Code: "c", NovaGroup: i(1)},
		{Code: "d"},
	}
	got := NovaGroups(nutrients)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Group)
	assert.Nil(t, got[0].MeanSugar)
	assert.Equal(t, 4, got[1].Group)
	assert.Equal(t, 2, got[1].Count)
	require.NotNil(t, got[1].MeanSugar)
	assert.Equal(t, 45.0, *got[1].MeanSugar)

	derived := []models.DerivedMetrics{
		{FatTier: models.TierHigh},
		{FatTier: models.TierLow},
		{FatTier: models.TierHigh},
		{FatTier: models.TierUnknown},
	}
	assert.Equal(t, []TierCount{
		{"Low Fat", 1},
		{"High Fat", 2},
		{"Unknown", 1},
	}, TierCounts(derived, models.MetricFat))
}

func TestAnalyzeSample(t *testing.T) {
	ds, err := ingest.LoadFile(samplePath)
	require.NoError(t, err)

	a := Analyze(ds.Relations, 0)

	require.Len(t, a.Histograms, len(HistogramFields))
	energyTotal := 0
	for _, b := range a.Histograms[0].Bins {
		energyTotal += b.Count
	}
	assert.Equal(t, 21, energyTotal, "one product has no energy")
	assert.Len(t, a.Histograms[0].Bins, DefaultBins)

	assert.Len(t, a.Scatter, 21)

	m := a.Correlation
	require.Len(t, m.Values, len(CorrelationFields))
	for k := range m.Fields {
		require.NotNil(t, m.Values[k][k])
		assert.InDelta(t, 1.0, *m.Values[k][k], 1e-9)
		for j := range m.Fields {
			assert.Equal(t, m.Values[k][j], m.Values[j][k])
		}
	}

	require.Len(t, a.Nova, 3)
	assert.Equal(t, 16, a.Nova[2].Count)

	assert.Equal(t, []TierCount{
		{"Low Fat", 4},
		{"Moderate Fat", 7},
		{"High Fat", 11},
	}, a.FatTiers)

	require.Len(t, a.Summaries, len(SummaryFields))
	assert.Equal(t, 21, a.Summaries[0].Describe.Count)
	assert.Equal(t, 235.0, a.Summaries[0].Describe.Min)
	assert.Equal(t, 625.0, a.Summaries[0].Describe.Max)
}

func TestSummariseColumns(t *testing.T) {
	ds, err := ingest.LoadFile(samplePath)
	require.NoError(t, err)

	s := Summarise(ds)
	assert.Equal(t, 22, s.Report.Products)
	require.Len(t, s.Columns, len(ds.Table.Header))

	byName := make(map[string]ColumnStat)
	for _, c := range s.Columns {
		byName[c.Name] = c
	}

	name := byName[ingest.ColName]
	assert.Equal(t, 1, name.Missing)
	assert.Nil(t, name.Numeric)

	energy := byName[ingest.ColEnergyKcal]
	assert.Equal(t, 1, energy.Missing)
	assert.Equal(t, 23, energy.NonNull)
	assert.InDelta(t, 4.2, energy.MissingPct, 1e-9)
	require.NotNil(t, energy.Numeric)
	assert.Equal(t, 100.0, energy.Numeric.Min)

	brand := byName[ingest.ColBrand]
	assert.Equal(t, 10, brand.Unique)
}

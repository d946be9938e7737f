// ABOUTME: Tests for CSV ingestion and normalization.
// ABOUTME: Uses the shared sample fixture plus small inline CSVs for error paths.
package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/chococrunch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "../../testdata/chococrunch_sample.csv"

const miniHeader = "product_code,product_name,brand,energy-kcal_value,energy-kj_value,carbohydrates_value,sugars_value,fat_value,saturated-fat_value,proteins_value,fiber_value,salt_value,sodium_value,nutrition-score-fr,nova-group,fruits-vegetables-nuts-estimate-from-ingredients_100g"

func TestLoadFileSample(t *testing.T) {
	ds, err := LoadFile(samplePath)
	require.NoError(t, err)

	assert.Equal(t, 24, ds.Report.Rows)
	assert.Equal(t, 22, ds.Report.Products)
	assert.Equal(t, 1, ds.Report.Duplicates)
	assert.Equal(t, 1, ds.Report.SkippedEmptyCode)
	assert.Equal(t, 0, ds.Report.MarketRows)
	assert.Equal(t, DerivedColumns, ds.Report.IgnoredColumns)

	r := ds.Relations
	require.Len(t, r.Products, 22)
	require.Len(t, r.Nutrients, 22)
	require.Len(t, r.Derived, 22)
	for i := range r.Products {
		assert.Equal(t, r.Products[i].Code, r.Nutrients[i].Code)
		assert.Equal(t, r.Products[i].Code, r.Derived[i].Code)
	}
}

func TestLoadFirstDuplicateWins(t *testing.T) {
	ds, err := LoadFile(samplePath)
	require.NoError(t, err)

	p := ds.Relations.Products[0]
	require.NotNil(t, p.Name)
	assert.Equal(t, "Nutella Bar", *p.Name)
	n := ds.Relations.Nutrients[0]
	require.NotNil(t, n.EnergyKcal)
	assert.Equal(t, 539.0, *n.EnergyKcal)
}

func TestLoadNullsAndDerivation(t *testing.T) {
	ds, err := LoadFile(samplePath)
	require.NoError(t, err)

	byCode := make(map[string]int)
	for i, p := range ds.Relations.Products {
		byCode[p.Code] = i
	}

	// Missing name and brand stay null.
	assert.Nil(t, ds.Relations.Products[byCode["3000000000052"]].Name)
	assert.Nil(t, ds.Relations.Products[byCode["3000000000045"]].Brand)

	// Missing energy and nova give unknown categories.
	truffle := byCode["3000000000069"]
	assert.Nil(t, ds.Relations.Nutrients[truffle].EnergyKcal)
	assert.Nil(t, ds.Relations.Nutrients[truffle].NovaGroup)
	assert.Equal(t, models.TierUnknown, ds.Relations.Derived[truffle].CalorieTier)
	assert.Equal(t, models.FlagUnknown, ds.Relations.Derived[truffle].UltraProcessed)
	assert.Equal(t, models.TierHigh, ds.Relations.Derived[truffle].SugarTier)

	// Pre-computed categories in the file are ignored.
	rice := byCode["3000000000014"]
	assert.Equal(t, "Low Calorie", ds.Relations.Derived[rice].CalorieCategory())

	// "4.0" parses as nova group 4.
	alpine := byCode["4000417025005"]
	require.NotNil(t, ds.Relations.Nutrients[alpine].NovaGroup)
	assert.Equal(t, 4, *ds.Relations.Nutrients[alpine].NovaGroup)
	assert.Equal(t, "High Calorie", ds.Relations.Derived[alpine].CalorieCategory())
	assert.Equal(t, "High Sugar", ds.Relations.Derived[alpine].SugarCategory())
	assert.Equal(t, models.FlagYes, ds.Relations.Derived[alpine].UltraProcessed)
}

func TestLoadUltraProcessedMatchesNova(t *testing.T) {
	ds, err := LoadFile(samplePath)
	require.NoError(t, err)

	for i, n := range ds.Relations.Nutrients {
		d := ds.Relations.Derived[i]
		switch {
		case n.NovaGroup == nil:
			assert.Equal(t, models.FlagUnknown, d.UltraProcessed, n.Code)
		case *n.NovaGroup == 4:
			assert.Equal(t, models.FlagYes, d.UltraProcessed, n.Code)
		default:
			assert.Equal(t, models.FlagNo, d.UltraProcessed, n.Code)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindMissingFile, le.Kind)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestLoadMissingColumns(t *testing.T) {
	csv := "product_code,product_name,brand,energy-kcal_value\n1,A,B,100\n"
	_, err := Load(strings.NewReader(csv), "mini.csv")
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindMissingColumns, le.Kind)
	assert.Contains(t, le.Columns, ColSugars)
	assert.Contains(t, le.Columns, ColNovaGroup)
	assert.NotContains(t, le.Columns, ColEnergyKcal)
	assert.Contains(t, err.Error(), "missing columns")
}

func TestLoadMalformedValues(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"text in energy", "1,A,B,lots,1,1,1,1,1,1,1,1,1,1,4,0", ColEnergyKcal},
		{"nova out of range", "1,A,B,100,1,1,1,1,1,1,1,1,1,1,7,0", ColNovaGroup},
		{"fractional nova", "1,A,B,100,1,1,1,1,1,1,1,1,1,1,2.5,0", ColNovaGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := miniHeader + "\n2,Ok,B,100,1,1,1,1,1,1,1,1,1,1,4,0\n" + tt.row + "\n"
			_, err := Load(strings.NewReader(csv), "mini.csv")
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, KindMalformedValue, le.Kind)
			assert.Equal(t, tt.column, le.Column)
			assert.Equal(t, 3, le.Line)
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(strings.NewReader(miniHeader+"\n"), "empty.csv")
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindEmpty, le.Kind)

	_, err = Load(strings.NewReader(""), "blank.csv")
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestLoadMarketRows(t *testing.T) {
	csv := miniHeader + ",region,sales_units,market_share,rating\n" +
		"1,A,B,100,1,1,1,1,1,1,1,1,1,1,4,0,EU,100,0.2,4.5\n" +
		"1,A,B,100,1,1,1,1,1,1,1,1,1,1,4,0,US,80,0.1,4.1\n" +
		"1,A,B,100,1,1,1,1,1,1,1,1,1,1,4,0,US,70,0.1,4.0\n" +
		"2,C,D,300,1,1,1,1,1,1,1,1,1,1,3,0,,,,\n"
	ds, err := Load(strings.NewReader(csv), "market.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Report.Products)
	assert.Equal(t, 2, ds.Report.MarketRows)
	assert.Equal(t, 2, ds.Report.Duplicates)

	want := []string{"EU", "US"}
	var got []string
	for _, m := range ds.Relations.Market {
		got = append(got, m.Region)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("market regions mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, ds.Relations.Market[1].SalesUnits)
	assert.Equal(t, 80.0, *ds.Relations.Market[1].SalesUnits)
}

func TestReadTableBOMAndShortRows(t *testing.T) {
	data := "\ufeffa, b ,c\n1,2\n3,4,5\n"
	tbl, err := ReadTable(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "", tbl.Cell(0, "c"))
	assert.Equal(t, "5", tbl.Cell(1, "c"))
	assert.Equal(t, "", tbl.Cell(1, "missing"))
	assert.Equal(t, []int{2, 3}, tbl.Lines)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    *float64
		wantErr bool
	}{
		{"12.5", ptr(12.5), false},
		{" 3 ", ptr(3), false},
		{"", nil, false},
		{"nan", nil, false},
		{"NA", nil, false},
		{"None", nil, false},
		{"null", nil, false},
		{"inf", nil, false},
		{"abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadErrorMessage(t *testing.T) {
	err := &LoadError{Kind: KindMalformedValue, Source: "x.csv", Line: 4, Column: "nova-group", Err: errors.New("bad")}
	assert.Equal(t, `load x.csv: malformed value at line 4 in column "nova-group": bad`, err.Error())
}

func ptr(v float64) *float64 { return &v }

func TestLoadIsDeterministic(t *testing.T) {
	first, err := LoadFile(samplePath)
	require.NoError(t, err)
	second, err := LoadFile(samplePath)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Relations, second.Relations); diff != "" {
		t.Errorf("relations differ between loads (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Report, second.Report)
}

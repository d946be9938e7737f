// ABOUTME: CSV ingestion into raw tables and normalized relations.
// ABOUTME: Validates required columns, parses typed values and runs derivation.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/harperreed/chococrunch/internal/derive"
	"github.com/harperreed/chococrunch/internal/models"
)

// Table is the raw CSV: header plus string cells, one row per data line.
type Table struct {
	Header []string
	Rows   [][]string
	Lines  []int
	index  map[string]int
}

// Index returns the position of a column or -1.
func (t *Table) Index(col string) int {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Header))
		for i, h := range t.Header {
			if _, dup := t.index[h]; !dup {
				t.index[h] = i
			}
		}
	}
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Has reports whether the table carries a column.
func (t *Table) Has(col string) bool {
	return t.Index(col) >= 0
}

// Cell returns the trimmed cell of row for col, or "" when absent.
func (t *Table) Cell(row int, col string) string {
	i := t.Index(col)
	if i < 0 || i >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][i])
}

// Report summarises what a load kept and dropped.
type Report struct {
	Rows             int      `json:"rows" yaml:"rows"`
	Products         int      `json:"products" yaml:"products"`
	MarketRows       int      `json:"market_rows" yaml:"market_rows"`
	Duplicates       int      `json:"duplicates" yaml:"duplicates"`
	SkippedEmptyCode int      `json:"skipped_empty_code" yaml:"skipped_empty_code"`
	IgnoredColumns   []string `json:"ignored_columns,omitempty" yaml:"ignored_columns,omitempty"`
}

// Dataset is a fully loaded and derived input file.
type Dataset struct {
	Source    string
	Table     *Table
	Relations models.Relations
	Report    Report
}

// ReadTable parses CSV from r. Short rows are padded with empty cells.
func ReadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read csv: no header")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

// LoadFile reads and derives the dataset at path. Every failure is a *LoadError.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Kind: KindMissingFile, Source: path, Err: err}
		}
		return nil, &LoadError{Kind: KindUnreadable, Source: path, Err: err}
	}
	defer f.Close()

	return Load(f, path)
}

// Load reads and derives a dataset from r. source names it in errors.
func Load(r io.Reader, source string) (*Dataset, error) {
	t, err := ReadTable(r)
	if err != nil {
		return nil, &LoadError{Kind: KindUnreadable, Source: source, Err: err}
	}

	if missing := MissingColumns(t); len(missing) > 0 {
		return nil, &LoadError{Kind: KindMissingColumns, Source: source, Columns: missing}
	}

	ds := &Dataset{Source: source, Table: t}
	ds.Report.Rows = len(t.Rows)
	ds.Report.IgnoredColumns = ignoredColumns(t)

	if err := ds.normalize(); err != nil {
		return nil, err
	}
	if len(ds.Relations.Products) == 0 {
		return nil, &LoadError{Kind: KindEmpty, Source: source}
	}

	ds.Relations.Derived = derive.All(ds.Relations.Nutrients)
	ds.Report.Products = len(ds.Relations.Products)
	ds.Report.MarketRows = len(ds.Relations.Market)
	return ds, nil
}

// MissingColumns returns the required columns absent from t, in schema order.
func MissingColumns(t *Table) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func ignoredColumns(t *Table) []string {
	known := make(map[string]bool)
	for _, set := range [][]string{RequiredColumns, OptionalColumns} {
		for _, c := range set {
			known[c] = true
		}
	}
	var ignored []string
	for _, h := range t.Header {
		if !known[h] {
			ignored = append(ignored, h)
		}
	}
	return ignored
}

// normalize splits the flat table into relations. The first row for a
// product code wins; market rows are keyed by (code, region).
func (ds *Dataset) normalize() error {
	t := ds.Table
	seen := make(map[string]bool, len(t.Rows))
	seenMarket := make(map[[2]string]bool)
	hasRegion := t.Has(ColRegion)

	for row := range t.Rows {
		p := rowParser{t: t, row: row, source: ds.Source}

		code := t.Cell(row, ColCode)
		if code == "" {
			ds.Report.SkippedEmptyCode++
			continue
		}

		if hasRegion {
			if region := t.Cell(row, ColRegion); region != "" && !seenMarket[[2]string{code, region}] {
				seenMarket[[2]string{code, region}] = true
				m := models.MarketAnalysis{
					Code:        code,
					Region:      region,
					SalesUnits:  p.float(ColSalesUnits),
					MarketShare: p.float(ColMarketShare),
					Rating:      p.float(ColRating),
				}
				if p.err != nil {
					return p.err
				}
				ds.Relations.Market = append(ds.Relations.Market, m)
			}
		}

		if seen[code] {
			ds.Report.Duplicates++
			continue
		}
		seen[code] = true

		product := models.Product{
			Code:            code,
			Name:            p.str(ColName),
			Brand:           p.str(ColBrand),
			Countries:       p.str(ColCountries),
			Manufacturer:    p.str(ColManufacturer),
			CacaoPercentage: p.float(ColCacaoPercentage),
			Price:           p.float(ColPrice),
		}
		nutrients := models.NutrientProfile{
			Code:           code,
			EnergyKcal:     p.float(ColEnergyKcal),
			EnergyKJ:       p.float(ColEnergyKJ),
			Carbohydrates:  p.float(ColCarbohydrates),
			Sugars:         p.float(ColSugars),
			Fat:            p.float(ColFat),
			SaturatedFat:   p.float(ColSaturatedFat),
			Proteins:       p.float(ColProteins),
			Fiber:          p.float(ColFiber),
			Salt:           p.float(ColSalt),
			Sodium:         p.float(ColSodium),
			NutritionScore: p.float(ColNutritionScore),
			NovaGroup:      p.nova(ColNovaGroup),
			FruitsVegNuts:  p.float(ColFruitsVegNuts),
			Additives:      p.float(ColAdditives),
			Ingredients:    p.float(ColIngredients),
		}
		if p.err != nil {
			return p.err
		}

		ds.Relations.Products = append(ds.Relations.Products, product)
		ds.Relations.Nutrients = append(ds.Relations.Nutrients, nutrients)
	}
	return nil
}

// rowParser reads typed cells from one row, keeping the first error.
type rowParser struct {
	t      *Table
	row    int
	source string
	err    error
}

func (p *rowParser) fail(col string, err error) {
	if p.err == nil {
		p.err = &LoadError{
			Kind:   KindMalformedValue,
			Source: p.source,
			Line:   p.t.Lines[p.row],
			Column: col,
			Err:    err,
		}
	}
}

func (p *rowParser) str(col string) *string {
	v := p.t.Cell(p.row, col)
	if IsNull(v) {
		return nil
	}
	return &v
}

func (p *rowParser) float(col string) *float64 {
	v, err := ParseNumber(p.t.Cell(p.row, col))
	if err != nil {
		p.fail(col, err)
		return nil
	}
	return v
}

func (p *rowParser) nova(col string) *int {
	v := p.float(col)
	if v == nil {
		return nil
	}
	g := int(*v)
	if float64(g) != *v || g < 1 || g > 4 {
		p.fail(col, fmt.Errorf("nova group must be an integer from 1 to 4, got %v", *v))
		return nil
	}
	return &g
}

var nullTokens = map[string]bool{
	"": true, "nan": true, "na": true, "n/a": true, "null": true, "none": true,
}

// IsNull reports whether a raw cell stands for a missing value.
func IsNull(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// ParseNumber parses a numeric cell. Null cells yield (nil, nil).
func ParseNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse number %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}

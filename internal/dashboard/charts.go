// ABOUTME: go-echarts rendering for catalog query results and EDA views.
// ABOUTME: Each chart renders as a standalone page embedded by the dashboard.
package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/harperreed/chococrunch/internal/catalog"
	"github.com/harperreed/chococrunch/internal/eda"
	"github.com/harperreed/chococrunch/internal/models"
	"github.com/harperreed/chococrunch/internal/storage"
)

const (
	chartWidth  = "860px"
	chartHeight = "380px"
)

type renderer interface {
	Render(w io.Writer) error
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     chartWidth,
		Height:    chartHeight,
	})
}

// queryChart builds the chart declared by a query for its result.
func queryChart(res *catalog.Result) (renderer, error) {
	spec := res.Query.Chart
	if spec == nil {
		return nil, fmt.Errorf("query %s has no chart", res.Query.ID)
	}
	labels, values, err := chartSeries(res.Set, spec.Label, spec.Value)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", res.Query.ID, err)
	}
	title := fmt.Sprintf("%d. %s", res.Query.Number, res.Query.Title)

	switch spec.Kind {
	case catalog.ChartPie:
		data := make([]opts.PieData, len(labels))
		for i := range labels {
			data[i] = opts.PieData{Name: labels[i], Value: values[i]}
		}
		pie := charts.NewPie()
		pie.SetGlobalOptions(initOpts(title), charts.WithTitleOpts(opts.Title{Title: title}))
		pie.AddSeries(spec.Value, data)
		return pie, nil
	case catalog.ChartBar:
		return barChart(title, spec.Value, labels, values), nil
	default:
		return nil, fmt.Errorf("chart %s: unknown kind %q", res.Query.ID, spec.Kind)
	}
}

func barChart(title, series string, labels []string, values []float64) *charts.Bar {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Name: labels[i], Value: v}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(initOpts(title), charts.WithTitleOpts(opts.Title{Title: title}))
	bar.SetXAxis(labels).AddSeries(series, data)
	return bar
}

// chartSeries extracts label and value columns. Rows with a NULL value are
// skipped.
func chartSeries(rs *storage.ResultSet, labelCol, valueCol string) ([]string, []float64, error) {
	li, vi := rs.ColumnIndex(labelCol), rs.ColumnIndex(valueCol)
	if li < 0 || vi < 0 {
		return nil, nil, fmt.Errorf("missing column %s or %s", labelCol, valueCol)
	}
	var labels []string
	var values []float64
	for _, row := range rs.Rows {
		v, ok := toFloat(row[vi])
		if !ok {
			continue
		}
		label := storage.FormatValue(row[li])
		if label == "" {
			label = models.UnknownLabel
		}
		labels = append(labels, label)
		values = append(values, v)
	}
	return labels, values, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// EDA chart names served under /eda/charts/{name}.
const (
	chartScatter  = "scatter"
	chartNova     = "nova"
	chartFatTiers = "fat-tiers"
	chartBox      = "box"
	histPrefix    = "hist-"
)

// edaChartNames lists every EDA chart in page order.
func edaChartNames(a *eda.Analysis) []string {
	var names []string
	for _, h := range a.Histograms {
		names = append(names, histPrefix+h.Field)
	}
	return append(names, chartScatter, chartNova, chartFatTiers, chartBox)
}

// edaChart builds one EDA chart by name. ok is false for unknown names.
func edaChart(a *eda.Analysis, name string) (renderer, bool) {
	if field, found := strings.CutPrefix(name, histPrefix); found {
		for _, h := range a.Histograms {
			if h.Field == field {
				return histogramChart(h), true
			}
		}
		return nil, false
	}

	switch name {
	case chartScatter:
		return scatterChart(a.Scatter), true
	case chartNova:
		labels := make([]string, len(a.Nova))
		values := make([]float64, len(a.Nova))
		for i, n := range a.Nova {
			labels[i] = "NOVA " + strconv.Itoa(n.Group)
			values[i] = float64(n.Count)
		}
		return barChart("Products per NOVA Group", "products", labels, values), true
	case chartFatTiers:
		data := make([]opts.PieData, len(a.FatTiers))
		for i, t := range a.FatTiers {
			data[i] = opts.PieData{Name: t.Label, Value: t.Count}
		}
		pie := charts.NewPie()
		pie.SetGlobalOptions(initOpts("Fat Category Distribution"),
			charts.WithTitleOpts(opts.Title{Title: "Fat Category Distribution"}))
		pie.AddSeries("products", data)
		return pie, true
	case chartBox:
		return boxChart(a.Summaries), true
	}
	return nil, false
}

func histogramChart(h eda.FieldHistogram) *charts.Bar {
	labels := make([]string, len(h.Bins))
	values := make([]float64, len(h.Bins))
	for i, b := range h.Bins {
		labels[i] = fmt.Sprintf("%s-%s", formatFloat(b.Lo), formatFloat(b.Hi))
		values[i] = float64(b.Count)
	}
	return barChart("Distribution of "+h.Label, "products", labels, values)
}

func scatterChart(points []eda.Point) *charts.Scatter {
	const title = "Calories vs Sugar"
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: eda.FieldEnergy.Label, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: eda.FieldSugars.Label, Type: "value"}),
	)

	byCategory := make(map[string][]opts.ScatterData)
	var order []string
	for _, p := range points {
		cat := p.Category
		if _, seen := byCategory[cat]; !seen {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], opts.ScatterData{
			Name:  p.Name,
			Value: []interface{}{p.Energy, p.Sugar},
		})
	}
	for _, cat := range order {
		sc.AddSeries(cat, byCategory[cat])
	}
	return sc
}

// boxChart plots the five-number summary of every gram-based field.
func boxChart(summaries []eda.FieldSummary) *charts.BoxPlot {
	const title = "Nutrient Five-Number Summaries (g/100 g)"
	var labels []string
	var data []opts.BoxPlotData
	for _, s := range summaries {
		if s.Field == eda.FieldEnergy.Name || s.Describe.Count == 0 {
			continue
		}
		f := s.Describe.FiveNumber()
		labels = append(labels, s.Label)
		data = append(data, opts.BoxPlotData{
			Name:  s.Label,
			Value: []float64{f.Min, f.Q1, f.Median, f.Q3, f.Max},
		})
	}
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(initOpts(title), charts.WithTitleOpts(opts.Title{Title: title}))
	box.SetXAxis(labels).AddSeries("five-number summary", data)
	return box
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

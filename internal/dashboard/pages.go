// ABOUTME: HTML page handlers and their view models.
// ABOUTME: Section pages show every query inline, with error boxes and "No data" states.
package dashboard

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/chococrunch/internal/catalog"
	"github.com/harperreed/chococrunch/internal/eda"
	"github.com/harperreed/chococrunch/internal/storage"
	"go.uber.org/zap"
)

type navItem struct {
	ID    string
	Title string
	URL   string
}

type card struct {
	Label string
	Value string
}

type exportLink struct {
	Format catalog.Format
	URL    string
}

// queryView is one query rendered on a section page.
type queryView struct {
	Query    catalog.Query
	Columns  []string
	Rows     [][]string
	Cards    []card
	Err      string
	Empty    bool
	ChartURL string
	Exports  []exportLink
	Elapsed  time.Duration
}

type edaView struct {
	*eda.Analysis
	Charts []string
}

type pageData struct {
	Title    string
	Active   string
	Nav      []navItem
	Source   string
	Products int
	LoadedAt time.Time

	Section *catalog.SectionInfo
	Queries []queryView
	EDA     *edaView
	Summary *eda.DataSummary
	Message string
}

const (
	navEDA     = "eda"
	navSummary = "summary"
)

func (s *Server) page(title, active string) *pageData {
	var nav []navItem
	for _, sec := range s.app.Catalog.Sections() {
		url := "/section/" + string(sec.ID)
		if sec.ID == catalog.SectionOverview {
			url = "/"
		}
		nav = append(nav, navItem{ID: string(sec.ID), Title: sec.Title, URL: url})
	}
	nav = append(nav,
		navItem{ID: navEDA, Title: "EDA", URL: "/eda"},
		navItem{ID: navSummary, Title: "Data Summary", URL: "/summary"},
	)
	return &pageData{
		Title:    title,
		Active:   active,
		Nav:      nav,
		Source:   s.app.Source,
		Products: s.app.Products(),
		LoadedAt: s.app.LoadedAt,
	}
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.renderSection(w, r, catalog.SectionOverview)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	s.renderSection(w, r, catalog.Section(mux.Vars(r)["section"]))
}

func (s *Server) renderSection(w http.ResponseWriter, r *http.Request, section catalog.Section) {
	info, err := s.app.Catalog.SectionInfo(section)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("Unknown section %q.", section))
		return
	}
	outcomes, err := s.app.Catalog.RunSection(r.Context(), section)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	data := s.page(info.Title, string(section))
	data.Section = &info
	for _, o := range outcomes {
		data.Queries = append(data.Queries, newQueryView(o))
	}
	s.render(w, r, http.StatusOK, "section.html", data)
}

func newQueryView(o catalog.Outcome) queryView {
	v := queryView{Query: o.Query}
	for _, f := range catalog.Formats {
		v.Exports = append(v.Exports, exportLink{
			Format: f,
			URL:    "/api/queries/" + o.Query.ID + "/export?format=" + string(f),
		})
	}
	if o.Err != nil {
		v.Err = o.Err.Error()
		return v
	}

	rs := o.Result.Set
	v.Elapsed = o.Result.Elapsed
	v.Columns = rs.Columns
	if rs.Empty() {
		v.Empty = true
		return v
	}
	if o.Query.Chart == nil && rs.Len() == 1 {
		for i, col := range rs.Columns {
			v.Cards = append(v.Cards, card{Label: col, Value: storage.FormatValue(rs.Rows[0][i])})
		}
		return v
	}
	if o.Query.Chart != nil {
		v.ChartURL = "/charts/" + o.Query.ID
	}
	v.Rows = make([][]string, len(rs.Rows))
	for i, row := range rs.Rows {
		cells := make([]string, len(row))
		for j, val := range row {
			cells[j] = storage.FormatValue(val)
		}
		v.Rows[i] = cells
	}
	return v
}

func (s *Server) handleQueryChart(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := s.app.Catalog.Run(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrUnknownQuery):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if res.Query.Chart == nil {
		http.Error(w, "query has no chart", http.StatusNotFound)
		return
	}
	chart, err := queryChart(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.writeChart(w, r, chart)
}

func (s *Server) handleEDA(w http.ResponseWriter, r *http.Request) {
	data := s.page("Exploratory Analysis", navEDA)
	if a := s.app.Analysis; a != nil {
		data.EDA = &edaView{Analysis: a, Charts: edaChartNames(a)}
	}
	s.render(w, r, http.StatusOK, "eda.html", data)
}

func (s *Server) handleEDAChart(w http.ResponseWriter, r *http.Request) {
	if s.app.Analysis == nil {
		http.Error(w, "no analysis available", http.StatusNotFound)
		return
	}
	chart, ok := edaChart(s.app.Analysis, mux.Vars(r)["name"])
	if !ok {
		http.Error(w, "unknown chart", http.StatusNotFound)
		return
	}
	s.writeChart(w, r, chart)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	data := s.page("Data Summary", navSummary)
	data.Summary = s.app.Summary()
	s.render(w, r, http.StatusOK, "summary.html", data)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Page not found.")
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := s.page(http.StatusText(status), "")
	data.Message = msg
	s.render(w, r, status, "error.html", data)
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, chart renderer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(w); err != nil {
		s.log.Error("render chart",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatCorrelation(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// correlationClass buckets a coefficient for cell shading.
func correlationClass(v *float64) string {
	if v == nil {
		return "corr-na"
	}
	sign := "pos"
	if *v < 0 {
		sign = "neg"
	}
	switch a := math.Abs(*v); {
	case a >= 0.7:
		return "corr-" + sign + "-3"
	case a >= 0.4:
		return "corr-" + sign + "-2"
	case a >= 0.1:
		return "corr-" + sign + "-1"
	default:
		return "corr-0"
	}
}

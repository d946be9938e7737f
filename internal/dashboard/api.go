// ABOUTME: JSON API over the query catalog, EDA results and data summary.
// ABOUTME: Unknown ids are 404s and failing queries are 422s carrying the query error.
package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/chococrunch/internal/catalog"
	"go.uber.org/zap"
)

type apiError struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp int64  `json:"timestamp"`
	Products  int    `json:"products"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, apiError{Error: err.Error(), RequestID: RequestID(r.Context())})
}

// queryStatus maps catalog failures onto HTTP statuses.
func queryStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownQuery), errors.Is(err, catalog.ErrUnknownSection):
		return http.StatusNotFound
	case catalog.IsQueryError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   "chococrunch",
		Timestamp: time.Now().Unix(),
		Products:  s.app.Products(),
	})
}

func (s *Server) handleAPISections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Catalog.Sections())
}

func (s *Server) handleAPIQueries(w http.ResponseWriter, r *http.Request) {
	section := catalog.Section(r.URL.Query().Get("section"))
	if section != "" {
		if _, err := s.app.Catalog.SectionInfo(section); err != nil {
			writeAPIError(w, r, http.StatusNotFound, err)
			return
		}
	}
	queries := s.app.Catalog.List(section)
	if queries == nil {
		queries = []catalog.Query{}
	}
	writeJSON(w, http.StatusOK, queries)
}

func (s *Server) handleAPIQuery(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.Catalog.Run(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, queryStatus(err), err)
		return
	}
	s.writeExport(w, r, res, catalog.FormatJSON, false)
}

func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(catalog.FormatJSON)
	}
	format, err := catalog.ParseFormat(name)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, err)
		return
	}
	res, err := s.app.Catalog.Run(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, queryStatus(err), err)
		return
	}
	s.writeExport(w, r, res, format, true)
}

func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, res *catalog.Result, format catalog.Format, attachment bool) {
	var buf bytes.Buffer
	if err := catalog.Export(&buf, res, format); err != nil {
		s.log.Error("export query",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("query", res.Query.ID),
			zap.Error(err))
		writeAPIError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if attachment {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", res.Query.ID+"."+format.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAPIEDA(w http.ResponseWriter, r *http.Request) {
	if s.app.Analysis == nil {
		writeAPIError(w, r, http.StatusNotFound, errors.New("no analysis available"))
		return
	}
	writeJSON(w, http.StatusOK, s.app.Analysis)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Summary())
}

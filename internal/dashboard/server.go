// ABOUTME: Dashboard HTTP server: routes, page rendering and graceful shutdown.
// ABOUTME: Serves section pages, EDA and summary pages, chart frames and a JSON API.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/chococrunch/internal/app"
	"github.com/harperreed/chococrunch/internal/storage"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// ShutdownTimeout bounds how long in-flight requests get on shutdown.
const ShutdownTimeout = 10 * time.Second

// Server renders the dashboard for one loaded App.
type Server struct {
	app    *app.App
	log    *zap.Logger
	router *mux.Router
	pages  map[string]*template.Template
}

// New builds a Server for a. Templates are parsed eagerly.
func New(a *app.App) (*Server, error) {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{app: a, log: log.Named("dashboard"), router: mux.NewRouter()}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s.pages = pages
	s.routes()
	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"cell":      storage.FormatValue,
		"num":       formatNumber,
		"corr":      formatCorrelation,
		"corrClass": correlationClass,
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"section.html", "eda.html", "summary.html", "error.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/", s.handleOverview).Methods(http.MethodGet)
	r.HandleFunc("/section/{section}", s.handleSection).Methods(http.MethodGet)
	r.HandleFunc("/charts/{id}", s.handleQueryChart).Methods(http.MethodGet)
	r.HandleFunc("/eda", s.handleEDA).Methods(http.MethodGet)
	r.HandleFunc("/eda/charts/{name}", s.handleEDAChart).Methods(http.MethodGet)
	r.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sections", s.handleAPISections).Methods(http.MethodGet)
	api.HandleFunc("/queries", s.handleAPIQueries).Methods(http.MethodGet)
	api.HandleFunc("/queries/{id}", s.handleAPIQuery).Methods(http.MethodGet)
	api.HandleFunc("/queries/{id}/export", s.handleAPIExport).Methods(http.MethodGet)
	api.HandleFunc("/eda", s.handleAPIEDA).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleAPISummary).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return wrap(s.router, s.log)
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("dashboard shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// render executes a page template into a buffer so template failures become
// a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	t, ok := s.pages[page]
	if !ok {
		s.log.Error("unknown page template", zap.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("render page",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("page", page),
			zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

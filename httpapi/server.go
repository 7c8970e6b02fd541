// Package httpapi exposes the engine over HTTP: ad-hoc inference and
// flattening, plus a named schema store for learn-then-validate flows.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/negroni"

	"github.com/siegeai/siegeingest/consolidate"
)

// Options configures a Server. Zero fields fall back to engine defaults.
type Options struct {
	MaxDepth   int
	MaxSamples int
	Tolerance  float64

	// SchemaTTL bounds how long learned schemas stay usable.
	SchemaTTL time.Duration
}

// Server holds the route handlers and the schema cache backing the
// /schemas endpoints. The cache is owned here, not process-global.
type Server struct {
	opts  Options
	cache *consolidate.Cache
	log   *slog.Logger
}

func NewServer(opts Options, log *slog.Logger) *Server {
	if opts.SchemaTTL <= 0 {
		opts.SchemaTTL = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{opts: opts, cache: consolidate.NewCache(opts.SchemaTTL), log: log}
}

// Handler builds the full middleware/router stack.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	api.HandleFunc("/infer", s.handleInfer).Methods(http.MethodPost)
	api.HandleFunc("/consolidate", s.handleConsolidate).Methods(http.MethodPost)
	api.HandleFunc("/flatten", s.handleFlatten).Methods(http.MethodPost)
	api.HandleFunc("/schemas/{name}", s.handleLearn).Methods(http.MethodPost)
	api.HandleFunc("/schemas/{name}", s.handleGetSchema).Methods(http.MethodGet)
	api.HandleFunc("/schemas/{name}", s.handleForget).Methods(http.MethodDelete)
	api.HandleFunc("/schemas/{name}/validate", s.handleValidate).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	n := negroni.New(negroni.NewRecovery(), negroni.NewLogger())
	n.UseHandler(r)
	return n
}

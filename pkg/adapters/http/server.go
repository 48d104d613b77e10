// Package http exposes the catalog and validator over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/dataset"
	"github.com/aretw0/schemata/pkg/observability"
	"github.com/aretw0/schemata/pkg/openapi"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"
)

// MaxBodySize caps POST /validate bodies.
const MaxBodySize = 10 << 20

// Config wires the server dependencies. Only Catalog is required.
type Config struct {
	Catalog *catalog.Catalog

	// Store enables GET /reports and GET /reports/{id}.
	Store ports.ReportStore

	// Metrics counts documents validated through the API.
	Metrics *observability.Metrics

	// Gatherer enables GET /metrics.
	Gatherer prometheus.Gatherer

	Version string
	Logger  *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	Streams *StreamManager
}

// New creates a server for cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		Streams: NewStreamManager(logger),
	}
}

// NewHandler creates the HTTP handler for cfg.
func NewHandler(cfg Config) http.Handler {
	return New(cfg).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/schemas", s.ListSchemas)
	r.Get("/schemas/{name}", s.GetSchema)
	r.Post("/validate/{collection}", s.Validate)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Get("/openapi.yaml", s.GetOpenAPIYAML)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	if s.cfg.Store != nil {
		r.Get("/reports", s.ListReports)
		r.Get("/reports/{id}", s.GetReport)
	}
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>schemata API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "schemata",
		"version": strings.TrimSpace(s.cfg.Version),
		"schemas": s.cfg.Catalog.Len(),
	})
}

// ListSchemas handles GET /schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Catalog.Names())
}

// GetSchema handles GET /schemas/{name}.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	node, ok := s.cfg.Catalog.Lookup(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown schema %q", name))
		return
	}
	s.writeJSON(w, http.StatusOK, node)
}

// GetOpenAPI handles GET /openapi.json.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, openapi.Document(s.cfg.Catalog, s.cfg.Version))
}

// GetOpenAPIYAML handles GET /openapi.yaml.
func (s *Server) GetOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	spec, err := yaml.Marshal(openapi.Document(s.cfg.Catalog, s.cfg.Version))
	if err != nil {
		http.Error(w, "Failed to build spec", http.StatusInternalServerError)
		s.logger.Error("failed to build OpenAPI spec", "err", err)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(spec)
}

// Validate handles POST /validate/{collection}. The body is one document or
// an array of documents.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if _, ok := s.cfg.Catalog.Lookup(collection); !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown schema %q", collection))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	res, err := runner.Check(s.cfg.Catalog, collection, data)
	switch {
	case errors.Is(err, catalog.ErrUnknownSchema):
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, dataset.ErrUnreadable):
		s.logger.Warn("validate: unreadable body", "collection", collection, "err", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.cfg.Metrics != nil {
		for _, d := range res.Documents {
			codes := make([]string, 0, len(d.Violations))
			for _, v := range d.Violations {
				codes = append(codes, string(v.Code))
			}
			s.cfg.Metrics.RecordDocument(collection, codes)
		}
	}
	s.writeJSON(w, http.StatusOK, res)
}

// ListReports handles GET /reports.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	ids, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.logger.Error("list reports failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetReport handles GET /reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.cfg.Store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrReportNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("report %q not found", id))
			return
		}
		s.logger.Error("load report failed", "id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// SubscribeEvents handles GET /events (SSE). Every schema reload is pushed
// as a data line.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

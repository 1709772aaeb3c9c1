package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/demark"
	"github.com/aretw0/demark/pkg/domain"
	"github.com/aretw0/demark/pkg/observability"
	"github.com/aretw0/demark/pkg/sanitize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var rawSpec []byte

// Normalizer is the markup service exposed over HTTP.
type Normalizer interface {
	Normalize(ctx context.Context, text string) string
	Render(ctx context.Context, resp *domain.Response) domain.View
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Normalizer   Normalizer
	Metrics      *observability.Metrics
	MaxInputSize int
	Logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithMaxInputSize overrides the sanitizer limit for text fields.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.MaxInputSize = n
	}
}

// WithLogger sets the logger used by the handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for the normalizer.
func NewHandler(n Normalizer, opts ...Option) http.Handler {
	server := &Server{
		Normalizer:   n,
		MaxInputSize: sanitize.MaxInputSize(),
		Logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(server.instrument)

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Method(http.MethodGet, "/metrics", server.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(server.validate)
		r.Post("/normalize", server.Normalize)
		r.Post("/render", server.Render)
		r.Get("/health", server.GetHealth)
		r.Get("/info", server.GetInfo)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records the status and latency of each request by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.Metrics.ObserveRequest(route, status, time.Since(start))
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Demark API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// TextPayload is the body of POST /normalize and its reply.
type TextPayload struct {
	Text string `json:"text"`
}

// Normalize handles the POST /normalize request.
func (s *Server) Normalize(w http.ResponseWriter, r *http.Request) {
	var body TextPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Normalize: Invalid request body", "error", err)
		return
	}

	text, err := sanitize.InputWithLimit(body.Text, s.MaxInputSize)
	if err != nil {
		http.Error(w, "Invalid input: "+err.Error(), http.StatusBadRequest)
		s.Logger.Warn("Normalize: Input rejected", "error", err, "size", len(body.Text))
		return
	}

	writeJSON(w, s.Logger, TextPayload{Text: s.Normalizer.Normalize(r.Context(), text)})
}

// Render handles the POST /render request.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	var body domain.Response
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Render: Invalid request body", "error", err)
		return
	}

	if err := s.sanitizeResponse(&body); err != nil {
		http.Error(w, "Invalid input: "+err.Error(), http.StatusBadRequest)
		s.Logger.Warn("Render: Input rejected", "error", err)
		return
	}

	writeJSON(w, s.Logger, s.Normalizer.Render(r.Context(), &body))
}

// sanitizeResponse applies the input policy to every free text field.
func (s *Server) sanitizeResponse(resp *domain.Response) error {
	fields := []*string{&resp.Summary, &resp.Query}
	for i := range resp.Timeline {
		fields = append(fields, &resp.Timeline[i].Output, &resp.Timeline[i].OutputSummary)
	}
	for _, f := range fields {
		clean, err := sanitize.InputWithLimit(*f, s.MaxInputSize)
		if err != nil {
			return err
		}
		*f = clean
	}
	return nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := loadSpec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, s.Logger, map[string]string{
		"app":         "demark-http",
		"version":     strings.TrimSpace(demark.Version),
		"api_version": apiVersion,
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}

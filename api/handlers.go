package api

import (
	"net/http"
	"time"

	"overlay-stream/storage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultPingTimeout = 2 * time.Second

// Handlers serves the overlay, settings and logo resources. It keeps no
// state between requests; everything lives in the stores.
type Handlers struct {
	Overlays storage.OverlayDB
	Settings storage.SettingsDB
	Logos    storage.LogoStorage
	Log      *zap.Logger

	MaxLogoBytes int64
	PingTimeout  time.Duration
}

type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Routes builds the HTTP handler. Resources are mounted under /api and
// Prometheus metrics under /metrics.
func (h *Handlers) Routes(cfg RouterConfig) http.Handler {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(chiMiddleware(h.Log, RequestLoggerMiddleware))
	r.Use(chiMiddleware(h.Log, RecoveryMiddleware))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimitRequests > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}
	r.Use(MetricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Route("/overlays", func(r chi.Router) {
			r.Get("/", h.handleListOverlays)
			r.Post("/", h.handleCreateOverlay)
			r.Get("/{id}", h.handleGetOverlay)
			r.Put("/{id}", h.handleUpdateOverlay)
			r.Delete("/{id}", h.handleDeleteOverlay)
		})

		r.Get("/settings/rtsp", h.handleGetSettings)
		r.Post("/settings/rtsp", h.handleSaveSettings)

		r.Post("/logos", h.handleUploadLogo)
		r.Get("/logos/{name}", h.handleGetLogo)
	})

	return r
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("failed to encode response", zap.Error(err))
	}
}

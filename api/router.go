package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow time.Duration
}

// NewRouter wires the prediction routes and middleware.
//
//	GET  /health              readiness
//	GET  /metrics             Prometheus
//	GET  /api/v1/model        model characteristics
//	GET  /api/v1/features     feature order for predict_list
//	POST /api/v1/predict      named feature record
//	POST /api/v1/predict_list positional feature array
//
// /xgb_characteristics, /predict and /predict_list are kept at the root for
// existing clients.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(h.instrument)

	r.NotFound(h.notFound)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitReqs > 0 && cfg.RateLimitWindow > 0 {
		limit = httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/model", h.Characteristics)
		r.Get("/features", h.Features)
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/predict", h.Predict)
			r.Post("/predict_list", h.PredictList)
		})
	})

	r.Get("/xgb_characteristics", h.Characteristics)
	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/predict", h.Predict)
		r.Post("/predict_list", h.PredictList)
	})

	return r
}

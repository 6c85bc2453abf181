// Package http exposes the read-only reporting API consumed by external
// BI tools. Every endpoint serves data bound to the latest published
// snapshot and run result; the API never mutates pipeline state.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecomcli/internal/canonical"
	"ecomcli/internal/pipeline"
)

// ResultProvider supplies the latest completed run result.
type ResultProvider interface {
	LastResult() *pipeline.Result
}

// RouterConfig wires the router's collaborators.
type RouterConfig struct {
	Logger    *slog.Logger
	Registry  *canonical.Registry
	Results   ResultProvider
	Gatherer  prometheus.Gatherer
	RateRPS   float64
	RateBurst int
}

// NewRouter builds the reporting API router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RateLimit(cfg.RateRPS, cfg.RateBurst))

	h := NewReportHandler(cfg.Logger, cfg.Registry, cfg.Results)

	r.Get("/healthz", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshots/latest", h.LatestSnapshot)
		r.Get("/metrics/{dimension}", h.MetricSnapshots)
		r.Get("/trends/{dimension}", h.RevenueTrends)
		r.Get("/trends/shipping", h.ShippingTrends)
		r.Get("/tiers", h.Tiers)
		r.Get("/rfm", h.RFM)
		r.Get("/alerts", h.Alerts)
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

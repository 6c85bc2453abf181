package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ecomcli/internal/canonical"
	"ecomcli/internal/errors"
	"ecomcli/pkg/contracts"
	"ecomcli/pkg/contracts/domain"
)

// ReportHandler serves the analytical outputs of the latest run.
type ReportHandler struct {
	logger   *slog.Logger
	registry *canonical.Registry
	results  ResultProvider
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(logger *slog.Logger, registry *canonical.Registry, results ResultProvider) *ReportHandler {
	return &ReportHandler{
		logger:   logger.With(slog.String("handler", "report")),
		registry: registry,
		results:  results,
	}
}

// Health reports service liveness and whether a snapshot is available.
func (h *ReportHandler) Health(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.Latest()
	render.JSON(w, r, map[string]interface{}{
		"status":             "ok",
		"version":            contracts.Version,
		"snapshot_published": snapshot != nil,
	})
}

// LatestSnapshot returns the version and table counts of the latest
// published canonical snapshot.
func (h *ReportHandler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.Latest()
	if snapshot == nil {
		render.Render(w, r, errors.ErrSnapshotNotReady)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"version":   snapshot.Version,
		"loaded_at": snapshot.LoadedAt,
		"counts":    snapshot.Counts(),
	})
}

// MetricSnapshots returns the per-period aggregates for one dimension.
func (h *ReportHandler) MetricSnapshots(w http.ResponseWriter, r *http.Request) {
	result := h.results.LastResult()
	if result == nil {
		render.Render(w, r, errors.ErrSnapshotNotReady)
		return
	}
	dim := domain.Dimension(chi.URLParam(r, "dimension"))
	snaps, ok := result.Snapshots[dim]
	if !ok {
		render.Render(w, r, errors.NotFoundError("dimension "+string(dim)))
		return
	}
	render.JSON(w, r, snaps)
}

// RevenueTrends returns the revenue trend series for one dimension.
func (h *ReportHandler) RevenueTrends(w http.ResponseWriter, r *http.Request) {
	result := h.results.LastResult()
	if result == nil {
		render.Render(w, r, errors.ErrSnapshotNotReady)
		return
	}
	dim := domain.Dimension(chi.URLParam(r, "dimension"))
	trends, ok := result.RevenueTrends[dim]
	if !ok {
		render.Render(w, r, errors.NotFoundError("dimension "+string(dim)))
		return
	}
	render.JSON(w, r, trends)
}

// ShippingTrends returns the seller shipping-duration trend series.
func (h *ReportHandler) ShippingTrends(w http.ResponseWriter, r *http.Request) {
	result := h.results.LastResult()
	if result == nil {
		render.Render(w, r, errors.ErrSnapshotNotReady)
		return
	}
	render.JSON(w, r, result.ShippingTrends)
}

// Tiers returns every tier assignment of the latest run.
func (h *ReportHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	result := h.results.LastResult()
	if result == nil {
		render.Render(w, r, errors.ErrSnapshotNotReady)
		return
	}
	render.JSON(w, r, result.Tiers)
}

// RFM returns the customer segmentation of the latest run.
func (h *ReportHandler) RFM(w http.ResponseWriter, r *http.Request) {
	result := h.results.LastResult()
	if result == nil {
		render.Render(w, r, errors.ErrSnapshotNotReady)
		return
	}
	render.JSON(w, r, result.RFM)
}

// Alerts returns the alerts of the latest run.
func (h *ReportHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	result := h.results.LastResult()
	if result == nil {
		render.Render(w, r, errors.ErrSnapshotNotReady)
		return
	}
	render.JSON(w, r, result.Alerts)
}

package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailbi/internal/errors"
	"retailbi/internal/services"
)

// AnomalyHandler serves the residual anomaly records of the latest run
type AnomalyHandler struct {
	service      PipelineService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnomalyHandler creates a new anomaly handler
func NewAnomalyHandler(service PipelineService, logger *slog.Logger) *AnomalyHandler {
	return &AnomalyHandler{
		service:      service,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the anomaly routes
func (h *AnomalyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/anomalies", h.GetAnomalies)
}

// GetAnomalies returns the anomaly records of the latest run. An optional
// threshold query parameter recomputes the z-score flags from the stored
// residuals without touching the cached run.
func (h *AnomalyHandler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	last, err := h.service.Latest()
	if err != nil {
		if errors.Is(err, services.ErrNoPipelineRun) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoPipelineRun)
		} else {
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	records := last.Anomalies
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold <= 0 {
			h.logger.WarnContext(ctx, "invalid anomaly threshold requested",
				slog.String("threshold", raw))

			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				"threshold",
				"must be a positive number",
			))
			return
		}

		records, err = h.service.DetectAnomalies(ctx, threshold)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	render.JSON(w, r, map[string]any{
		"run_id":  last.RunID,
		"records": records,
	})
}

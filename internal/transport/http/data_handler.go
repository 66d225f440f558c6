package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailbi/internal/errors"
	"retailbi/internal/services"
)

// DataHandler serves the aggregated revenue data of the latest run
type DataHandler struct {
	service      PipelineService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler
func NewDataHandler(service PipelineService, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the data routes
func (h *DataHandler) RegisterRoutes(r chi.Router) {
	r.Get("/revenue", h.GetRevenue)
	r.Get("/series", h.GetSeries)
}

// GetRevenue returns the monthly revenue breakdown by country and category
func (h *DataHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	last, ok := h.latest(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, map[string]any{
		"run_id":  last.RunID,
		"monthly": last.Monthly,
	})
}

// GetSeries returns the gap-filled total revenue time series
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	last, ok := h.latest(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, map[string]any{
		"run_id": last.RunID,
		"series": last.Series,
	})
}

func (h *DataHandler) latest(w http.ResponseWriter, r *http.Request) (*services.PipelineResult, bool) {
	last, err := h.service.Latest()
	if err != nil {
		if errors.Is(err, services.ErrNoPipelineRun) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoPipelineRun)
		} else {
			h.errorHandler.HandleError(w, r, err)
		}
		return nil, false
	}
	return last, true
}

package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailbi/internal/errors"
	"retailbi/internal/forecast"
	"retailbi/internal/services"
)

// ForecastHandler serves the revenue forecast of the latest run
type ForecastHandler struct {
	service      PipelineService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(service PipelineService, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		service:      service,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the forecast routes
func (h *ForecastHandler) RegisterRoutes(r chi.Router) {
	r.Get("/forecast", h.GetForecast)
}

// GetForecast returns the latest forecast. An optional level query
// parameter widens the confidence band to 85, 90 or 95 percent.
func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
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

	level := last.Forecast.Level
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !forecast.IsSupportedLevel(parsed) {
			h.logger.WarnContext(ctx, "invalid confidence level requested",
				slog.String("level", raw))

			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				"level",
				fmt.Sprintf("must be one of %v", forecast.SupportedLevels()),
			))
			return
		}
		level = parsed
	}

	points := last.Forecast.Points
	if level != last.Forecast.Level {
		points, err = h.service.RescaleForecast(level)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	if raw := r.URL.Query().Get("horizon"); raw != "" {
		horizon, err := strconv.Atoi(raw)
		if err != nil || horizon < 1 || horizon > len(points) {
			h.logger.WarnContext(ctx, "invalid forecast horizon requested",
				slog.String("horizon", raw),
				slog.Int("available", len(points)))

			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				"horizon",
				fmt.Sprintf("must be between 1 and %d; rerun the pipeline for a longer horizon", len(points)),
			))
			return
		}
		points = points[:horizon]
	}

	render.JSON(w, r, map[string]any{
		"run_id": last.RunID,
		"method": last.Forecast.Method,
		"level":  level,
		"points": points,
	})
}

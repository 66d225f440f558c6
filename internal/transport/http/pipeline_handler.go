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

// PipelineHandler triggers pipeline runs over HTTP
type PipelineHandler struct {
	service      PipelineService
	defaultInput string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(service PipelineService, defaultInput string, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		service:      service,
		defaultInput: defaultInput,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the pipeline routes
func (h *PipelineHandler) RegisterRoutes(r chi.Router) {
	r.Route("/pipeline", func(r chi.Router) {
		r.Post("/run", h.RunPipeline)
		r.Get("/status", h.GetStatus)
	})
}

// RunPipelineRequest is the optional request body for a pipeline run
type RunPipelineRequest struct {
	InputPath  string  `json:"input_path,omitempty"`
	Horizon    int     `json:"horizon,omitempty"`
	ZThreshold float64 `json:"z_threshold,omitempty"`
}

// RunPipeline executes the pipeline synchronously and returns a summary
func (h *PipelineHandler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunPipelineRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	if req.Horizon < 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("horizon", "must be at least 1"))
		return
	}
	if req.ZThreshold < 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("z_threshold", "must be a positive number"))
		return
	}

	inputPath := req.InputPath
	if inputPath == "" {
		inputPath = h.defaultInput
	}

	h.logger.InfoContext(ctx, "pipeline run requested",
		slog.String("input", inputPath),
		slog.Int("horizon", req.Horizon))

	result, err := h.service.Run(ctx, inputPath, services.PipelineOptions{
		Horizon:    req.Horizon,
		ZThreshold: req.ZThreshold,
	})
	if err != nil {
		if errors.Is(err, services.ErrPipelineRunning) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPipelineRunning)
		} else {
			h.errorHandler.HandleError(w, r, apierrors.ErrPipelineExecution(err))
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"run_id":            result.RunID,
		"started_at":        result.StartedAt,
		"duration":          result.Duration.String(),
		"transaction_count": result.TransactionCount,
		"months":            result.Series.Len(),
		"method":            result.Forecast.Method,
		"anomaly_count":     countAnomalies(result),
	})
}

// GetStatus reports whether a completed run is available
func (h *PipelineHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	last, err := h.service.Latest()
	if err != nil {
		render.JSON(w, r, map[string]any{"has_result": false})
		return
	}

	render.JSON(w, r, map[string]any{
		"has_result": true,
		"run_id":     last.RunID,
		"started_at": last.StartedAt,
		"months":     last.Series.Len(),
	})
}

func countAnomalies(result *services.PipelineResult) int {
	count := 0
	for _, rec := range result.Anomalies {
		if rec.Anomaly {
			count++
		}
	}
	return count
}

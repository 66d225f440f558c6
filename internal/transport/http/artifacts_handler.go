package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailbi/internal/errors"
	"retailbi/internal/files"
)

// ArtifactsHandler lists the exported BI artifacts on disk
type ArtifactsHandler struct {
	discovery    *files.Discovery
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewArtifactsHandler creates a new artifacts handler
func NewArtifactsHandler(outputDir string, logger *slog.Logger) *ArtifactsHandler {
	return &ArtifactsHandler{
		discovery:    files.NewDiscovery(outputDir),
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the artifacts routes
func (h *ArtifactsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/artifacts", h.ListArtifacts)
}

// ListArtifacts returns the exported files in the output directory
func (h *ArtifactsHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.discovery.ListArtifacts()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			render.JSON(w, r, map[string]any{"artifacts": []files.FileInfo{}})
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("list artifacts", err))
		return
	}

	render.JSON(w, r, map[string]any{"artifacts": artifacts})
}

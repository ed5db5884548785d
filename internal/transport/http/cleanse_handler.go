package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "csvhealth/internal/errors"
	"csvhealth/internal/exporter"
	"csvhealth/internal/operations"
	"csvhealth/internal/services"
)

// Multipart form field names for POST /api/cleanse
const (
	formFieldDataset     = "dataset"
	formFieldStrategy    = "strategy"
	formFieldPlaceholder = "placeholder"
)

// CleanseHandler handles dataset upload, run lookup, and artifact download
type CleanseHandler struct {
	service        CleanseServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewCleanseHandler creates a new cleanse handler with RFC 7807 error handling
func NewCleanseHandler(service CleanseServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CleanseHandler {
	return &CleanseHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "cleanse_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the cleanse routes with proper Chi patterns
func (h *CleanseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/cleanse", h.Cleanse)
	r.Get("/runs", h.ListRuns)
	r.Route("/runs/{runID}", func(r chi.Router) {
		r.Get("/", h.GetRun)
		r.Get("/artifacts/{artifact}", h.DownloadArtifact)
	})

	return r
}

// Cleanse handles POST /api/cleanse: a multipart upload with the CSV file
// in the "dataset" field and the fill strategy in the "strategy" field.
func (h *CleanseHandler) Cleanse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.handleUploadError(w, r, err)
		return
	}

	file, header, err := r.FormFile(formFieldDataset)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(formFieldDataset, "A CSV file is required in the 'dataset' field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.handleUploadError(w, r, err)
		return
	}

	strategy := r.FormValue(formFieldStrategy)
	if strategy == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(formFieldStrategy, "A fill strategy is required"))
		return
	}

	h.logger.InfoContext(ctx, "cleanse upload received",
		slog.String("filename", header.Filename),
		slog.String("strategy", strategy),
		slog.Int("size", len(data)))

	state, err := h.service.Cleanse(ctx, services.CleanseRequest{
		Filename:    path.Base(header.Filename),
		Strategy:    strategy,
		Placeholder: r.FormValue(formFieldPlaceholder),
		Data:        data,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.runResponse(state, true))
}

// ListRuns handles GET /api/runs
func (h *CleanseHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs := h.service.Runs()
	render.JSON(w, r, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun handles GET /api/runs/{runID}
func (h *CleanseHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	state, err := h.service.Run(runID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, h.runResponse(state, state.CurrentStatus() == operations.RunStatusCompleted))
}

// DownloadArtifact handles GET /api/runs/{runID}/artifacts/{artifact}
func (h *CleanseHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	artifact := chi.URLParam(r, "artifact")

	filePath, err := h.service.ArtifactPath(runID, artifact)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact))
	http.ServeFile(w, r, filePath)
}

// handleUploadError distinguishes an oversized body from other read failures
func (h *CleanseHandler) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		return
	}
	h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
}

// runResponse builds the JSON view of a run. Details (summary, narrative,
// artifact links) are included for completed runs.
func (h *CleanseHandler) runResponse(state *operations.RunState, includeDetails bool) map[string]interface{} {
	steps := make([]map[string]interface{}, 0, len(state.Steps))
	for _, id := range []string{operations.StepIDLoad, operations.StepIDProfile, operations.StepIDClean, operations.StepIDReport} {
		step, ok := state.Steps[id]
		if !ok {
			continue
		}
		steps = append(steps, map[string]interface{}{
			"id":      step.ID,
			"name":    step.Name,
			"status":  string(step.CurrentStatus()),
			"message": step.Message,
		})
	}

	resp := map[string]interface{}{
		"run_id":   state.ID,
		"filename": state.Filename,
		"status":   string(state.CurrentStatus()),
		"strategy": string(state.Strategy),
		"steps":    steps,
	}

	if includeDetails && state.Summary != nil {
		artifacts := make(map[string]string, len(exporter.ArtifactNames()))
		for _, name := range exporter.ArtifactNames() {
			artifacts[name] = fmt.Sprintf("/api/runs/%s/artifacts/%s", state.ID, name)
		}
		resp["summary"] = state.Summary
		resp["narrative"] = state.Narrative
		resp["artifacts"] = artifacts
	}

	return resp
}

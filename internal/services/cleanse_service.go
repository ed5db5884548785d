package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"csvhealth/internal/cleaning"
	"csvhealth/internal/config"
	apperrors "csvhealth/internal/errors"
	"csvhealth/internal/exporter"
	"csvhealth/internal/operations"
)

// CleanseRequest carries one uploaded dataset and its cleaning options
type CleanseRequest struct {
	Filename    string `validate:"required,max=255"`
	Strategy    string `validate:"required"`
	Placeholder string `validate:"max=255"`
	Data        []byte `validate:"required"`
}

// RunSummary is the listing view of a run
type RunSummary struct {
	ID       string               `json:"id"`
	Filename string               `json:"filename"`
	Status   operations.RunStatus `json:"status"`
	Strategy string               `json:"strategy"`
}

// CleanseService executes cleansing runs and keeps their states for lookup
type CleanseService struct {
	manager  *operations.Manager
	cfg      *config.Config
	logger   *slog.Logger
	validate *validator.Validate

	mu   sync.RWMutex
	runs map[string]*operations.RunState
	// order preserves run creation order for listing
	order []string
}

// NewCleanseService creates the service around an operations manager
func NewCleanseService(manager *operations.Manager, cfg *config.Config, logger *slog.Logger) *CleanseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanseService{
		manager:  manager,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "cleanse_service")),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		runs:     make(map[string]*operations.RunState),
	}
}

// Cleanse runs the full pipeline for one uploaded dataset. On success the
// run's artifacts are written under the run directory. The run state is
// kept for later lookup regardless of outcome.
func (s *CleanseService) Cleanse(ctx context.Context, req CleanseRequest) (*operations.RunState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}

	strategy, err := cleaning.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	state := operations.NewRunState(runID, req.Filename, req.Data, strategy, req.Placeholder)

	s.mu.Lock()
	s.runs[runID] = state
	s.order = append(s.order, runID)
	s.mu.Unlock()

	if _, err := s.manager.Execute(ctx, state); err != nil {
		return state, err
	}

	writer := exporter.NewArtifactWriter(s.cfg.RunDir(runID), s.logger)
	if _, err := writer.WriteAll(state.Cleaned, state.Report, state.Summary, state.Narrative); err != nil {
		return state, apperrors.NewStorageError("write run artifacts", err)
	}

	s.logger.InfoContext(ctx, "cleanse run finished",
		slog.String("run_id", runID),
		slog.String("filename", req.Filename),
		slog.String("strategy", string(strategy)))
	return state, nil
}

// Run returns the state of a previously executed run
func (s *CleanseService) Run(runID string) (*operations.RunState, error) {
	s.mu.RLock()
	state, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("run %s", runID))
	}
	return state, nil
}

// Runs lists known runs, newest first
func (s *CleanseService) Runs() []RunSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]RunSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		state := s.runs[s.order[i]]
		summaries = append(summaries, RunSummary{
			ID:       state.ID,
			Filename: state.Filename,
			Status:   state.CurrentStatus(),
			Strategy: string(state.Strategy),
		})
	}
	return summaries
}

// ArtifactPath resolves a run's artifact file for download. Unknown runs
// and unknown artifact names both yield a not-found error.
func (s *CleanseService) ArtifactPath(runID, name string) (string, error) {
	if _, err := s.Run(runID); err != nil {
		return "", err
	}

	valid := false
	for _, known := range exporter.ArtifactNames() {
		if name == known {
			valid = true
			break
		}
	}
	if !valid {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("artifact %s", name))
	}

	path := exporter.NewArtifactWriter(s.cfg.RunDir(runID), s.logger).Path(name)
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("artifact %s for run %s", name, runID))
	}
	return path, nil
}

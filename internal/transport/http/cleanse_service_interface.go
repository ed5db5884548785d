package http

import (
	"context"

	"csvhealth/internal/operations"
	"csvhealth/internal/services"
)

// CleanseServiceInterface is what the handlers need from the cleanse service
type CleanseServiceInterface interface {
	Cleanse(ctx context.Context, req services.CleanseRequest) (*operations.RunState, error)
	Run(runID string) (*operations.RunState, error)
	Runs() []services.RunSummary
	ArtifactPath(runID, name string) (string, error)
}

package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"csvhealth/internal/cleaning"
)

// ClientCounter reports how many WebSocket clients are connected.
// Implemented by the websocket hub.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	startTime time.Time
	cleanse   *CleanseService
	clients   ClientCounter
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Strategies []string               `json:"strategies"`
	Runtime    map[string]interface{} `json:"runtime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, cleanse *CleanseService, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		cleanse:   cleanse,
		clients:   clients,
		logger:    logger,
	}
}

// Health returns the current health status
func (s *HealthService) Health(ctx context.Context) HealthStatus {
	strategies := make([]string, 0, len(cleaning.Strategies()))
	for _, strategy := range cleaning.Strategies() {
		strategies = append(strategies, string(strategy))
	}

	rt := map[string]interface{}{
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	}
	if s.cleanse != nil {
		rt["runs"] = len(s.cleanse.Runs())
	}
	if s.clients != nil {
		rt["websocket_clients"] = s.clients.ClientCount()
	}

	return HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Version:    s.version,
		Strategies: strategies,
		Runtime:    rt,
	}
}

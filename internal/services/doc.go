// Package services holds the application services behind the HTTP
// handlers. CleanseService runs the pipeline for an uploaded dataset and
// persists the run's artifacts; HealthService reports process health.
package services

// Package config loads the application configuration from environment
// variables (CSVHEALTH_ prefix) and an optional config.yaml file.
// Environment variables take precedence over the file; defaults fill
// the rest. Path helpers resolve the data directory and the per-run
// artifact directories beneath it.
package config

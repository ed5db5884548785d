package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const runsDirName = "runs"

// DataDir returns the resolved data directory, made absolute against the
// working directory when configured relative.
func (c *Config) DataDir() string {
	return absPath(c.Paths.DataDir)
}

// LogsDir returns the resolved logs directory
func (c *Config) LogsDir() string {
	return absPath(c.Paths.LogsDir)
}

// RunsDir returns the directory holding all run artifact directories
func (c *Config) RunsDir() string {
	return filepath.Join(c.DataDir(), runsDirName)
}

// RunDir returns the artifact directory for one run
func (c *Config) RunDir(runID string) string {
	return filepath.Join(c.RunsDir(), runID)
}

// EnsureDirectories creates the data, runs, and logs directories if they
// do not exist
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir(), c.RunsDir(), c.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func absPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

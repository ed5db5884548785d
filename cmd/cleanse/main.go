package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"csvhealth/internal/cleaning"
	"csvhealth/internal/config"
	"csvhealth/internal/exporter"
	"csvhealth/internal/infrastructure"
	"csvhealth/internal/operations"
	"csvhealth/internal/report"
)

// fileResult holds the outcome of cleansing one input file
type fileResult struct {
	File      string
	RunID     string
	RowsIn    int
	RowsOut   int
	Health    int
	OutputDir string
	Err       error
}

func main() {
	outDir := flag.String("out", "out", "output directory for run artifacts")
	strategyName := flag.String("strategy", "mean", "fill strategy: "+strings.Join(strategyNames(), ", "))
	placeholder := flag.String("placeholder", "", "fill value for the constant strategy")
	concurrency := flag.Int("concurrency", 4, "number of files processed in parallel")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: cleanse [flags] file.csv [file.csv ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	strategy, err := cleaning.ParseStrategy(*strategyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid strategy %q, valid strategies: %s\n", *strategyName, strings.Join(strategyNames(), ", "))
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	// Logs go to a file so the progress bar owns the terminal
	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:    *logLevel,
		Format:   "json",
		Output:   "file",
		FilePath: filepath.Join(*outDir, "cleanse.log"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	results := run(context.Background(), logger, files, strategy, *placeholder, *outDir, *concurrency)

	failed := printResults(os.Stdout, results)
	if failed > 0 {
		os.Exit(1)
	}
}

// run cleanses every input file, at most concurrency at a time
func run(ctx context.Context, logger *slog.Logger, files []string, strategy cleaning.Strategy, placeholder, outDir string, concurrency int) []fileResult {
	manager := operations.NewManager(logger)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("cleansing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	var mu sync.Mutex
	results := make([]fileResult, 0, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, file := range files {
		g.Go(func() error {
			res := cleanseFile(ctx, manager, logger, file, strategy, placeholder, outDir)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()

			bar.Add(1)
			return nil
		})
	}

	// Per-file failures are reported in the results, never through the group
	g.Wait()
	bar.Finish()

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}

// cleanseFile runs the pipeline on one CSV file and writes its artifacts
// under outDir/<file base name>
func cleanseFile(ctx context.Context, manager *operations.Manager, logger *slog.Logger, file string, strategy cleaning.Strategy, placeholder, outDir string) fileResult {
	res := fileResult{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		res.Err = fmt.Errorf("read failed: %w", err)
		return res
	}

	state := operations.NewRunState(uuid.New().String(), filepath.Base(file), data, strategy, placeholder)
	res.RunID = state.ID

	if _, err := manager.Execute(ctx, state); err != nil {
		res.Err = err
		return res
	}

	res.OutputDir = filepath.Join(outDir, baseName(file))
	writer := exporter.NewArtifactWriter(res.OutputDir, logger)
	if _, err := writer.WriteAll(state.Cleaned, state.Report, state.Summary, state.Narrative); err != nil {
		res.Err = fmt.Errorf("write artifacts failed: %w", err)
		return res
	}

	res.RowsIn = state.Table.RowCount()
	res.RowsOut = state.Cleaned.RowCount()
	res.Health = report.HealthScore(state.Report)
	return res
}

// printResults writes one line per file and returns the failure count
func printResults(w *os.File, results []fileResult) int {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", res.File, res.Err)
			continue
		}
		fmt.Fprintf(w, "OK    %s: %d -> %d rows, health %d/100, artifacts in %s\n",
			res.File, res.RowsIn, res.RowsOut, res.Health, res.OutputDir)
	}
	fmt.Fprintf(w, "%d file(s) processed, %d failed\n", len(results), failed)
	return failed
}

// baseName strips the directory and extension from a path
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func strategyNames() []string {
	strategies := cleaning.Strategies()
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = string(s)
	}
	return names
}

package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"csvhealth/internal/dataset"
	"csvhealth/internal/profile"
	"csvhealth/internal/report"
)

// Artifact file names within a run directory
const (
	ArtifactCleanedCSV  = "cleaned_data.csv"
	ArtifactSummaryJSON = "summary.json"
	ArtifactReportText  = "report.txt"
	ArtifactReportXLSX  = "report.xlsx"
)

// ArtifactNames lists every file a completed run produces
func ArtifactNames() []string {
	return []string{ArtifactCleanedCSV, ArtifactSummaryJSON, ArtifactReportText, ArtifactReportXLSX}
}

// ArtifactWriter persists run outputs into one run directory
type ArtifactWriter struct {
	dir    string
	logger *slog.Logger
}

// NewArtifactWriter creates a writer rooted at the run directory
func NewArtifactWriter(dir string, logger *slog.Logger) *ArtifactWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactWriter{dir: dir, logger: logger}
}

// Dir returns the run directory this writer targets
func (w *ArtifactWriter) Dir() string {
	return w.dir
}

// Path returns the absolute path of a named artifact
func (w *ArtifactWriter) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteAll persists every artifact of a completed run and returns the
// file names written
func (w *ArtifactWriter) WriteAll(cleaned *dataset.Table, qr *profile.QualityReport, summary report.Summary, narrative string) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	if err := w.WriteCleanedCSV(cleaned); err != nil {
		return nil, err
	}
	if err := w.WriteSummary(summary); err != nil {
		return nil, err
	}
	if err := w.WriteNarrative(narrative); err != nil {
		return nil, err
	}
	if err := w.WriteWorkbook(cleaned, qr, summary); err != nil {
		return nil, err
	}

	w.logger.Info("run artifacts written",
		slog.String("dir", w.dir),
		slog.Int("artifacts", len(ArtifactNames())))
	return ArtifactNames(), nil
}

// WriteCleanedCSV writes the cleaned table as CSV. A UTF-8 BOM is
// prefixed so Excel opens the file correctly.
func (w *ArtifactWriter) WriteCleanedCSV(table *dataset.Table) error {
	fullPath := w.Path(ArtifactCleanedCSV)

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range table.DataRecords() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteSummary writes the structured summary as indented JSON
func (w *ArtifactWriter) WriteSummary(summary report.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(w.Path(ArtifactSummaryJSON), data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteNarrative writes the human-readable report text
func (w *ArtifactWriter) WriteNarrative(narrative string) error {
	if err := os.WriteFile(w.Path(ArtifactReportText), []byte(narrative), 0644); err != nil {
		return fmt.Errorf("failed to write narrative: %w", err)
	}
	return nil
}

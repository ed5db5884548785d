package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"csvhealth/internal/cleaning"
	"csvhealth/internal/dataset"
	"csvhealth/internal/profile"
)

// Health score weights, matching the weighting the original report used:
// missing data hurts most, duplicates next, outliers least.
const (
	missingWeight = 0.6
	dupWeight     = 0.25
	outlierWeight = 0.15
)

// Summary is the machine-readable rendering of a run: scalar facts plus
// one level of per-column maps. It marshals directly to JSON.
type Summary map[string]interface{}

// Build produces both artifacts of a cleansing run: the structured summary
// and the narrative text report. beforeRows and afterRows are the row
// counts before and after cleaning.
func Build(qr *profile.QualityReport, cleaned *dataset.Table, result *cleaning.Result, beforeRows, afterRows int) (Summary, string) {
	summary := buildSummary(qr, cleaned, result, beforeRows, afterRows)
	narrative := buildNarrative(qr, cleaned, result, beforeRows, afterRows)
	return summary, narrative
}

// HealthScore grades the pre-clean dataset from 0 to 100
func HealthScore(qr *profile.QualityReport) int {
	cells := qr.TotalRows * qr.TotalColumns
	if cells == 0 {
		return 100
	}

	missingPct := float64(qr.MissingTotal) / float64(cells) * 100
	dupPct := float64(qr.DuplicateRows) / float64(qr.TotalRows) * 100
	outlierPct := float64(qr.OutlierTotal) / float64(qr.TotalRows) * 100

	score := 100 - (missingPct*missingWeight + dupPct*dupWeight + outlierPct*outlierWeight)
	if score < 0 {
		return 0
	}
	return int(math.Round(score))
}

func buildSummary(qr *profile.QualityReport, cleaned *dataset.Table, result *cleaning.Result, beforeRows, afterRows int) Summary {
	missingFound := make(map[string]int, len(qr.Columns))
	outliersFound := make(map[string]int, len(qr.Columns))
	columnTypes := make(map[string]string, len(qr.Columns))
	for _, col := range qr.Columns {
		missingFound[col.Name] = col.MissingCount
		outliersFound[col.Name] = col.Outliers.Count
		columnTypes[col.Name] = string(col.Type)
	}

	filledWith := make(map[string]string, len(result.FilledByColumn))
	filledCount := make(map[string]int, len(result.FilledByColumn))
	for name, fill := range result.FilledByColumn {
		filledWith[name] = fill.FilledWith
		filledCount[name] = fill.Count
	}

	summary := Summary{
		"rows_before":          beforeRows,
		"rows_after":           afterRows,
		"duplicates_removed":   result.DuplicatesRemoved,
		"rows_dropped_missing": result.RowsDroppedMissing,
		"strategy":             string(result.Strategy),
		"health_score":         HealthScore(qr),
		"column_types":         columnTypes,
		"missing_found":        missingFound,
		"missing_remaining":    remainingMissing(cleaned),
		"outliers_found":       outliersFound,
		"filled_with":          filledWith,
		"filled_count":         filledCount,
	}

	if len(result.EmptyColumns) > 0 {
		warnings := append([]string(nil), result.EmptyColumns...)
		sort.Strings(warnings)
		summary["empty_columns"] = warnings
	}

	addNumericStats(summary, qr)

	return summary
}

// addNumericStats flattens per-column descriptive statistics into one-level
// maps keyed by column name.
func addNumericStats(summary Summary, qr *profile.QualityReport) {
	mean := make(map[string]float64)
	median := make(map[string]float64)
	stddev := make(map[string]float64)
	for _, col := range qr.Columns {
		if col.Stats == nil {
			continue
		}
		mean[col.Name] = col.Stats.Mean
		median[col.Name] = col.Stats.Median
		stddev[col.Name] = col.Stats.StdDev
	}
	if len(mean) > 0 {
		summary["column_mean"] = mean
		summary["column_median"] = median
		summary["column_stddev"] = stddev
	}
}

// remainingMissing counts missing cells per column in the cleaned table
func remainingMissing(cleaned *dataset.Table) map[string]int {
	remaining := make(map[string]int, len(cleaned.Columns))
	for i, name := range cleaned.Columns {
		count := 0
		for _, row := range cleaned.Rows {
			if row[i].IsMissing() {
				count++
			}
		}
		remaining[name] = count
	}
	return remaining
}

// buildNarrative renders the fixed-order text report: overview, duplicates,
// missing values by column, outliers by column, strategy applied, final
// row count.
func buildNarrative(qr *profile.QualityReport, cleaned *dataset.Table, result *cleaning.Result, beforeRows, afterRows int) string {
	var sb strings.Builder
	remaining := remainingMissing(cleaned)

	fmt.Fprintf(&sb, "Dataset Quality Report\n")
	fmt.Fprintf(&sb, "======================\n\n")

	fmt.Fprintf(&sb, "Overview\n")
	fmt.Fprintf(&sb, "--------\n")
	fmt.Fprintf(&sb, "Health score: %d%%\n", HealthScore(qr))
	fmt.Fprintf(&sb, "Rows analyzed: %d across %d columns\n", beforeRows, qr.TotalColumns)
	fmt.Fprintf(&sb, "Missing cells found: %d\n\n", qr.MissingTotal)

	fmt.Fprintf(&sb, "Duplicates\n")
	fmt.Fprintf(&sb, "----------\n")
	fmt.Fprintf(&sb, "Duplicate rows removed: %d\n\n", result.DuplicatesRemoved)

	fmt.Fprintf(&sb, "Missing values by column\n")
	fmt.Fprintf(&sb, "------------------------\n")
	for _, col := range qr.Columns {
		fmt.Fprintf(&sb, "  %s (%s): %d found, %d remaining\n",
			col.Name, col.Type, col.MissingCount, remaining[col.Name])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Outliers by column\n")
	fmt.Fprintf(&sb, "------------------\n")
	for _, col := range qr.Columns {
		if !col.Type.IsNumeric() {
			continue
		}
		if !col.Outliers.Computed {
			fmt.Fprintf(&sb, "  %s: not computed (fewer than 4 values)\n", col.Name)
			continue
		}
		fmt.Fprintf(&sb, "  %s: %d outside [%s, %s]\n",
			col.Name, col.Outliers.Count,
			formatBound(col.Outliers.LowerBound), formatBound(col.Outliers.UpperBound))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Strategy applied\n")
	fmt.Fprintf(&sb, "----------------\n")
	fmt.Fprintf(&sb, "Fill strategy: %s\n", result.Strategy)
	for _, name := range sortedFillColumns(result) {
		fill := result.FilledByColumn[name]
		fmt.Fprintf(&sb, "  %s: filled %d cell(s) with %q\n", name, fill.Count, fill.FilledWith)
	}
	if result.RowsDroppedMissing > 0 {
		fmt.Fprintf(&sb, "Rows dropped for missing values: %d\n", result.RowsDroppedMissing)
	}
	for _, name := range result.EmptyColumns {
		fmt.Fprintf(&sb, "  warning: column %s has no values to fill from; left unfilled\n", name)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Final row count\n")
	fmt.Fprintf(&sb, "---------------\n")
	fmt.Fprintf(&sb, "Rows before: %d\n", beforeRows)
	fmt.Fprintf(&sb, "Rows after: %d\n", afterRows)

	return sb.String()
}

func sortedFillColumns(result *cleaning.Result) []string {
	names := make([]string, 0, len(result.FilledByColumn))
	for name := range result.FilledByColumn {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatBound(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

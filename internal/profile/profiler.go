package profile

import (
	"csvhealth/internal/dataset"
)

// minOutlierSample is the smallest number of non-missing numeric values a
// column needs before IQR bounds are computed. Smaller samples are skipped
// rather than reported with spurious bounds.
const minOutlierSample = 4

// iqrFactor is the classic Tukey fence multiplier.
const iqrFactor = 1.5

// NumericStats holds descriptive statistics for a numeric column
type NumericStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// OutlierSummary describes IQR outlier detection for one numeric column.
// Computed is false when the column had fewer than four non-missing values,
// in which case the bounds and count are meaningless zeros.
type OutlierSummary struct {
	Computed   bool    `json:"computed"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Count      int     `json:"count"`
	Indices    []int   `json:"indices,omitempty"`
}

// ColumnProfile is the per-column slice of a QualityReport
type ColumnProfile struct {
	Name            string             `json:"name"`
	Type            dataset.ColumnType `json:"type"`
	MissingCount    int                `json:"missing_count"`
	NonMissingCount int                `json:"non_missing_count"`
	DistinctCount   int                `json:"distinct_count"`
	Stats           *NumericStats      `json:"stats,omitempty"`
	Outliers        OutlierSummary     `json:"outliers"`
}

// QualityReport aggregates all column profiles plus table-level findings
type QualityReport struct {
	TotalRows        int             `json:"total_rows"`
	TotalColumns     int             `json:"total_columns"`
	Columns          []ColumnProfile `json:"columns"`
	DuplicateRows    int             `json:"duplicate_rows"`
	DuplicateIndices []int           `json:"duplicate_indices,omitempty"`
	MissingTotal     int             `json:"missing_total"`
	OutlierTotal     int             `json:"outlier_total"`
}

// Column returns the profile of the named column, or nil
func (r *QualityReport) Column(name string) *ColumnProfile {
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return &r.Columns[i]
		}
	}
	return nil
}

// Profile scans a table and produces its quality report. The table is
// read-only to the profiler; two calls over the same table return
// identical reports.
func Profile(table *dataset.Table) *QualityReport {
	report := &QualityReport{
		TotalRows:    table.RowCount(),
		TotalColumns: len(table.Columns),
		Columns:      make([]ColumnProfile, len(table.Columns)),
	}

	for i, name := range table.Columns {
		report.Columns[i] = profileColumn(table, i, name)
		report.MissingTotal += report.Columns[i].MissingCount
		report.OutlierTotal += report.Columns[i].Outliers.Count
	}

	report.DuplicateIndices = duplicateIndices(table)
	report.DuplicateRows = len(report.DuplicateIndices)

	return report
}

func profileColumn(table *dataset.Table, idx int, name string) ColumnProfile {
	colType := table.Types[idx]
	prof := ColumnProfile{
		Name: name,
		Type: colType,
	}

	distinct := make(map[string]struct{})
	var numeric []float64
	var numericRows []int

	for rowIdx, row := range table.Rows {
		cell := row[idx]
		if cell.IsMissing() {
			prof.MissingCount++
			continue
		}
		prof.NonMissingCount++
		distinct[cell.Render()] = struct{}{}
		if colType.IsNumeric() {
			numeric = append(numeric, cell.AsFloat())
			numericRows = append(numericRows, rowIdx)
		}
	}
	prof.DistinctCount = len(distinct)

	if colType.IsNumeric() && len(numeric) > 0 {
		min, max := numeric[0], numeric[0]
		for _, v := range numeric {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		prof.Stats = &NumericStats{
			Mean:   Mean(numeric),
			Median: Median(numeric),
			StdDev: StdDev(numeric),
			Min:    min,
			Max:    max,
		}
		prof.Outliers = detectOutliers(numeric, numericRows)
	}

	return prof
}

// detectOutliers flags values outside Q1-1.5*IQR .. Q3+1.5*IQR
func detectOutliers(values []float64, rows []int) OutlierSummary {
	if len(values) < minOutlierSample {
		return OutlierSummary{}
	}

	q1, q3 := Quartiles(values)
	iqr := q3 - q1
	summary := OutlierSummary{
		Computed:   true,
		LowerBound: q1 - iqrFactor*iqr,
		UpperBound: q3 + iqrFactor*iqr,
	}

	for i, v := range values {
		if v < summary.LowerBound || v > summary.UpperBound {
			summary.Count++
			summary.Indices = append(summary.Indices, rows[i])
		}
	}

	return summary
}

// duplicateIndices returns the row indices that repeat an earlier row.
// The first occurrence of each distinct row is not counted.
func duplicateIndices(table *dataset.Table) []int {
	seen := make(map[string]struct{}, table.RowCount())
	var dups []int
	for i := range table.Rows {
		key := table.RowKey(i)
		if _, ok := seen[key]; ok {
			dups = append(dups, i)
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

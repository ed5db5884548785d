package cleaning

import (
	"github.com/spf13/cast"

	"csvhealth/internal/dataset"
	apperrors "csvhealth/internal/errors"
	"csvhealth/internal/profile"
)

// DefaultPlaceholder is the constant-strategy fill value when the caller
// does not supply one.
const DefaultPlaceholder = "0"

// Options tune a cleaning run
type Options struct {
	// Placeholder is the raw fill value for StrategyConstant. It is cast
	// to each column's inferred type before filling.
	Placeholder string
}

// ColumnFill records what a column's missing cells were filled with
type ColumnFill struct {
	FilledWith string `json:"filled_with"`
	Count      int    `json:"count"`
}

// Result describes the effect of one cleaning run
type Result struct {
	Strategy           Strategy              `json:"strategy"`
	DuplicatesRemoved  int                   `json:"duplicates_removed"`
	RowsDroppedMissing int                   `json:"rows_dropped_missing"`
	FilledByColumn     map[string]ColumnFill `json:"filled_by_column"`
	// EmptyColumns lists columns whose missing cells could not be filled
	// because the column has no non-missing values to derive a fill from.
	// This is a warning, not a failure: those cells stay missing.
	EmptyColumns []string `json:"empty_columns,omitempty"`
}

// Clean produces a cleaned copy of the table: duplicates are removed first
// (keeping the first occurrence, preserving order among survivors), then
// the fill strategy is applied to the remaining missing cells. The cleaned
// table has the same column set as the input and never more rows.
func Clean(table *dataset.Table, report *profile.QualityReport, strategy Strategy, opts Options) (*dataset.Table, *Result, error) {
	if !strategy.Valid() {
		return nil, nil, apperrors.NewInvalidStrategyError(string(strategy))
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}

	cleaned, removed := dropDuplicates(table)

	result := &Result{
		Strategy:          strategy,
		DuplicatesRemoved: removed,
		FilledByColumn:    make(map[string]ColumnFill),
	}

	// Strategies that derive fills from the column's own values cannot
	// fill an all-missing column, whatever type inference made of it.
	switch strategy {
	case StrategyMean, StrategyMedian, StrategyMostFrequent:
		result.EmptyColumns = emptyColumns(cleaned)
	}

	switch strategy {
	case StrategyDropRows:
		dropMissingRows(cleaned, result)
	case StrategyMean:
		fillNumeric(cleaned, result, profile.Mean)
	case StrategyMedian:
		fillNumeric(cleaned, result, profile.Median)
	case StrategyConstant:
		fillConstant(cleaned, result, opts.Placeholder)
	case StrategyMostFrequent:
		fillMostFrequent(cleaned, result)
	}

	return cleaned, result, nil
}

// dropDuplicates returns a copy of the table with repeats of earlier rows
// removed, and how many rows were dropped.
func dropDuplicates(table *dataset.Table) (*dataset.Table, int) {
	clone := table.Clone()
	seen := make(map[string]struct{}, len(clone.Rows))
	kept := clone.Rows[:0]
	removed := 0
	for i := range clone.Rows {
		key := table.RowKey(i)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, clone.Rows[i])
	}
	clone.Rows = kept
	return clone, removed
}

// emptyColumns lists columns that have missing cells but no non-missing
// values to derive a fill from, in header order.
func emptyColumns(table *dataset.Table) []string {
	var empty []string
	for col := range table.Columns {
		missing, values := 0, 0
		for _, row := range table.Rows {
			if row[col].IsMissing() {
				missing++
			} else {
				values++
			}
		}
		if missing > 0 && values == 0 {
			empty = append(empty, table.Columns[col])
		}
	}
	return empty
}

// dropMissingRows removes every row that still contains a missing cell
func dropMissingRows(table *dataset.Table, result *Result) {
	kept := table.Rows[:0]
	for _, row := range table.Rows {
		missing := false
		for _, cell := range row {
			if cell.IsMissing() {
				missing = true
				break
			}
		}
		if missing {
			result.RowsDroppedMissing++
			continue
		}
		kept = append(kept, row)
	}
	table.Rows = kept
}

// fillNumeric fills missing cells of numeric columns with a statistic of
// the column's non-missing values. Columns with no non-missing values are
// flagged and left unfilled rather than failing the run.
func fillNumeric(table *dataset.Table, result *Result, statistic func([]float64) float64) {
	for col, colType := range table.Types {
		if !colType.IsNumeric() {
			continue
		}
		fillColumnWithStatistic(table, col, result, statistic)
	}
}

func fillColumnWithStatistic(table *dataset.Table, col int, result *Result, statistic func([]float64) float64) {
	var values []float64
	missing := 0
	for _, row := range table.Rows {
		if row[col].IsMissing() {
			missing++
			continue
		}
		values = append(values, row[col].AsFloat())
	}
	if missing == 0 || len(values) == 0 {
		return
	}

	fill := dataset.FloatValue(statistic(values))
	count := 0
	for _, row := range table.Rows {
		if row[col].IsMissing() {
			row[col] = fill
			count++
		}
	}
	result.FilledByColumn[table.Columns[col]] = ColumnFill{
		FilledWith: fill.Render(),
		Count:      count,
	}
}

// fillConstant fills every missing cell with the placeholder cast to a
// representation appropriate to the column's inferred type. A placeholder
// that cannot be cast falls back to its string form so the missing-value
// law still holds.
func fillConstant(table *dataset.Table, result *Result, placeholder string) {
	for col, colType := range table.Types {
		fill := castPlaceholder(placeholder, colType)
		count := 0
		for _, row := range table.Rows {
			if row[col].IsMissing() {
				row[col] = fill
				count++
			}
		}
		if count > 0 {
			result.FilledByColumn[table.Columns[col]] = ColumnFill{
				FilledWith: fill.Render(),
				Count:      count,
			}
		}
	}
}

func castPlaceholder(placeholder string, colType dataset.ColumnType) dataset.Value {
	switch colType {
	case dataset.TypeBoolean:
		if b, err := cast.ToBoolE(placeholder); err == nil {
			return dataset.BoolValue(b)
		}
	case dataset.TypeInteger:
		if i, err := cast.ToInt64E(placeholder); err == nil {
			return dataset.IntValue(i)
		}
	case dataset.TypeFloat:
		if f, err := cast.ToFloat64E(placeholder); err == nil {
			return dataset.FloatValue(f)
		}
	}
	return dataset.StringValue(placeholder)
}

// fillMostFrequent fills categorical (string and boolean) columns with the
// modal value, ties broken by first occurrence in row order. Numeric
// columns fall back to the mean.
func fillMostFrequent(table *dataset.Table, result *Result) {
	for col, colType := range table.Types {
		if colType.IsNumeric() {
			fillColumnWithStatistic(table, col, result, profile.Mean)
			continue
		}

		counts := make(map[string]int)
		var order []string
		byKey := make(map[string]dataset.Value)
		missing := 0
		for _, row := range table.Rows {
			cell := row[col]
			if cell.IsMissing() {
				missing++
				continue
			}
			key := cell.Render()
			if _, ok := counts[key]; !ok {
				order = append(order, key)
				byKey[key] = cell
			}
			counts[key]++
		}
		if missing == 0 || len(order) == 0 {
			continue
		}

		modal := order[0]
		for _, key := range order {
			if counts[key] > counts[modal] {
				modal = key
			}
		}

		fill := byKey[modal]
		count := 0
		for _, row := range table.Rows {
			if row[col].IsMissing() {
				row[col] = fill
				count++
			}
		}
		result.FilledByColumn[table.Columns[col]] = ColumnFill{
			FilledWith: fill.Render(),
			Count:      count,
		}
	}
}

package exporter

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"csvhealth/internal/dataset"
	"csvhealth/internal/profile"
	"csvhealth/internal/report"
)

// Workbook sheet names
const (
	sheetSummary = "Summary"
	sheetColumns = "Columns"
	sheetData    = "Cleaned Data"
)

// WriteWorkbook writes an Excel workbook with the summary, the per-column
// profile, and the cleaned data on separate sheets.
func (w *ArtifactWriter) WriteWorkbook(cleaned *dataset.Table, qr *profile.QualityReport, summary report.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetSummary)
	if err := writeSummarySheet(f, summary); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}

	if _, err := f.NewSheet(sheetColumns); err != nil {
		return fmt.Errorf("failed to create columns sheet: %w", err)
	}
	if err := writeColumnsSheet(f, qr); err != nil {
		return fmt.Errorf("failed to write columns sheet: %w", err)
	}

	if _, err := f.NewSheet(sheetData); err != nil {
		return fmt.Errorf("failed to create data sheet: %w", err)
	}
	if err := writeDataSheet(f, cleaned); err != nil {
		return fmt.Errorf("failed to write data sheet: %w", err)
	}

	if err := f.SaveAs(w.Path(ArtifactReportXLSX)); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeSummarySheet lays the flat summary out as key/value rows, scalar
// keys first, per-column maps after, both in sorted key order.
func writeSummarySheet(f *excelize.File, summary report.Summary) error {
	var scalars, maps []string
	for key, value := range summary {
		if _, ok := value.(map[string]interface{}); ok {
			maps = append(maps, key)
			continue
		}
		scalars = append(scalars, key)
	}
	sort.Strings(scalars)
	sort.Strings(maps)

	if err := setRow(f, sheetSummary, 1, []interface{}{"Metric", "Value"}); err != nil {
		return err
	}

	row := 2
	for _, key := range scalars {
		if err := setRow(f, sheetSummary, row, []interface{}{key, summary[key]}); err != nil {
			return err
		}
		row++
	}
	for _, key := range maps {
		byColumn := summary[key].(map[string]interface{})
		cols := make([]string, 0, len(byColumn))
		for col := range byColumn {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			if err := setRow(f, sheetSummary, row, []interface{}{key + "." + col, byColumn[col]}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeColumnsSheet(f *excelize.File, qr *profile.QualityReport) error {
	header := []interface{}{"Column", "Type", "Missing", "Distinct", "Mean", "Median", "Std Dev", "Min", "Max", "Outliers"}
	if err := setRow(f, sheetColumns, 1, header); err != nil {
		return err
	}

	for i, col := range qr.Columns {
		row := []interface{}{col.Name, string(col.Type), col.MissingCount, col.DistinctCount}
		if col.Stats != nil {
			row = append(row, col.Stats.Mean, col.Stats.Median, col.Stats.StdDev, col.Stats.Min, col.Stats.Max)
		} else {
			row = append(row, "", "", "", "", "")
		}
		if col.Outliers.Computed {
			row = append(row, col.Outliers.Count)
		} else {
			row = append(row, "")
		}
		if err := setRow(f, sheetColumns, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeDataSheet(f *excelize.File, cleaned *dataset.Table) error {
	header := make([]interface{}, len(cleaned.Columns))
	for i, name := range cleaned.Columns {
		header[i] = name
	}
	if err := setRow(f, sheetData, 1, header); err != nil {
		return err
	}

	for i, record := range cleaned.DataRecords() {
		row := make([]interface{}, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		if err := setRow(f, sheetData, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

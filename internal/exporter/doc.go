// Package exporter writes the artifacts of a completed cleansing run to
// the run's directory: the cleaned CSV, the JSON summary, the narrative
// text report, and an Excel workbook for spreadsheet users.
package exporter

package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Records returns the table as raw CSV records, header first.
// Missing cells render as empty fields, mirroring the loader's conventions.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Columns...))
	return append(records, t.DataRecords()...)
}

// DataRecords returns only the data rows as raw CSV fields, in row order.
// Callers that write their own header use this instead of Records.
func (t *Table) DataRecords() [][]string {
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = v.Render()
		}
		records[i] = record
	}
	return records
}

// MarshalCSV serializes the table back to CSV bytes with the same
// delimiter and quoting conventions the loader accepts.
func (t *Table) MarshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

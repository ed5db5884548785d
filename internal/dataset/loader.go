package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "csvhealth/internal/errors"
)

// missingTokens are the sentinel strings mapped to the missing marker.
// Comparison happens after trimming surrounding whitespace, so fields that
// contain only spaces are missing too.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// Parse loads raw CSV text into a Table.
//
// The first record is the header; every data record must have the same
// field count. Column types are inferred per column as the most specific
// of boolean, integer, float and string that every non-missing value in
// the column satisfies. Structural problems (no header, duplicate or blank
// column names, ragged rows, broken quoting) return a malformed-input
// error and no table.
func Parse(raw []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(raw))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewMalformedInputError("input has no header row", nil)
	}
	if err != nil {
		return nil, apperrors.NewMalformedInputError("input is not valid CSV", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperrors.NewMalformedInputError(
				fmt.Sprintf("header column %d is blank", i+1), nil)
		}
		if _, dup := seen[name]; dup {
			return nil, apperrors.NewMalformedInputError(
				fmt.Sprintf("duplicate column name %q", name), nil)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	if len(columns) == 1 {
		// encoding/csv drops blank lines, but in a single-column table a
		// blank line is a row whose only cell is missing. Re-read with
		// blank rows preserved.
		reader = csv.NewReader(bytes.NewReader(preserveBlankRows(raw)))
		if _, err := reader.Read(); err != nil {
			return nil, apperrors.NewMalformedInputError("input is not valid CSV", err)
		}
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewMalformedInputError("input is not valid CSV", err)
		}
		records = append(records, record)
	}

	types := inferColumnTypes(columns, records)

	table := &Table{
		Columns: columns,
		Types:   types,
		Rows:    make([][]Value, len(records)),
	}
	for i, record := range records {
		row := make([]Value, len(columns))
		for j, field := range record {
			row[j] = convertCell(field, types[j])
		}
		table.Rows[i] = row
	}

	return table, nil
}

// inferColumnTypes picks the most specific type every non-missing value in
// a column satisfies, probing boolean, integer and float in that order.
// A column with no non-missing values is reported as string.
func inferColumnTypes(columns []string, records [][]string) []ColumnType {
	types := make([]ColumnType, len(columns))
	for col := range columns {
		allBool, allInt, allFloat := true, true, true
		nonMissing := 0
		for _, record := range records {
			field := strings.TrimSpace(record[col])
			if isMissingToken(field) {
				continue
			}
			nonMissing++
			if _, ok := parseBool(field); !ok {
				allBool = false
			}
			if _, err := strconv.ParseInt(field, 10, 64); err != nil {
				allInt = false
			}
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				allFloat = false
			}
		}
		switch {
		case nonMissing == 0:
			types[col] = TypeString
		case allBool:
			types[col] = TypeBoolean
		case allInt:
			types[col] = TypeInteger
		case allFloat:
			types[col] = TypeFloat
		default:
			types[col] = TypeString
		}
	}
	return types
}

// convertCell turns one raw field into a tagged Value of the column's type
func convertCell(field string, colType ColumnType) Value {
	trimmed := strings.TrimSpace(field)
	if isMissingToken(trimmed) {
		return Missing()
	}

	switch colType {
	case TypeBoolean:
		b, _ := parseBool(trimmed)
		return BoolValue(b)
	case TypeInteger:
		i, _ := strconv.ParseInt(trimmed, 10, 64)
		return IntValue(i)
	case TypeFloat:
		f, _ := strconv.ParseFloat(trimmed, 64)
		return FloatValue(f)
	default:
		return StringValue(field)
	}
}

// preserveBlankRows rewrites structural blank lines as quoted empty
// fields so the CSV reader delivers them as one-field records instead of
// skipping them. Blank lines inside a quoted field and blank lines before
// the header are left alone.
func preserveBlankRows(raw []byte) []byte {
	lines := strings.Split(string(raw), "\n")
	trailingNewline := false
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
		trailingNewline = true
	}

	inQuotes := false
	seenHeader := false
	for i, line := range lines {
		content := strings.TrimSuffix(line, "\r")
		if !inQuotes && content == "" {
			if seenHeader {
				lines[i] = `""`
			}
			continue
		}
		if !inQuotes {
			seenHeader = true
		}
		if strings.Count(content, `"`)%2 == 1 {
			inQuotes = !inQuotes
		}
	}

	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	return []byte(out)
}

func isMissingToken(trimmed string) bool {
	_, ok := missingTokens[trimmed]
	return ok
}

// parseBool accepts true/false in any case. The 0/1 and t/f spellings that
// strconv.ParseBool allows are deliberately rejected so numeric columns of
// zeros and ones stay numeric.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

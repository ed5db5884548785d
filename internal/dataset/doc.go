// Package dataset provides the in-memory table model and the CSV loader
// for the cleansing pipeline.
//
// A Table is an ordered header plus rows of tagged cell values. Each cell
// carries its own variant (missing, boolean, integer, float, string) that is
// decided once at load time, so downstream stages never re-infer types.
//
// # Usage
//
//	table, err := dataset.Parse(rawCSV)
//	if err != nil {
//	    // errors.IsMalformedInput(err) for structural CSV problems
//	}
//
// Loading is a pure transformation: the raw bytes are never modified and a
// failed parse returns no partial table.
package dataset

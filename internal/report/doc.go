// Package report renders the findings of a cleansing run into the two
// caller-facing artifacts: a flat key/value summary (JSON-compatible, at
// most one level of per-column maps) and a narrative plain-text report
// with a fixed section order. Both are deterministic functions of the
// pre-clean quality report and the cleaned table.
package report

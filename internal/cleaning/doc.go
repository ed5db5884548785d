// Package cleaning removes duplicate rows and fills missing cells
// according to a caller-chosen strategy, producing a new table and a
// result describing what was changed. The input table is never mutated.
package cleaning

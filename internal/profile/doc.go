// Package profile computes quality reports over loaded tables: per-column
// missing counts and descriptive statistics, duplicate-row detection, and
// IQR-based outlier detection for numeric columns.
//
// Profiling never modifies the table it is given and the same table always
// yields the same report.
package profile

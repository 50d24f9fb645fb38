// Package spc computes statistical process control summaries over tabular data.
//
// A Table is a slice of row records as decoded from JSON or read from a
// spreadsheet. Columns are coerced to numbers where needed; cells that are
// missing or not numeric are dropped rather than reported as errors, and an
// absent column yields an empty result.
//
// Pareto ties are ordered by first appearance in the table.
package spc

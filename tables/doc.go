// Package tables classifies audited records by logical table and change type
// and accumulates per-table counters for the run summary.
package tables

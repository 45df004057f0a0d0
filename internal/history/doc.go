// Package history records each pipeline run in a SQLite ledger so operators
// can review past runs without trawling the output directory.
package history

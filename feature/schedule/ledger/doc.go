// Package ledger persists per-row sync state in a hidden sheet paired with
// each schedule table.
//
// The ledger is positionally aligned with its source table: after any
// reconciliation pass, ledger data row i corresponds to source data row i.
// Alignment is restored in a fixed order each pass. Grow appends blank rows
// before anything is written; deleted rows are torn down and cleared in
// place; shifted survivors are rewritten at their new positions; Trim cuts
// the trailing rows last, so no entry still holding live bindings is ever
// destroyed by a size change.
//
// Columns are resolved by header name with a synonym table, which lets the
// ledger format evolve without breaking old sheets. Writes are full-row
// overwrites so a retried run never reads a half-updated entry, only a
// consistent-but-partial one.
package ledger

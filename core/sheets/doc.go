// Package sheets provides the tabular store client used for schedule tables
// and their paired sync ledgers.
//
// The Client interface is the boundary the sync engine depends on: reading a
// full cell grid, idempotent full-row writes, single-cell writes for identity
// write-back, header-addressed column creation, and structural row
// insert/delete that preserves the frozen header row.
//
// The production implementation is backed by the Google Sheets API. Ledger
// sheets are created hidden so they stay out of casual view. A mock
// implementation for tests lives in the mocks subpackage.
package sheets

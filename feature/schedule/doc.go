// Package schedule orchestrates the synchronization of spreadsheet lesson
// tables into calendar events.
//
// A run reads the settings sheet for the list of tables, then processes each
// enabled table through the same pipeline: read and parse the source rows,
// align the hidden ledger sheet, assign durable record identities, build a
// reconciliation plan against the ledger, and apply it. Tables fail
// independently; a broken table is reported and the run moves on.
//
// The subpackages split the pipeline: models (records, entries, parsing),
// identity (durable id assignment), ledger (hidden sheet persistence),
// reconcile (the decision engine) and sync (plan execution).
package schedule

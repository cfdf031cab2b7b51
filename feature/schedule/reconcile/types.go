package reconcile

import (
	"context"

	"schedule-sync/feature/schedule/models"
)

// Classification is the per-run decision for one source record or orphaned
// ledger entry. It is computed fresh each run and never persisted.
type Classification string

const (
	// New: no ledger entry matches the record id (nor the legacy natural key).
	New Classification = "new"
	// Changed: a matching entry exists but the fingerprint differs.
	Changed Classification = "changed"
	// UnchangedVerified: fingerprints equal, a binding exists and is live.
	UnchangedVerified Classification = "unchanged-verified"
	// UnchangedStale: fingerprints equal but the binding failed its liveness
	// check; treated like Changed (recreate).
	UnchangedStale Classification = "unchanged-stale"
	// Retry: fingerprints equal, no binding recorded, last status not completed.
	Retry Classification = "retry"
	// TerminalSkip: fingerprints equal, no binding, status completed; the row
	// is assumed intentionally inert.
	TerminalSkip Classification = "terminal-skip"
	// Deleted: a ledger entry whose record id has no source record anymore.
	Deleted Classification = "deleted"
)

// Op is the concrete mutation the executor performs for a classification.
type Op string

const (
	// OpNone performs no provider calls at all.
	OpNone Op = "none"
	// OpCreate creates fresh events for every configured calendar.
	OpCreate Op = "create"
	// OpUpdate updates the bound events in place (move semantics).
	OpUpdate Op = "update"
	// OpRecreate tears down whatever bindings remain and creates fresh events.
	OpRecreate Op = "recreate"
	// OpDelete tears down the bound events and clears the ledger entry.
	OpDelete Op = "delete"
)

// RowAction is one planned step. For Deleted actions Record is nil; for New
// actions Entry is nil.
type RowAction struct {
	Row            int
	Classification Classification
	Op             Op
	Record         *models.Record
	Entry          *models.Entry
	// StaleSibling is a ledger entry superseded by this record (same lesson
	// number, different identity, no longer in the source). Its bindings are
	// torn down and its row cleared alongside this action. Nil when none.
	StaleSibling *models.Entry
	Reason       string
}

// Plan is the full action plan for one table, in source row order with
// deletion actions appended last.
type Plan struct {
	Actions []RowAction
	Summary Summary
}

// Summary counts classifications for the run report.
type Summary struct {
	Total     int
	New       int
	Changed   int
	Unchanged int
	Stale     int
	Retries   int
	Skipped   int
	Deleted   int
}

// LivenessFunc checks whether a bound external resource still exists.
// Implementations decide how to treat inconclusive checks; the service
// counts them as live so an existing event is never recreated.
type LivenessFunc func(ctx context.Context, b models.Binding) bool

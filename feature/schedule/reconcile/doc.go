// Package reconcile is the decision engine of the sync: given the current
// source records, the ledger snapshot and a provider liveness check, it
// classifies every record and produces an action plan.
//
// The classification table:
//
//	New                 no entry for the record id (or legacy key)  -> create
//	Changed             fingerprint differs                         -> update in place (or create if unbound)
//	UnchangedVerified   fingerprint equal, binding live             -> skip, zero provider mutations
//	UnchangedStale      fingerprint equal, binding dead             -> recreate
//	Retry               fingerprint equal, no binding, not completed-> create again
//	TerminalSkip        fingerprint equal, no binding, completed    -> skip
//	Deleted             entry without a source record               -> tear down, clear entry
//
// Classifications are computed fresh each run and never persisted. Liveness
// verification before trusting a cached binding is mandatory: a user deleting
// the downstream event out-of-band must not leave the engine believing the
// row is synced indefinitely.
//
// The engine only plans; it performs no mutations. The sync package executes
// the plan.
package reconcile

// Package sync executes reconciliation plans against the calendar provider.
//
// Execution is sequential and run-to-completion: rows are applied one at a
// time with a mandatory minimum delay between provider-mutating calls to
// respect the provider's rate limit. Transient errors (rate limit, quota)
// are retried with bounded exponential backoff; permanent errors fail the
// call immediately.
//
// After every attempt the row's ledger entry is overwritten with whatever
// binding is known, so the next run can resume from a partial failure.
// Deletions are best-effort and never block clearing a ledger entry.
package sync

// Package calendar wraps the external event provider behind the Provider
// interface the sync engine depends on: create, update, liveness lookup and
// delete of calendar events.
//
// # Error Taxonomy
//
// Provider failures are classified for the retry layer:
//   - IsTransient: rate-limit, quota and transient server errors. These are
//     the only errors worth retrying with backoff.
//   - IsNotFound: the bound event no longer exists. GetEvent folds this into
//     a (nil, nil) result so callers treat it as a failed liveness check.
//
// The production implementation uses the Google Calendar API; a testify mock
// lives in the mocks subpackage.
package calendar

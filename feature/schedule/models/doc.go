// Package models defines the data model of the schedule sync engine: source
// records, ledger entries with their external resource bindings, table
// configurations, and the header-resolution logic shared by every table read.
//
// Two identity notions coexist here:
//
//   - RecordID: the durable, position-independent identifier assigned once
//     per source record. All matching is identity-first.
//   - NaturalKey: the legacy lesson-number + date composite, consulted only
//     when an identity lookup fails, for ledger entries written before
//     record identifiers existed.
//
// A record's Fingerprint is a content digest over its key fields only, so
// formatting or other unrelated edits never register as changes.
package models

package reconcile

import (
	"context"
	"fmt"

	"schedule-sync/feature/schedule/ledger"
	"schedule-sync/feature/schedule/models"
)

// BuildPlan classifies every source record against the ledger snapshot and
// produces the action plan for one table. protectedRows holds data row
// indexes that were excluded at read time (data errors); their ledger entries
// are left untouched so a bad cell never tears down a live event.
//
// Matching is identity-first: the legacy natural-key lookup is consulted only
// when the record id finds no entry, for ledgers written before identity
// assignment existed.
func BuildPlan(
	ctx context.Context,
	records []*models.Record,
	snap *ledger.Snapshot,
	exists LivenessFunc,
	protectedRows map[int]struct{},
) *Plan {
	plan := &Plan{}
	consumed := make(map[int]struct{}, len(records))

	liveIDs := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.RecordID != "" {
			liveIDs[rec.RecordID] = struct{}{}
		}
	}

	for _, rec := range records {
		action := classify(ctx, rec, snap, exists, liveIDs, consumed)
		plan.Summary.Total++
		switch action.Classification {
		case New:
			plan.Summary.New++
		case Changed:
			plan.Summary.Changed++
		case UnchangedVerified:
			plan.Summary.Unchanged++
		case UnchangedStale:
			plan.Summary.Stale++
		case Retry:
			plan.Summary.Retries++
		case TerminalSkip:
			plan.Summary.Skipped++
		}
		plan.Actions = append(plan.Actions, action)
	}

	// Any non-blank entry left unmatched has lost its source record.
	for _, entry := range snap.Entries {
		if _, ok := consumed[entry.Row]; ok {
			continue
		}
		if _, ok := protectedRows[entry.Row]; ok {
			continue
		}
		if entry.IsBlank() {
			continue
		}
		if _, live := liveIDs[entry.RecordID]; live {
			// The identity moved to another row; that row's action owns it.
			continue
		}
		plan.Summary.Deleted++
		plan.Actions = append(plan.Actions, RowAction{
			Row:            entry.Row,
			Classification: Deleted,
			Op:             OpDelete,
			Entry:          entry,
			Reason:         fmt.Sprintf("record %s no longer in source", entry.RecordID),
		})
	}

	return plan
}

func classify(
	ctx context.Context,
	rec *models.Record,
	snap *ledger.Snapshot,
	exists LivenessFunc,
	liveIDs map[string]struct{},
	consumed map[int]struct{},
) RowAction {
	entry, matchedByID := lookup(rec, snap)
	if entry == nil || entry.IsBlank() {
		return RowAction{
			Row:            rec.Row,
			Classification: New,
			Op:             OpCreate,
			Record:         rec,
			Reason:         "no ledger entry for this record",
		}
	}
	consumed[entry.Row] = struct{}{}

	if entry.Fingerprint != rec.Fingerprint() {
		action := RowAction{
			Row:            rec.Row,
			Classification: Changed,
			Record:         rec,
			Entry:          entry,
			Reason:         "fingerprint differs from ledger",
		}
		if entry.HasBindings() {
			// Same identity keeps its events: move in place, no delete+create.
			action.Op = OpUpdate
		} else {
			action.Op = OpCreate
		}
		if matchedByID {
			action.StaleSibling = staleSibling(rec, entry, snap, liveIDs, consumed)
		}
		return action
	}

	if entry.HasBindings() {
		if allLive(ctx, entry, exists) {
			return RowAction{
				Row:            rec.Row,
				Classification: UnchangedVerified,
				Op:             OpNone,
				Record:         rec,
				Entry:          entry,
				Reason:         "fingerprint unchanged, binding verified live",
			}
		}
		// The downstream resource vanished out-of-band; recreate rather
		// than believing the row synced forever.
		return RowAction{
			Row:            rec.Row,
			Classification: UnchangedStale,
			Op:             OpRecreate,
			Record:         rec,
			Entry:          entry,
			Reason:         "binding failed liveness check",
		}
	}

	if entry.Status != models.StatusCompleted {
		return RowAction{
			Row:            rec.Row,
			Classification: Retry,
			Op:             OpCreate,
			Record:         rec,
			Entry:          entry,
			Reason:         fmt.Sprintf("no binding recorded, status %q", entry.Status),
		}
	}

	return RowAction{
		Row:            rec.Row,
		Classification: TerminalSkip,
		Op:             OpNone,
		Record:         rec,
		Entry:          entry,
		Reason:         "completed without binding, assumed intentionally inert",
	}
}

// lookup finds the ledger entry for a record: by id first, then by the legacy
// natural key. The second return value reports an identity match.
func lookup(rec *models.Record, snap *ledger.Snapshot) (*models.Entry, bool) {
	if rec.RecordID != "" {
		if entry, ok := snap.ByID[rec.RecordID]; ok {
			return entry, true
		}
	}
	if entry, ok := snap.ByNaturalKey[rec.NaturalKey()]; ok {
		return entry, false
	}
	return nil, false
}

// staleSibling resolves the move-vs-replace ambiguity when a record's date
// changed. If another ledger entry now holds this record's natural key under
// a different identity that is gone from the source, that sibling was
// replaced by this record and its events must be torn down. A sibling whose
// identity is still live in the source merely shares the lesson number by
// coincidence: identity wins, and the sibling is left to its own row.
func staleSibling(
	rec *models.Record,
	entry *models.Entry,
	snap *ledger.Snapshot,
	liveIDs map[string]struct{},
	consumed map[int]struct{},
) *models.Entry {
	if rec.NaturalKey() == entry.NaturalKey() {
		return nil // date did not change
	}
	sibling, ok := snap.ByNaturalKey[rec.NaturalKey()]
	if !ok || sibling.Row == entry.Row {
		return nil
	}
	if sibling.RecordID == rec.RecordID {
		return nil // same identity, nothing to tear down
	}
	if _, live := liveIDs[sibling.RecordID]; live {
		return nil
	}
	if !sibling.HasBindings() {
		consumed[sibling.Row] = struct{}{}
		return nil
	}
	consumed[sibling.Row] = struct{}{}
	return sibling
}

// allLive verifies every binding of an entry against the provider. These are
// the only provider calls the reconciler itself makes.
func allLive(ctx context.Context, entry *models.Entry, exists LivenessFunc) bool {
	for _, b := range entry.Bindings {
		if !exists(ctx, b) {
			return false
		}
	}
	return true
}

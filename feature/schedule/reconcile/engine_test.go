package reconcile

import (
	"context"
	"testing"
	"time"

	"schedule-sync/feature/schedule/ledger"
	"schedule-sync/feature/schedule/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(row int, id, lesson, date string) *models.Record {
	d, _ := time.ParseInLocation("2006-01-02", date, time.UTC)
	return &models.Record{
		Row:          row,
		RecordID:     id,
		LessonNumber: lesson,
		Date:         d,
		Start:        d.Add(10 * time.Hour),
		End:          d.Add(11 * time.Hour),
		Title:        "Algebra",
	}
}

func entryFor(rec *models.Record, bindings ...models.Binding) *models.Entry {
	return &models.Entry{
		Row:          rec.Row,
		RecordID:     rec.RecordID,
		LessonNumber: rec.LessonNumber,
		Date:         rec.Date.Format("2006-01-02"),
		Fingerprint:  rec.Fingerprint(),
		Bindings:     bindings,
		Status:       models.StatusCompleted,
	}
}

func snapshot(entries ...*models.Entry) *ledger.Snapshot {
	snap := &ledger.Snapshot{
		ByID:         make(map[string]*models.Entry),
		ByNaturalKey: make(map[string]*models.Entry),
	}
	for _, e := range entries {
		snap.Entries = append(snap.Entries, e)
		if e.RecordID != "" {
			if _, dup := snap.ByID[e.RecordID]; !dup {
				snap.ByID[e.RecordID] = e
			}
		}
		if e.LessonNumber != "" && e.Date != "" {
			if _, dup := snap.ByNaturalKey[e.NaturalKey()]; !dup {
				snap.ByNaturalKey[e.NaturalKey()] = e
			}
		}
	}
	return snap
}

func alwaysLive(context.Context, models.Binding) bool { return true }
func neverLive(context.Context, models.Binding) bool  { return false }

func TestClassifyNew(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(), alwaysLive, nil)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, New, plan.Actions[0].Classification)
	assert.Equal(t, OpCreate, plan.Actions[0].Op)
	assert.Equal(t, 1, plan.Summary.New)
}

func TestClassifyUnchangedVerified(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(rec, models.Binding{CalendarID: "cal", EventID: "ev-1"})

	calls := 0
	exists := func(ctx context.Context, b models.Binding) bool {
		calls++
		return true
	}

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(entry), exists, nil)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, UnchangedVerified, plan.Actions[0].Classification)
	assert.Equal(t, OpNone, plan.Actions[0].Op)
	assert.Equal(t, 1, calls, "exactly one liveness check expected")
	assert.Equal(t, 1, plan.Summary.Unchanged)
}

func TestClassifyUnchangedStale(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(rec, models.Binding{CalendarID: "cal", EventID: "ev-gone"})

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(entry), neverLive, nil)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, UnchangedStale, plan.Actions[0].Classification)
	assert.Equal(t, OpRecreate, plan.Actions[0].Op)
	assert.Equal(t, 1, plan.Summary.Stale)
}

func TestClassifyChangedWithBinding(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(rec, models.Binding{CalendarID: "cal", EventID: "ev-1"})
	entry.Fingerprint = "different"

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(entry), alwaysLive, nil)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, Changed, plan.Actions[0].Classification)
	assert.Equal(t, OpUpdate, plan.Actions[0].Op, "same identity moves in place")
}

func TestClassifyChangedWithoutBinding(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(rec)
	entry.Fingerprint = "different"

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(entry), alwaysLive, nil)

	assert.Equal(t, Changed, plan.Actions[0].Classification)
	assert.Equal(t, OpCreate, plan.Actions[0].Op)
}

func TestClassifyRetry(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(rec)
	entry.Status = models.StatusFailed

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(entry), alwaysLive, nil)

	assert.Equal(t, Retry, plan.Actions[0].Classification)
	assert.Equal(t, OpCreate, plan.Actions[0].Op)
	assert.Equal(t, 1, plan.Summary.Retries)
}

func TestClassifyTerminalSkip(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(rec) // completed, no bindings

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(entry), alwaysLive, nil)

	assert.Equal(t, TerminalSkip, plan.Actions[0].Classification)
	assert.Equal(t, OpNone, plan.Actions[0].Op)
	assert.Equal(t, 1, plan.Summary.Skipped)
}

func TestClassifyDeleted(t *testing.T) {
	gone := record(1, "lsn-gone", "4", "2025-11-21")
	entry := entryFor(gone, models.Binding{CalendarID: "cal", EventID: "ev-1"})

	plan := BuildPlan(context.Background(), nil, snapshot(entry), alwaysLive, nil)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, Deleted, plan.Actions[0].Classification)
	assert.Equal(t, OpDelete, plan.Actions[0].Op)
	assert.Equal(t, 1, plan.Summary.Deleted)
}

func TestLegacyNaturalKeyFallback(t *testing.T) {
	// Ledger entry written before identity assignment existed: no record id,
	// but the natural key matches. It must be adopted, not treated as new,
	// and must not be torn down as deleted.
	rec := record(0, "lsn-new", "3", "2025-11-20")
	legacy := entryFor(rec, models.Binding{CalendarID: "cal", EventID: "ev-old"})
	legacy.RecordID = ""

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(legacy), alwaysLive, nil)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, UnchangedVerified, plan.Actions[0].Classification)
}

func TestIdentityLookupWinsOverNaturalKey(t *testing.T) {
	rec := record(0, "lsn-1", "3", "2025-11-20")
	byID := entryFor(rec)
	byID.Row = 0

	other := record(1, "lsn-2", "3", "2025-11-20")
	byKey := entryFor(other, models.Binding{CalendarID: "cal", EventID: "ev-2"})

	// Both entries share the natural key; identity must pick byID for rec.
	snap := snapshot(byID, byKey)
	plan := BuildPlan(context.Background(), []*models.Record{rec, other}, snap, alwaysLive, nil)

	require.Len(t, plan.Actions, 2)
	assert.Equal(t, TerminalSkip, plan.Actions[0].Classification)
	assert.Equal(t, UnchangedVerified, plan.Actions[1].Classification)
}

func TestMoveInPlaceOnDateChange(t *testing.T) {
	// Same record id, new date: the existing event moves, nothing is deleted.
	rec := record(0, "lsn-1", "3", "2025-11-21")
	old := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(old, models.Binding{CalendarID: "cal", EventID: "ev-1"})

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(entry), alwaysLive, nil)

	require.Len(t, plan.Actions, 1)
	action := plan.Actions[0]
	assert.Equal(t, Changed, action.Classification)
	assert.Equal(t, OpUpdate, action.Op)
	assert.Nil(t, action.StaleSibling)
}

func TestDateChangeTearsDownReplacedSibling(t *testing.T) {
	// Lesson 3 moved to the date previously held by a different identity
	// that is gone from the source: the replaced sibling's event goes away.
	rec := record(0, "lsn-1", "3", "2025-11-21")
	old := record(0, "lsn-1", "3", "2025-11-20")
	own := entryFor(old, models.Binding{CalendarID: "cal", EventID: "ev-own"})

	replaced := record(1, "lsn-replaced", "3", "2025-11-21")
	sibling := entryFor(replaced, models.Binding{CalendarID: "cal", EventID: "ev-stale"})

	plan := BuildPlan(context.Background(), []*models.Record{rec}, snapshot(own, sibling), alwaysLive, nil)

	require.Len(t, plan.Actions, 1, "sibling teardown rides on the Changed action, no separate Deleted")
	action := plan.Actions[0]
	assert.Equal(t, Changed, action.Classification)
	require.NotNil(t, action.StaleSibling)
	assert.Equal(t, "lsn-replaced", action.StaleSibling.RecordID)
}

func TestCoincidentalNaturalKeyIsLeftAlone(t *testing.T) {
	// Two live rows legitimately share the lesson number: identity wins and
	// neither row's events are touched by the other.
	rec := record(0, "lsn-1", "3", "2025-11-21")
	old := record(0, "lsn-1", "3", "2025-11-20")
	own := entryFor(old, models.Binding{CalendarID: "cal", EventID: "ev-own"})

	other := record(1, "lsn-2", "3", "2025-11-21")
	otherEntry := entryFor(other, models.Binding{CalendarID: "cal", EventID: "ev-other"})

	plan := BuildPlan(context.Background(),
		[]*models.Record{rec, other}, snapshot(own, otherEntry), alwaysLive, nil)

	require.Len(t, plan.Actions, 2)
	assert.Nil(t, plan.Actions[0].StaleSibling)
	assert.Equal(t, UnchangedVerified, plan.Actions[1].Classification)
}

func TestProtectedRowsAreNotDeleted(t *testing.T) {
	// A row excluded for a data error keeps its ledger entry untouched.
	gone := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(gone, models.Binding{CalendarID: "cal", EventID: "ev-1"})

	plan := BuildPlan(context.Background(), nil, snapshot(entry), alwaysLive,
		map[int]struct{}{0: {}})

	assert.Empty(t, plan.Actions)
	assert.Zero(t, plan.Summary.Deleted)
}

func TestPlanIsIdempotent(t *testing.T) {
	// With no source changes and live bindings, a second pass plans zero
	// provider mutations.
	rec := record(0, "lsn-1", "3", "2025-11-20")
	entry := entryFor(rec, models.Binding{CalendarID: "cal", EventID: "ev-1"})
	snap := snapshot(entry)

	for run := 0; run < 2; run++ {
		plan := BuildPlan(context.Background(), []*models.Record{rec}, snap, alwaysLive, nil)
		for _, action := range plan.Actions {
			assert.Equal(t, OpNone, action.Op)
		}
	}
}

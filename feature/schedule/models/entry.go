package models

import "time"

// Status is the last-known lifecycle status of a ledger entry.
type Status string

const (
	// StatusPending marks an entry that has not completed a sync attempt.
	StatusPending Status = "pending"
	// StatusCompleted marks an entry whose bindings are all present and error-free.
	StatusCompleted Status = "completed"
	// StatusPartial marks an entry where only some bindings succeeded.
	StatusPartial Status = "partial-failure"
	// StatusFailed marks an entry whose last sync attempt produced no usable binding.
	StatusFailed Status = "failed"
)

// StatusLabels lists every known status spelling. Any identifier cell whose
// value matches one of these is corrupted data (status text leaked into an id
// column historically) and must not be trusted as a real external id.
var StatusLabels = []string{
	string(StatusPending),
	string(StatusCompleted),
	string(StatusPartial),
	string(StatusFailed),
}

// IsStatusLabel reports whether the value matches a known status spelling.
func IsStatusLabel(v string) bool {
	for _, label := range StatusLabels {
		if v == label {
			return true
		}
	}
	return false
}

// Binding records the association between a source record and one external
// event instance. The ledger is the sole source of truth for this mapping.
type Binding struct {
	CalendarID string    `json:"calendar_id"`
	EventID    string    `json:"event_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entry is one row of the sync ledger, positionally aligned with its source
// row: ledger row i always describes source data row i.
type Entry struct {
	Row          int
	RecordID     string
	LessonNumber string
	Date         string
	Fingerprint  string
	Bindings     []Binding
	Status       Status
	SyncedAt     time.Time
	LastError    string
}

// IsBlank reports whether the entry carries no sync state at all.
func (e *Entry) IsBlank() bool {
	return e == nil || (e.RecordID == "" && e.Fingerprint == "" && len(e.Bindings) == 0)
}

// HasBindings reports whether at least one external resource is bound.
func (e *Entry) HasBindings() bool {
	return e != nil && len(e.Bindings) > 0
}

// NaturalKey returns the legacy composite key for this entry.
func (e *Entry) NaturalKey() string {
	return NaturalKey(e.LessonNumber, e.Date)
}

// Cleared returns a blank entry for the given row. Deleted rows are cleared
// in place rather than removed so positional alignment is preserved.
func Cleared(row int) *Entry {
	return &Entry{Row: row}
}

package identity

import (
	"fmt"
	"strings"
	"time"

	"schedule-sync/feature/schedule/models"

	"github.com/google/uuid"
)

// Registry assigns a durable record identifier to every source row.
// Identity is independent of row position and content, so it survives edits
// and reordering. An identifier is assigned once and never changes.
type Registry struct {
	now func() time.Time
}

// NewRegistry creates a registry using the wall clock.
func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// Ensure resolves the record identifier for one source row and stores it on
// the record. Recovery order when the row carries no id: the positionally
// aligned ledger entry, then the legacy natural-key lookup, then a freshly
// minted identifier. The returned flag is true when the id must be written
// back into the source row to become authoritative on the next run.
//
// claimed holds every id already owned by a source row this run; recovery
// never adopts a claimed id. A row inserted above an existing one sees that
// row's ledger entry at its own position, and adopting the entry's id would
// leave two rows sharing one identity. Every id Ensure resolves is added to
// claimed.
func (r *Registry) Ensure(rec *models.Record, aligned *models.Entry, byNaturalKey map[string]*models.Entry, claimed map[string]struct{}) (string, bool) {
	if rec.RecordID != "" {
		claimed[rec.RecordID] = struct{}{}
		return rec.RecordID, false
	}

	if aligned != nil && available(aligned.RecordID, claimed) {
		rec.RecordID = aligned.RecordID
		claimed[rec.RecordID] = struct{}{}
		return rec.RecordID, true
	}

	if entry, ok := byNaturalKey[rec.NaturalKey()]; ok && available(entry.RecordID, claimed) {
		rec.RecordID = entry.RecordID
		claimed[rec.RecordID] = struct{}{}
		return rec.RecordID, true
	}

	rec.RecordID = r.mint()
	claimed[rec.RecordID] = struct{}{}
	return rec.RecordID, true
}

func available(id string, claimed map[string]struct{}) bool {
	if id == "" {
		return false
	}
	_, taken := claimed[id]
	return !taken
}

// mint generates a new globally unique identifier. The millisecond timestamp
// keeps ids roughly sortable; the random suffix makes collisions negligible
// for realistic table sizes.
func (r *Registry) mint() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("lsn-%d-%s", r.now().UnixMilli(), suffix)
}

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"schedule-sync/core/sheets"
	"schedule-sync/core/utils"
	"schedule-sync/feature/schedule/models"

	"go.uber.org/zap"
)

// SheetSuffix is appended to a table name to form its ledger sheet name.
const SheetSuffix = "_sync"

// column names a logical ledger column.
type column string

const (
	colRecordID    column = "record_id"
	colLesson      column = "lesson_number"
	colDate        column = "lesson_date"
	colFingerprint column = "fingerprint"
	colBindings    column = "bindings"
	colStatus      column = "status"
	colSyncedAt    column = "synced_at"
	colLastError   column = "last_error"
)

// Header is the canonical ledger schema written when a ledger sheet is created.
var Header = []string{
	string(colRecordID),
	string(colLesson),
	string(colDate),
	string(colFingerprint),
	string(colBindings),
	string(colStatus),
	string(colSyncedAt),
	string(colLastError),
}

// columnSynonyms tolerates historical ledger schemas: columns are resolved by
// header name, never by fixed offset, and unresolved columns default to empty.
var columnSynonyms = map[column][]string{
	colRecordID:    {"record id", "id"},
	colLesson:      {"lesson number", "lesson", "lesson no"},
	colDate:        {"lesson date", "date"},
	colFingerprint: {"fingerprint", "token", "content hash"},
	colBindings:    {"bindings", "event ids", "events"},
	colStatus:      {"status", "sync status"},
	colSyncedAt:    {"synced at", "updated at"},
	colLastError:   {"last error", "error"},
}

// layout is the resolved column order of one ledger sheet.
type layout struct {
	cols  map[column]int
	width int
}

// Snapshot is the ledger loaded once per run: positional entries plus indexed
// views for O(1) identity and legacy natural-key lookup.
type Snapshot struct {
	Entries      []*models.Entry
	ByID         map[string]*models.Entry
	ByNaturalKey map[string]*models.Entry
}

// Entry returns the entry aligned with the given source data row, or nil.
func (s *Snapshot) Entry(row int) *models.Entry {
	if row < 0 || row >= len(s.Entries) {
		return nil
	}
	return s.Entries[row]
}

// Store reads and writes one table's sync ledger. The ledger sheet mirrors
// the source table row-for-row: ledger data row i describes source data row i.
type Store struct {
	client sheets.Client
	sheet  string
	logger *zap.Logger
	layout *layout
}

// NewStore creates a ledger store for the given source table.
func NewStore(client sheets.Client, table string, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		sheet:  table + SheetSuffix,
		logger: logger,
	}
}

// Sheet returns the ledger sheet name.
func (s *Store) Sheet() string {
	return s.sheet
}

// Init creates the hidden ledger sheet with the canonical header if missing.
func (s *Store) Init(ctx context.Context) error {
	return s.client.EnsureHiddenSheet(ctx, s.sheet, Header)
}

// Grow appends blank trailing rows until the ledger has at least targetRows
// data rows. Growing must happen before a run writes entries; shrinking is a
// separate, deliberate step (Trim) that only runs after deleted entries have
// been torn down.
func (s *Store) Grow(ctx context.Context, targetRows int) error {
	current, err := s.rows(ctx)
	if err != nil {
		return err
	}
	if current >= targetRows {
		return nil
	}
	if err := s.client.InsertRows(ctx, s.sheet, current+1, targetRows-current); err != nil {
		return fmt.Errorf("failed to grow ledger %s: %w", s.sheet, err)
	}
	return nil
}

// Trim removes trailing data rows beyond targetRows. Callers tear down and
// clear the trailing entries first; Trim itself never inspects them.
func (s *Store) Trim(ctx context.Context, targetRows int) error {
	current, err := s.rows(ctx)
	if err != nil {
		return err
	}
	if current <= targetRows {
		return nil
	}
	if err := s.client.DeleteRows(ctx, s.sheet, targetRows+1, current-targetRows); err != nil {
		return fmt.Errorf("failed to shrink ledger %s: %w", s.sheet, err)
	}
	return nil
}

// rows returns the ledger's physical data row count. Sizing decisions cannot
// use the read grid: the store API omits trailing blank rows from reads, so a
// ledger whose tail is blank would be undercounted and regrown every run.
func (s *Store) rows(ctx context.Context) (int, error) {
	total, err := s.client.RowCount(ctx, s.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to size ledger %s: %w", s.sheet, err)
	}
	if total <= 1 {
		return 0, nil
	}
	return total - 1, nil
}

// Read loads the full ledger once and builds the indexed views. The snapshot
// is passed by reference to every component that needs it; it is rebuilt only
// when the run explicitly re-syncs.
func (s *Store) Read(ctx context.Context) (*Snapshot, error) {
	grid, err := s.client.ReadTable(ctx, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", s.sheet, err)
	}

	var headerRow []any
	if len(grid) > 0 {
		headerRow = grid[0]
	}
	s.layout = resolveLayout(headerRow)

	snap := &Snapshot{
		ByID:         make(map[string]*models.Entry),
		ByNaturalKey: make(map[string]*models.Entry),
	}

	for i := 1; i < len(grid); i++ {
		entry := s.parseEntry(i-1, grid[i])
		snap.Entries = append(snap.Entries, entry)

		if entry.RecordID != "" {
			if _, dup := snap.ByID[entry.RecordID]; !dup {
				snap.ByID[entry.RecordID] = entry
			}
		}
		if entry.LessonNumber != "" && entry.Date != "" {
			key := entry.NaturalKey()
			if _, dup := snap.ByNaturalKey[key]; !dup {
				snap.ByNaturalKey[key] = entry
			}
		}
	}

	return snap, nil
}

// Write overwrites one full ledger row. Writes are always full-row
// replacements keyed by position, never partial patches, so no stale field
// can leak between runs.
func (s *Store) Write(ctx context.Context, row int, e *models.Entry) error {
	if err := s.ensureLayout(ctx); err != nil {
		return err
	}

	cells := make([]any, s.layout.width)
	for i := range cells {
		cells[i] = ""
	}

	set := func(c column, v string) {
		if idx, ok := s.layout.cols[c]; ok {
			cells[idx] = v
		}
	}

	set(colRecordID, e.RecordID)
	set(colLesson, e.LessonNumber)
	set(colDate, e.Date)
	set(colFingerprint, e.Fingerprint)
	set(colStatus, string(e.Status))
	set(colLastError, e.LastError)
	if !e.SyncedAt.IsZero() {
		set(colSyncedAt, e.SyncedAt.Format(time.RFC3339))
	}
	if len(e.Bindings) > 0 {
		raw, err := json.Marshal(e.Bindings)
		if err != nil {
			return fmt.Errorf("failed to encode bindings for row %d: %w", row, err)
		}
		set(colBindings, string(raw))
	}

	if err := s.client.WriteRow(ctx, s.sheet, row+1, cells); err != nil {
		return fmt.Errorf("failed to write ledger row %d: %w", row, err)
	}
	return nil
}

func (s *Store) ensureLayout(ctx context.Context) error {
	if s.layout != nil {
		return nil
	}
	grid, err := s.client.ReadTable(ctx, s.sheet)
	if err != nil {
		return fmt.Errorf("failed to read ledger %s: %w", s.sheet, err)
	}
	var headerRow []any
	if len(grid) > 0 {
		headerRow = grid[0]
	}
	s.layout = resolveLayout(headerRow)
	return nil
}

func (s *Store) parseEntry(row int, cells []any) *models.Entry {
	get := func(c column) string {
		idx, ok := s.layout.cols[c]
		if !ok || idx >= len(cells) {
			return ""
		}
		return utils.ToString(cells[idx])
	}

	entry := &models.Entry{
		Row:          row,
		RecordID:     get(colRecordID),
		LessonNumber: get(colLesson),
		Date:         get(colDate),
		Fingerprint:  get(colFingerprint),
		Status:       models.Status(get(colStatus)),
		LastError:    get(colLastError),
	}

	if raw := get(colSyncedAt); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			entry.SyncedAt = t
		}
	}

	if raw := get(colBindings); raw != "" {
		// Status text leaked into identifier columns in old ledgers; such a
		// value is corrupted data, not a real external id.
		if models.IsStatusLabel(raw) {
			s.logger.Warn("Discarding corrupted binding cell",
				zap.Int("row", row), zap.String("value", raw))
			return entry
		}
		var bindings []models.Binding
		if err := json.Unmarshal([]byte(raw), &bindings); err != nil {
			s.logger.Warn("Discarding unreadable binding cell",
				zap.Int("row", row), zap.Error(err))
			return entry
		}
		for _, b := range bindings {
			if models.IsStatusLabel(b.EventID) {
				s.logger.Warn("Discarding corrupted event id",
					zap.Int("row", row), zap.String("value", b.EventID))
				continue
			}
			if b.EventID == "" {
				continue
			}
			entry.Bindings = append(entry.Bindings, b)
		}
	}

	return entry
}

// resolveLayout maps logical columns to positions by normalized header name.
func resolveLayout(headerRow []any) *layout {
	byText := make(map[string]int, len(headerRow))
	for i, cell := range headerRow {
		text := models.NormalizeHeader(utils.ToString(cell))
		if text == "" {
			continue
		}
		if _, taken := byText[text]; !taken {
			byText[text] = i
		}
	}

	l := &layout{cols: make(map[column]int), width: len(headerRow)}
	for col, synonyms := range columnSynonyms {
		for _, syn := range synonyms {
			if idx, ok := byText[syn]; ok {
				l.cols[col] = idx
				break
			}
		}
	}
	if l.width < len(Header) {
		l.width = len(Header)
	}
	// A brand-new or headerless sheet gets the canonical order.
	if len(l.cols) == 0 {
		for i, name := range Header {
			l.cols[column(name)] = i
		}
	}
	return l
}

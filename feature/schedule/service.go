package schedule

import (
	"context"
	"fmt"
	"time"

	"schedule-sync/core/calendar"
	"schedule-sync/core/config"
	"schedule-sync/core/logger"
	"schedule-sync/core/mailer"
	"schedule-sync/core/sheets"
	"schedule-sync/feature/schedule/identity"
	"schedule-sync/feature/schedule/ledger"
	"schedule-sync/feature/schedule/models"
	"schedule-sync/feature/schedule/reconcile"
	"schedule-sync/feature/schedule/sync"

	"go.uber.org/zap"
)

// RunSummary aggregates outcomes across all tables of one run.
type RunSummary struct {
	Tables       int
	TablesFailed int
	Planned      reconcile.Summary
	Applied      sync.Results
}

// Service drives one full synchronization run: it loads the table configs
// from the settings sheet and processes each enabled table independently, so
// a misconfigured or failing table never blocks the others.
type Service struct {
	client   sheets.Client
	provider calendar.Provider
	notifier mailer.Notifier
	logger   *zap.Logger

	settingsSheet string
	syncCfg       config.SyncConfig
	registry      *identity.Registry
}

// NewService creates the orchestrator.
func NewService(
	client sheets.Client,
	provider calendar.Provider,
	notifier mailer.Notifier,
	log *zap.Logger,
	settingsSheet string,
	syncCfg config.SyncConfig,
) *Service {
	return &Service{
		client:        client,
		provider:      provider,
		notifier:      notifier,
		logger:        log,
		settingsSheet: settingsSheet,
		syncCfg:       syncCfg,
		registry:      identity.NewRegistry(),
	}
}

// Run executes a full sync: plan and apply for every enabled table.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	return s.run(ctx, true)
}

// Plan builds and reports the reconciliation plan for every enabled table
// without performing any provider or ledger mutation beyond identity and
// ledger alignment.
func (s *Service) Plan(ctx context.Context) (*RunSummary, error) {
	return s.run(ctx, false)
}

func (s *Service) run(ctx context.Context, apply bool) (*RunSummary, error) {
	configs, err := LoadTableConfigs(ctx, s.client, s.settingsSheet, s.syncCfg.DefaultTimezone)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{}
	for _, tc := range configs {
		if !tc.Enabled {
			s.logger.Info("Skipping disabled table", zap.String("table", tc.Table))
			continue
		}
		summary.Tables++
		if len(tc.CalendarIDs) == 0 {
			s.logger.Error("Table has no calendars configured", zap.String("table", tc.Table))
			summary.TablesFailed++
			continue
		}

		log := logger.WithTable(s.logger, tc.Table)

		plan, res, err := s.processTable(ctx, tc, log, apply)
		if err != nil {
			// Table-scoped failure: report and move on to the next table.
			log.Error("Table sync failed", zap.Error(err))
			summary.TablesFailed++
			continue
		}

		addSummary(&summary.Planned, &plan.Summary)
		if res != nil {
			addResults(&summary.Applied, res)
		}
	}

	s.report(summary, apply)
	return summary, nil
}

// processTable runs the full pipeline for one table: read and parse the
// source, align the ledger, assign identities, build the plan, and apply it
// unless this is a report-only run.
func (s *Service) processTable(ctx context.Context, tc models.TableConfig, log *zap.Logger, apply bool) (*reconcile.Plan, *sync.Results, error) {
	grid, err := s.client.ReadTable(ctx, tc.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table: %w", err)
	}
	if len(grid) == 0 {
		return nil, nil, fmt.Errorf("table %s has no header row", tc.Table)
	}

	headers := models.ResolveHeaders(grid[0])
	for _, required := range []models.Field{models.FieldTitle, models.FieldDate, models.FieldStart, models.FieldEnd} {
		if _, ok := headers[required]; !ok {
			return nil, nil, fmt.Errorf("table %s is missing a %s column", tc.Table, required)
		}
	}

	idCol, ok := headers[models.FieldRecordID]
	if !ok {
		idCol, err = s.client.EnsureColumn(ctx, tc.Table, models.RecordIDHeader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to add identity column: %w", err)
		}
		headers[models.FieldRecordID] = idCol
	}

	loc, err := time.LoadLocation(tc.Timezone)
	if err != nil {
		log.Warn("Unknown timezone, falling back to UTC", zap.String("timezone", tc.Timezone))
		loc = time.UTC
	}

	// Parse every data row. Rows with data errors are excluded but protected:
	// a typo in one cell must never tear down that row's live events. Fully
	// blank rows are neither parsed nor protected, so clearing a row's content
	// counts as deleting the lesson.
	var records []*models.Record
	protected := make(map[int]struct{})
	for i := 1; i < len(grid); i++ {
		row := i - 1
		if isBlankRow(grid[i]) {
			continue
		}
		rec, err := models.ParseRecord(row, grid[i], headers, loc)
		if err != nil {
			log.Warn("Excluding row with data error", zap.Error(err))
			protected[row] = struct{}{}
			continue
		}
		records = append(records, rec)
	}

	// The ledger may only grow before the plan runs. Shrinking happens after
	// apply: a trailing entry must have its events torn down and its row
	// cleared before the row count is trimmed to match the source.
	targetRows := len(grid) - 1
	store := ledger.NewStore(s.client, tc.Table, log)
	if err := store.Init(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	if err := store.Grow(ctx, targetRows); err != nil {
		return nil, nil, fmt.Errorf("failed to align ledger: %w", err)
	}
	snap, err := store.Read(ctx)
	if err != nil {
		return nil, nil, err
	}

	// Identity assignment writes fresh ids back into the source table so they
	// become authoritative on the next run. Ids already carried by a source
	// row are claimed up front, so a newly inserted row can never recover a
	// shifted neighbor's id from the not-yet-realigned ledger.
	claimed := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.RecordID != "" {
			claimed[rec.RecordID] = struct{}{}
		}
	}
	for _, rec := range records {
		if _, assigned := s.registry.Ensure(rec, snap.Entry(rec.Row), snap.ByNaturalKey, claimed); assigned {
			if err := s.client.WriteCell(ctx, tc.Table, rec.Row+1, idCol, rec.RecordID); err != nil {
				return nil, nil, fmt.Errorf("failed to write record id for row %d: %w", rec.Row, err)
			}
		}
	}

	plan := reconcile.BuildPlan(ctx, records, snap, s.liveness(log), protected)
	s.logPlan(log, plan, apply)

	if !apply {
		return plan, nil, nil
	}

	exec := sync.NewExecutor(s.provider, s.notifier, store, log, sync.Config{
		MaxRetries:     s.syncCfg.MaxRetries,
		Pacing:         time.Duration(s.syncCfg.PacingMillis) * time.Millisecond,
		BackoffInitial: time.Duration(s.syncCfg.BackoffInitialMillis) * time.Millisecond,
	})
	res := exec.Apply(ctx, plan, tc)

	if err := s.realign(ctx, store, plan, log); err != nil {
		return plan, res, err
	}
	if err := store.Trim(ctx, targetRows); err != nil {
		return plan, res, err
	}
	return plan, res, nil
}

// realign rewrites surviving entries whose source row shifted since the last
// run. The executor already writes mutated rows at their current position;
// untouched rows need the same move, or the trailing trim would cut a live
// entry and its record would resurface as New with a duplicate event.
func (s *Service) realign(ctx context.Context, store *ledger.Store, plan *reconcile.Plan, log *zap.Logger) error {
	for i := range plan.Actions {
		action := &plan.Actions[i]
		if action.Op != reconcile.OpNone || action.Record == nil || action.Entry == nil {
			continue
		}
		if action.Entry.Row == action.Record.Row {
			continue
		}
		log.Info("Moving ledger entry to shifted row",
			zap.Int("from", action.Entry.Row), zap.Int("to", action.Record.Row))
		action.Entry.Row = action.Record.Row
		if err := store.Write(ctx, action.Record.Row, action.Entry); err != nil {
			return fmt.Errorf("failed to realign ledger row %d: %w", action.Record.Row, err)
		}
	}
	return nil
}

// liveness adapts the provider's event fetch into the reconciler's check.
// A provider error other than "gone" counts as live: recreating an event that
// still exists is worse than skipping a row for one run.
func (s *Service) liveness(log *zap.Logger) reconcile.LivenessFunc {
	return func(ctx context.Context, b models.Binding) bool {
		ev, err := s.provider.GetEvent(ctx, b.CalendarID, b.EventID)
		if err != nil {
			if calendar.IsNotFound(err) {
				return false
			}
			log.Warn("Liveness check inconclusive, assuming live",
				zap.String("event", b.EventID), zap.Error(err))
			return true
		}
		return ev != nil
	}
}

func (s *Service) logPlan(log *zap.Logger, plan *reconcile.Plan, apply bool) {
	log.Info("Plan built",
		zap.Int("total", plan.Summary.Total),
		zap.Int("new", plan.Summary.New),
		zap.Int("changed", plan.Summary.Changed),
		zap.Int("unchanged", plan.Summary.Unchanged),
		zap.Int("stale", plan.Summary.Stale),
		zap.Int("retries", plan.Summary.Retries),
		zap.Int("skipped", plan.Summary.Skipped),
		zap.Int("deleted", plan.Summary.Deleted))

	if apply {
		return
	}
	for _, action := range plan.Actions {
		if action.Op == reconcile.OpNone {
			continue
		}
		log.Info("Planned action",
			zap.Int("row", action.Row),
			zap.String("classification", string(action.Classification)),
			zap.String("op", string(action.Op)),
			zap.String("reason", action.Reason))
	}
}

func (s *Service) report(summary *RunSummary, apply bool) {
	fields := []zap.Field{
		zap.Int("tables", summary.Tables),
		zap.Int("tables_failed", summary.TablesFailed),
		zap.Int("rows", summary.Planned.Total),
	}
	if apply {
		fields = append(fields,
			zap.Int("succeeded", summary.Applied.Succeeded),
			zap.Int("partial", summary.Applied.Partial),
			zap.Int("failed", summary.Applied.Failed),
			zap.Int("deleted", summary.Applied.Deleted))
		s.logger.Info("Sync run finished", fields...)
		return
	}
	s.logger.Info("Plan run finished", fields...)
}

func isBlankRow(cells []any) bool {
	for _, cell := range cells {
		if cell != nil && fmt.Sprintf("%v", cell) != "" {
			return false
		}
	}
	return true
}

func addSummary(dst, src *reconcile.Summary) {
	dst.Total += src.Total
	dst.New += src.New
	dst.Changed += src.Changed
	dst.Unchanged += src.Unchanged
	dst.Stale += src.Stale
	dst.Retries += src.Retries
	dst.Skipped += src.Skipped
	dst.Deleted += src.Deleted
}

func addResults(dst, src *sync.Results) {
	dst.Total += src.Total
	dst.Succeeded += src.Succeeded
	dst.Partial += src.Partial
	dst.Failed += src.Failed
	dst.Skipped += src.Skipped
	dst.Deleted += src.Deleted
}

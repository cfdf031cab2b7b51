package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"schedule-sync/core/calendar"
	"schedule-sync/core/mailer"
	"schedule-sync/feature/schedule/ledger"
	"schedule-sync/feature/schedule/models"
	"schedule-sync/feature/schedule/reconcile"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Config holds the executor's retry and pacing knobs.
type Config struct {
	// MaxRetries bounds attempts per provider mutation on transient errors.
	MaxRetries int
	// Pacing is the minimum delay between provider-mutating calls. This is a
	// scheduling concern for the provider's rate limit, not a correctness one.
	Pacing time.Duration
	// BackoffInitial is the initial retry backoff interval.
	BackoffInitial time.Duration
}

// Results aggregates row outcomes for one table.
type Results struct {
	Total     int
	Succeeded int
	Partial   int
	Failed    int
	Skipped   int
	Deleted   int
}

// Executor applies a reconciliation plan: it creates, updates and deletes
// provider events and writes the outcome of every attempt back into the
// ledger, so a retried run has full context even after partial failure.
type Executor struct {
	provider calendar.Provider
	notifier mailer.Notifier
	store    *ledger.Store
	logger   *zap.Logger
	cfg      Config

	now      func() time.Time
	sleep    func(time.Duration)
	lastCall time.Time
}

// NewExecutor creates an executor for one table's ledger.
func NewExecutor(provider calendar.Provider, notifier mailer.Notifier, store *ledger.Store, logger *zap.Logger, cfg Config) *Executor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return &Executor{
		provider: provider,
		notifier: notifier,
		store:    store,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Apply executes the plan sequentially, row by row. Row-scoped failures are
// recorded and never abort the run.
func (e *Executor) Apply(ctx context.Context, plan *reconcile.Plan, tc models.TableConfig) *Results {
	res := &Results{}

	for i := range plan.Actions {
		action := &plan.Actions[i]
		res.Total++

		switch action.Op {
		case reconcile.OpNone:
			res.Skipped++

		case reconcile.OpDelete:
			e.teardown(ctx, action.Entry)
			e.writeEntry(ctx, action.Row, models.Cleared(action.Row))
			res.Deleted++

		default:
			status := e.applyRow(ctx, action, tc)
			switch status {
			case models.StatusCompleted:
				res.Succeeded++
			case models.StatusPartial:
				res.Partial++
			default:
				res.Failed++
			}
		}
	}

	return res
}

// applyRow performs the mutation for one source row and overwrites its ledger
// entry with whatever is known afterwards, success or failure.
func (e *Executor) applyRow(ctx context.Context, action *reconcile.RowAction, tc models.TableConfig) models.Status {
	rec := action.Record
	l := e.logger.With(zap.Int("row", action.Row), zap.String("record", rec.RecordID))

	if action.StaleSibling != nil {
		l.Info("Tearing down superseded sibling", zap.Int("sibling_row", action.StaleSibling.Row))
		e.teardown(ctx, action.StaleSibling)
		e.writeEntry(ctx, action.StaleSibling.Row, models.Cleared(action.StaleSibling.Row))
	}

	event := buildEvent(rec, tc)

	var bindings []models.Binding
	var errs []string

	switch action.Op {
	case reconcile.OpRecreate:
		// Whatever survives of the old bindings goes away before recreating.
		e.teardown(ctx, action.Entry)
		bindings, errs = e.createAll(ctx, event, tc.CalendarIDs)

	case reconcile.OpUpdate:
		bindings, errs = e.updateAll(ctx, event, action.Entry.Bindings, tc.CalendarIDs)

	default: // OpCreate
		bindings, errs = e.createAll(ctx, event, tc.CalendarIDs)
	}

	status := rowStatus(len(bindings), len(tc.CalendarIDs), len(errs))

	entry := &models.Entry{
		Row:          action.Row,
		RecordID:     rec.RecordID,
		LessonNumber: rec.LessonNumber,
		Date:         rec.Date.Format("2006-01-02"),
		Fingerprint:  rec.Fingerprint(),
		Bindings:     bindings,
		Status:       status,
		SyncedAt:     e.now(),
		LastError:    strings.Join(errs, "; "),
	}
	e.writeEntry(ctx, action.Row, entry)

	if len(errs) > 0 {
		l.Warn("Row sync incomplete", zap.String("status", string(status)), zap.Strings("errors", errs))
	} else {
		l.Info("Row synced", zap.String("classification", string(action.Classification)))
	}

	if action.Classification == reconcile.New && status == models.StatusCompleted {
		e.notify(rec, tc)
	}

	return status
}

// createAll creates one event per configured calendar.
func (e *Executor) createAll(ctx context.Context, event *calendar.Event, calendarIDs []string) ([]models.Binding, []string) {
	var bindings []models.Binding
	var errs []string

	for _, calID := range calendarIDs {
		b, err := e.createOne(ctx, calID, event)
		if err != nil {
			errs = append(errs, fmt.Sprintf("create on %s: %v", calID, err))
			continue
		}
		bindings = append(bindings, b)
	}
	return bindings, errs
}

// updateAll moves bound events in place and creates events for calendars that
// have no binding yet. Bindings for calendars no longer configured are
// deleted best-effort.
func (e *Executor) updateAll(ctx context.Context, event *calendar.Event, existing []models.Binding, calendarIDs []string) ([]models.Binding, []string) {
	byCalendar := make(map[string]models.Binding, len(existing))
	for _, b := range existing {
		byCalendar[b.CalendarID] = b
	}

	configured := make(map[string]struct{}, len(calendarIDs))
	var bindings []models.Binding
	var errs []string

	for _, calID := range calendarIDs {
		configured[calID] = struct{}{}

		bound, ok := byCalendar[calID]
		if !ok {
			b, err := e.createOne(ctx, calID, event)
			if err != nil {
				errs = append(errs, fmt.Sprintf("create on %s: %v", calID, err))
				continue
			}
			bindings = append(bindings, b)
			continue
		}

		err := e.mutate(ctx, func() error {
			return e.provider.UpdateEvent(ctx, calID, bound.EventID, event)
		})
		if err != nil && calendar.IsNotFound(err) {
			// The event vanished between liveness check and update.
			b, cerr := e.createOne(ctx, calID, event)
			if cerr != nil {
				errs = append(errs, fmt.Sprintf("recreate on %s: %v", calID, cerr))
				continue
			}
			bindings = append(bindings, b)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("update on %s: %v", calID, err))
			continue
		}
		bindings = append(bindings, bound)
	}

	for _, b := range existing {
		if _, ok := configured[b.CalendarID]; !ok {
			e.deleteOne(ctx, b)
		}
	}

	return bindings, errs
}

func (e *Executor) createOne(ctx context.Context, calID string, event *calendar.Event) (models.Binding, error) {
	var eventID string
	err := e.mutate(ctx, func() error {
		id, err := e.provider.CreateEvent(ctx, calID, event)
		if err != nil {
			return err
		}
		eventID = id
		return nil
	})
	if err != nil {
		return models.Binding{}, err
	}
	return models.Binding{CalendarID: calID, EventID: eventID, CreatedAt: e.now()}, nil
}

// teardown deletes an entry's bound events best-effort. A missing downstream
// resource is not a correctness violation for deletion intent, so failures
// are logged and never block clearing the entry.
func (e *Executor) teardown(ctx context.Context, entry *models.Entry) {
	if entry == nil {
		return
	}
	for _, b := range entry.Bindings {
		e.deleteOne(ctx, b)
	}
}

func (e *Executor) deleteOne(ctx context.Context, b models.Binding) {
	e.pace()
	if err := e.provider.DeleteEvent(ctx, b.CalendarID, b.EventID); err != nil {
		if calendar.IsNotFound(err) {
			return
		}
		e.logger.Warn("Best-effort delete failed",
			zap.String("calendar", b.CalendarID),
			zap.String("event", b.EventID),
			zap.Error(err))
	}
}

// mutate wraps one provider mutation in bounded retry: transient errors back
// off exponentially up to MaxRetries attempts, anything else fails at once.
func (e *Executor) mutate(ctx context.Context, op func() error) error {
	attempt := func() (struct{}, error) {
		e.pace()
		if err := op(); err != nil {
			if calendar.IsTransient(err) {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}

	b := backoff.NewExponentialBackOff()
	if e.cfg.BackoffInitial > 0 {
		b.InitialInterval = e.cfg.BackoffInitial
	}

	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(e.cfg.MaxRetries)))
	return err
}

// pace enforces the minimum delay between consecutive provider-mutating calls.
func (e *Executor) pace() {
	if e.cfg.Pacing <= 0 {
		return
	}
	if !e.lastCall.IsZero() {
		if wait := e.cfg.Pacing - e.now().Sub(e.lastCall); wait > 0 {
			e.sleep(wait)
		}
	}
	e.lastCall = e.now()
}

func (e *Executor) writeEntry(ctx context.Context, row int, entry *models.Entry) {
	if err := e.store.Write(ctx, row, entry); err != nil {
		e.logger.Error("Failed to write ledger entry", zap.Int("row", row), zap.Error(err))
	}
}

func (e *Executor) notify(rec *models.Record, tc models.TableConfig) {
	to := []string{
		firstNonEmpty(rec.TeacherEmail, tc.TeacherEmail),
		firstNonEmpty(rec.StudentEmail, tc.StudentEmail),
	}
	subject := fmt.Sprintf("Lesson scheduled: %s on %s", rec.Title, rec.Date.Format("2006-01-02"))
	body := fmt.Sprintf(
		"<p>A lesson has been scheduled.</p>"+
			"<ul><li>Title: %s</li><li>Date: %s</li><li>Time: %s–%s</li><li>Teacher: %s</li><li>Student: %s</li></ul>",
		rec.Title,
		rec.Date.Format("2006-01-02"),
		rec.Start.Format("15:04"), rec.End.Format("15:04"),
		rec.TeacherName, rec.StudentName,
	)
	if err := e.notifier.SendEmail(to, subject, body); err != nil {
		e.logger.Warn("Notification failed", zap.String("record", rec.RecordID), zap.Error(err))
	}
}

// buildEvent maps a source record onto the provider event shape. The record
// identifier is echoed into the description so an event can be traced back to
// its row by hand.
func buildEvent(rec *models.Record, tc models.TableConfig) *calendar.Event {
	var desc strings.Builder
	if rec.LessonNumber != "" {
		fmt.Fprintf(&desc, "Lesson %s\n", rec.LessonNumber)
	}
	if rec.TeacherName != "" {
		fmt.Fprintf(&desc, "Teacher: %s\n", rec.TeacherName)
	}
	if rec.StudentName != "" {
		fmt.Fprintf(&desc, "Student: %s\n", rec.StudentName)
	}
	fmt.Fprintf(&desc, "Sync ID: %s", rec.RecordID)

	return &calendar.Event{
		Title:       rec.Title,
		Description: desc.String(),
		Start:       rec.Start,
		End:         rec.End,
		Timezone:    tc.Timezone,
		Attendees: []string{
			firstNonEmpty(rec.TeacherEmail, tc.TeacherEmail),
			firstNonEmpty(rec.StudentEmail, tc.StudentEmail),
		},
		ReminderMinutes: tc.ReminderMinutes,
	}
}

// rowStatus derives the overall row status: completed only when every
// required binding is present and error-free.
func rowStatus(bound, required, errCount int) models.Status {
	switch {
	case errCount == 0 && bound == required:
		return models.StatusCompleted
	case bound > 0:
		return models.StatusPartial
	default:
		return models.StatusFailed
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

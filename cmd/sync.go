package cmd

import (
	"context"
	"fmt"

	"schedule-sync/core/calendar"
	"schedule-sync/core/config"
	"schedule-sync/core/logger"
	"schedule-sync/core/mailer"
	"schedule-sync/core/sheets"
	"schedule-sync/feature/schedule"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd runs one full synchronization pass over every enabled table.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize all enabled schedule tables into their calendars",
	Long: `Run one full synchronization pass.

For every enabled table in the settings sheet: read and parse the schedule,
align the hidden ledger, reconcile against the calendars, and create, update
or delete events as needed. The pass is idempotent; re-running it without
source changes performs no calendar mutations.`,
	RunE: runSync,
}

func init() {
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	svc, l, err := buildService(context.Background())
	if err != nil {
		return err
	}
	defer l.Sync()

	summary, err := svc.Run(context.Background())
	if err != nil {
		return fmt.Errorf("sync run failed: %w", err)
	}
	if summary.TablesFailed > 0 {
		return fmt.Errorf("%d of %d tables failed", summary.TablesFailed, summary.Tables)
	}
	return nil
}

// buildService wires the service from configuration: tabular store, event
// provider and notifier.
func buildService(ctx context.Context) (*schedule.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	provider, err := calendar.NewProvider(ctx, cfg.Calendar)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create calendar provider: %w", err)
	}

	notifier := mailer.New(cfg.Mail)

	svc := schedule.NewService(client, provider, notifier, l, cfg.Sheets.SettingsSheet, cfg.Sync)
	return svc, l, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// planCmd reports what a sync run would do without touching any calendar.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Report what a sync run would change, without applying anything",
	Long: `Build and print the reconciliation plan for every enabled table.

No calendar events are created, updated or deleted. Ledger alignment and
identity assignment still run, since the plan depends on both.`,
	RunE: runPlan,
}

func init() {
	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	svc, l, err := buildService(context.Background())
	if err != nil {
		return err
	}
	defer l.Sync()

	if _, err := svc.Plan(context.Background()); err != nil {
		return fmt.Errorf("plan run failed: %w", err)
	}
	return nil
}

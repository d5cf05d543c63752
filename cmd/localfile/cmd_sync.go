package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"localfile/internal/syncapi"
)

// syncCmd pushes the deliverable status summary to the dashboard.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the deliverable status summary to the dashboard",
	Long: `Assemble the deliverable and POST its status summary (stage, section
counts, review progress) to the configured sync endpoint.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := requireDeliverableFlags(); err != nil {
		return err
	}
	if cfg.SyncURL == "" {
		return fmt.Errorf("LOCALFILE_SYNC_URL is not configured")
	}

	vm, err := assembleViewModel()
	if err != nil {
		return err
	}

	client := syncapi.New(cfg.SyncURL, cfg.SyncAPIKey, logger)
	summary := syncapi.SummaryFromViewModel(vm)
	if err := client.Push(cmd.Context(), summary); err != nil {
		return err
	}
	fmt.Printf("Synced %s FY%s (%s, %d%% reviewed)\n",
		summary.Entity, summary.FiscalYear, summary.Stage, summary.ReviewedPct)
	return nil
}

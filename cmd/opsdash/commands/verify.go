package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"opsdash/internal/config"
	"opsdash/internal/reconcile"
	"opsdash/internal/records"
)

var (
	verifyOut   string
	verifyDBURL string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the reconciliation suite and write the discrepancy report",
	Long: `Verify recomputes every summary figure through the drill-down path and
writes a discrepancy report. The exit code is non-zero when the two paths
disagree, so a data refresh can be gated on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd.Context())
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyOut, "out", "reconciliation_report.json", "report output path")
	verifyCmd.Flags().StringVar(&verifyDBURL, "db-url", "", "Postgres DSN for archiving the run")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(ctx context.Context) error {
	policy, err := config.LoadPolicy(cfg.PolicyPath())
	if err != nil {
		return fmt.Errorf("failed to load site policy: %w", err)
	}

	store, err := records.NewStore(ctx, records.FileLoader(cfg, policy))
	if err != nil {
		return fmt.Errorf("failed to load exports: %w", err)
	}

	report, err := reconcile.New(store.Snapshot(), thresholds, policy).Run()
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	// The report must match its published schema before anything consumes it.
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := reconcile.ValidateReport(data); err != nil {
		return fmt.Errorf("report failed schema validation: %w", err)
	}

	if err := report.WriteFile(verifyOut); err != nil {
		return err
	}
	log.Info().
		Str("path", verifyOut).
		Int("checks", report.Summary.TotalChecks).
		Float64("accuracy", report.Summary.AccuracyRate).
		Msg("Reconciliation report written")

	if verifyDBURL != "" {
		if err := reconcile.Archive(ctx, verifyDBURL, report); err != nil {
			return fmt.Errorf("failed to archive run: %w", err)
		}
		log.Info().Str("runId", report.RunID).Msg("Run archived")
	}

	if !report.Clean() {
		return fmt.Errorf("%d of %d checks found discrepancies (accuracy %.1f%%)",
			report.Summary.Discrepancies, report.Summary.TotalChecks, report.Summary.AccuracyRate)
	}
	log.Info().Msg("Summary and drill-down paths agree")
	return nil
}

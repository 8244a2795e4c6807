package commands

import (
	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	thresholds kpi.Thresholds
)

var rootCmd = &cobra.Command{
	Use:   "opsdash",
	Short: "Opsdash is an operational metrics server for IT support exports",
	Long: `A dashboard backend that loads incident and consultation CSV exports,
computes resolution-time, first-call-resolution and SLA compliance figures,
and serves them as a JSON API with per-team and per-month drill-downs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		thresholds = kpi.Thresholds{
			GoalMinutes:     cfg.SLAGoalMinutes,
			BaselineMinutes: cfg.SLABaselineMinutes,
		}
		if err := thresholds.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid SLA thresholds")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("opsdash starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

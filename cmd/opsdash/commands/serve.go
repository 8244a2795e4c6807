package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"opsdash/internal/config"
	"opsdash/internal/records"
	"opsdash/internal/server"
	"opsdash/internal/telemetry"
)

var openDashboard bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&openDashboard, "open", false, "open the dashboard in the default browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	policy, err := config.LoadPolicy(cfg.PolicyPath())
	if err != nil {
		return fmt.Errorf("failed to load site policy: %w", err)
	}

	store, err := records.NewStore(ctx, records.FileLoader(cfg, policy))
	if err != nil {
		return fmt.Errorf("failed to load exports: %w", err)
	}
	snap := store.Snapshot()
	log.Info().
		Int("incidents", len(snap.Incidents)).
		Int("consultations", len(snap.Consultations)).
		Str("fingerprint", snap.Fingerprint).
		Msg("Exports loaded")

	telemetry.Init(store)

	srv := server.New(cfg)
	srv.RegisterRoutes(store, policy)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.Info().Str("addr", cfg.Addr).Msg("Server started")

	if openDashboard {
		go openWhenUp(cfg.Addr)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server")
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("Server exited")
	return nil
}

// openWhenUp points the default browser at the dashboard shortly after the
// listener comes up.
func openWhenUp(addr string) {
	time.Sleep(300 * time.Millisecond)
	url := dashboardURL(addr)
	if err := browser.OpenURL(url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
	}
}

// dashboardURL turns a listen address into one a browser can open. Wildcard
// and empty hosts become localhost.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}

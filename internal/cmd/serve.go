package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Caspar241/releasehub/internal/health"
	"github.com/Caspar241/releasehub/internal/lifecycle"
	"github.com/Caspar241/releasehub/internal/metrics"
	"github.com/Caspar241/releasehub/internal/routine"
	"github.com/Caspar241/releasehub/internal/server"
	"github.com/Caspar241/releasehub/internal/task"
	"github.com/Caspar241/releasehub/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP server exposing the task API and health probes.

API endpoints:
  POST /api/templates/apply           - apply a template to an anchor
  POST /api/tasks/{id}/complete       - complete a task
  POST /api/tasks/{id}/snooze         - snooze a task (2, 24, or 168 hours)
  POST /api/tasks/{id}/dismiss        - dismiss a task
  GET  /api/groups                    - task groups with progress
  GET  /api/groups/{anchorID}         - one anchor's group
  GET  /api/templates                 - template catalog
  POST /api/routines/tick             - run the weekly routine scheduler

Health probes:
  /health/live, /health/ready, /health/startup, /healthz

Prometheus metrics are exported on /metrics.

The server drains connections gracefully on SIGTERM or SIGINT. A snooze
sweeper and, with --tick-interval, a routine tick runner run alongside
the server.`,
	RunE: runServe,
}

var (
	servePort            string
	serveAddress         string
	serveShutdownTimeout time.Duration
	serveSweepInterval   time.Duration
	serveTickInterval    time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
	serveCmd.Flags().StringVar(&serveAddress, "address", "0.0.0.0", "Address to bind to")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for connections to drain during shutdown")
	serveCmd.Flags().DurationVar(&serveSweepInterval, "sweep-interval", 5*time.Minute, "How often to persist expired snooze reversions")
	serveCmd.Flags().DurationVar(&serveTickInterval, "tick-interval", 0, "How often to tick recurring routines (0 disables the in-process runner)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	m := metrics.InitDefault()

	info := version.GetInfo()
	pm := health.NewProbeManager(info.Version)
	pm.AddChecker(health.NewStoreChecker(d.Store))
	pm.AddChecker(health.NewCatalogChecker(d.Catalog))

	listenAddr := fmt.Sprintf("%s:%s", serveAddress, servePort)
	srv := server.NewServer(pm, server.Deps{
		Catalog:   d.Catalog,
		Engine:    d.Engine,
		Lifecycle: d.Lifecycle,
		Grouping:  d.Grouping,
		Scheduler: d.Scheduler,
		Releases:  d.Releases,
		Routines:  d.Routines,
		Identity:  d.Identity,
		Logger:    d.Logger,
		Metrics:   m,
	}, server.Config{
		Address:         listenAddr,
		ShutdownTimeout: serveShutdownTimeout,
	})

	d.Broker.SubscribeInstancesCreated(func(ctx context.Context, event task.InstancesCreated) {
		d.Logger.InfoContext(ctx, "instances created",
			"event_id", event.EventID,
			"template_id", event.TemplateID,
			"anchor_id", event.AnchorID,
			"count", len(event.Instances),
		)
	})

	sweeper := lifecycle.NewSweeper(lifecycle.SweeperConfig{
		Manager:  d.Lifecycle,
		Interval: serveSweepInterval,
		Logger:   d.Logger,
		Metrics:  m,
	})
	go sweeper.Start(ctx)
	defer sweeper.Stop()

	if serveTickInterval > 0 {
		runner := routine.NewRunner(routine.RunnerConfig{
			Scheduler: d.Scheduler,
			Interval:  serveTickInterval,
			Logger:    d.Logger,
		})
		go runner.Start(ctx)
		defer runner.Stop()
	}

	fmt.Printf("releasehub %s listening on http://%s\n", info.Version, listenAddr)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Println("\nInitiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout+5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

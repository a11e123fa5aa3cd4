package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/hamprep/internal/api"
	"github.com/example/hamprep/internal/scheduler"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := e.wire()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.scheduler.Start(ctx, scheduler.Options{
			Reminders:     e.cfg.Reminders.Enabled,
			SweepInterval: e.cfg.Practice.SweepInterval,
		}); err != nil {
			return err
		}
		defer a.scheduler.Stop()

		srv := api.NewServer(e.cfg.Addr(), e.cfg.Server.CORSOrigins, api.Deps{
			Users:     a.users,
			Questions: a.questions,
			Bookmarks: a.bookmarks,
			Tracker:   a.tracker,
			Practice:  a.practice,
			Explainer: a.explainer,
		}, e.log.WithField("component", "api"))

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case <-ctx.Done():
			e.log.Info("received shutdown signal")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

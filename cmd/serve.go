package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/venture-watch/internal/api"
	"github.com/sells-group/venture-watch/internal/monitoring"
	"github.com/sells-group/venture-watch/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the collection JSON API",
	Long:  "Starts the HTTP API over the collection and run history, with a background health checker. With --schedule the server also runs collection cycles on the configured schedule.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		withSchedule, _ := cmd.Flags().GetBool("schedule")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		coll, err := initCollection(ctx)
		if err != nil {
			return err
		}

		status := initStatus(st)
		checker := monitoring.NewChecker(status, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)

		server := api.NewServer(coll,
			api.WithRuns(st),
			api.WithStatus(status, cfg.Monitoring.LookbackHours),
			api.WithCORSOrigins(cfg.Server.CORSOrigins),
		)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			checker.Run(gctx)
			return nil
		})

		if withSchedule {
			env, err := initCycle(ctx, "schedule", cycleOptions{collect: true, publish: true})
			if err != nil {
				return err
			}
			defer env.Close()
			sched, err := pipeline.NewScheduler(env.Cycle, cfg.Schedule.Frequency, cfg.Schedule.Hour)
			if err != nil {
				return err
			}
			g.Go(func() error {
				sched.Run(gctx)
				return nil
			})
		}

		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
		})

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().Bool("schedule", false, "also run scheduled collection cycles")
	rootCmd.AddCommand(serveCmd)
}

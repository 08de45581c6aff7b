package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/fsmtrail/pkg/adapters/http"
	"github.com/aretw0/fsmtrail/pkg/history"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP server",
	Long:  `Serves history, replay, validation and statistics of the configured event log as a JSON API, with Prometheus metrics on /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		handler := httpAdapter.NewHandler(
			history.New(e.log, history.WithLogger(e.logger)),
			httpAdapter.WithLogger(e.logger),
			httpAdapter.WithMount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			e.logger.Info("starting server", "addr", srv.Addr, "backend", string(e.cfg.Backend))
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			e.logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				e.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			e.logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default FSMTRAIL_HTTP_ADDR or :8080)")
}

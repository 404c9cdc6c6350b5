package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/launchplan"
	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/internal/metrics"
	httpAdapter "github.com/aretw0/launchplan/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes plan listing, description, building and graph export as a JSON API,
lifecycle events over SSE and Prometheus metrics. Plans are built, never launched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		withMetrics, _ := cmd.Flags().GetBool("metrics")

		opts := optionsFrom(cmd)
		opts.DryRun = true
		logger := cli.CreateLogger(opts)

		streams := httpAdapter.NewStreamManager()
		extra := []launchplan.Option{launchplan.WithLifecycleHooks(streams.Hooks())}
		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithStreams(streams),
			httpAdapter.WithVersion(launchplan.Version),
			httpAdapter.WithLogger(logger),
		}
		if withMetrics {
			reg := prometheus.NewRegistry()
			extra = append(extra, launchplan.WithLifecycleHooks(metrics.New(reg).Hooks()))
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(reg))
		}

		a, err := cli.CreateEngine(cmd.Context(), opts, logger, extra...)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(a.Engine, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting launchplan server", "addr", srv.Addr, "share_dir", opts.ShareDir)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-sigCtx.Done():
			logger.Info("shutting down", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "launchplan server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}

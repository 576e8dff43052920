package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(sh *shell) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory over a local REST API",
		Long: `Serve the inventory over HTTP until interrupted.

Routes:
  POST /api/v1/products        add a product
  GET  /api/v1/products        list all products
  GET  /api/v1/products/{id}   find a product by ID
  GET  /healthz                health check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sh.cfg.ValidateServer(); err != nil {
				return fmt.Errorf("invalid server settings: %w", err)
			}
			return sh.serve(cmd.Context())
		},
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down within the configured timeout.
func (sh *shell) serve(ctx context.Context) error {
	httpServer := app.SetupHttpServer(sh.deps, sh.cfg)
	logger := sh.logger

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sh.cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

// Package app wires the inventory's components together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/product/registry"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/abgdnv/inventory/internal/product/transport/rest"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Registry       *registry.Registry
	ProductService service.ProductService
	Logger         *slog.Logger
}

// SetupDependencies opens the configured store and restores the registry from it.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	backend, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	reg := registry.New(ctx, backend, logger)

	return &Dependencies{
		Registry:       reg,
		ProductService: service.NewService(reg),
		Logger:         logger,
	}, nil
}

// SetupHttpHandler builds the router with every route and middleware of the inventory API.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server for the inventory API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

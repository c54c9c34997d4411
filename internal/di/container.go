// Package di provides dependency injection configuration for the server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/di/providers"
	"github.com/versemark/versemark-server/internal/event"
	"github.com/versemark/versemark-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments passed to config.LoadConfig.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ConfigProvider(args))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideEventBus)
	do.Provide(injector, providers.ProvideSSEManager)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSettings)

	// Business services
	do.Provide(injector, providers.ProvideBookmarkService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services so configuration and storage errors
// surface before the server starts listening.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*slog.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*event.Bus](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SSEManagerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SettingsHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.BookmarkService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.RateLimiterHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}

package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/event"
	"github.com/versemark/versemark-server/internal/logger"
	"github.com/versemark/versemark-server/internal/settings"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store/sqlite"
)

// ProvideEventBus provides the in-process change notification bus.
func ProvideEventBus(i do.Injector) (*event.Bus, error) {
	log := do.MustInvoke[*slog.Logger](i)
	return event.NewBus(logger.Component(log, "bus")), nil
}

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
	detach func()
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.detach()
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager, subscribed to the bus.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)
	bus := do.MustInvoke[*event.Bus](i)

	manager := sse.NewManager(logger.Component(log, "sse"))
	detach := manager.Attach(bus)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
		detach:  detach,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the bookmark database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.DatabasePath(), logger.Component(log, "store"))
	if err != nil {
		return nil, err
	}

	db.SetLocale(cfg.Labels.LocaleTag())

	log.Info("Database initialized", "path", cfg.Storage.DatabasePath(), "label_locale", cfg.Labels.Locale)
	return &StoreHandle{Store: db}, nil
}

// SettingsHandle wraps the preference store with shutdown capability.
type SettingsHandle struct {
	*settings.BadgerStore
}

// Shutdown implements do.Shutdownable.
func (h *SettingsHandle) Shutdown() error {
	return h.Close()
}

// ProvideSettings provides the badger-backed preference store.
func ProvideSettings(i do.Injector) (*SettingsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	prefs, err := settings.Open(cfg.Storage.SettingsPath(), logger.Component(log, "settings"))
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	log.Info("Settings store initialized", "path", cfg.Storage.SettingsPath())
	return &SettingsHandle{BadgerStore: prefs}, nil
}

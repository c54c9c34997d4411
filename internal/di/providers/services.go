package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/event"
	"github.com/versemark/versemark-server/internal/logger"
	"github.com/versemark/versemark-server/internal/service"
	"github.com/versemark/versemark-server/internal/validation"
)

// ProvideBookmarkService provides the bookmark engine.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	settingsHandle := do.MustInvoke[*SettingsHandle](i)
	bus := do.MustInvoke[*event.Bus](i)

	return service.NewBookmarkService(
		storeHandle.Store,
		settingsHandle.BadgerStore,
		bus,
		validation.New(),
		logger.Component(log, "bookmarks"),
		service.WithSpeakLabelName(cfg.Labels.SpeakLabelName),
	), nil
}

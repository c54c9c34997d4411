package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/event"
	"github.com/versemark/versemark-server/internal/logger"
	"github.com/versemark/versemark-server/internal/service"
	"github.com/versemark/versemark-server/internal/settings"
	"github.com/versemark/versemark-server/internal/store/sqlite"
	"github.com/versemark/versemark-server/internal/validation"
)

// workspace is an opened data directory.
type workspace struct {
	store     *sqlite.Store
	prefs     *settings.BadgerStore
	bookmarks *service.BookmarkService
}

// loadConfig resolves settings the same way the server does. Flags given to
// vmctl override the environment and the .env file.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	args := []string{"-env-file=" + opts.EnvFile}
	if opts.DataPath != "" {
		args = append(args, "-data-path="+opts.DataPath)
	}
	if opts.SpeakLabelName != "" {
		args = append(args, "-speak-label-name="+opts.SpeakLabelName)
	}
	if opts.LabelLocale != "" {
		args = append(args, "-label-locale="+opts.LabelLocale)
	}
	return config.LoadConfig(args)
}

func openWorkspace(opts *RootOptions, stderr io.Writer) (*workspace, error) {
	log := slog.New(slog.DiscardHandler)
	if opts.Verbose {
		log = logger.New(logger.Config{Writer: stderr, Level: slog.LevelDebug, NoColor: true})
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	storage := cfg.Storage
	if err := os.MkdirAll(storage.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sqlite.Open(storage.DatabasePath(), logger.Component(log, "store"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetLocale(cfg.Labels.LocaleTag())

	prefs, err := settings.Open(storage.SettingsPath(), logger.Component(log, "settings"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open settings: %w", err)
	}

	bus := event.NewBus(logger.Component(log, "bus"))
	svc := service.NewBookmarkService(db, prefs, bus, validation.New(), logger.Component(log, "bookmarks"),
		service.WithSpeakLabelName(cfg.Labels.SpeakLabelName))

	return &workspace{store: db, prefs: prefs, bookmarks: svc}, nil
}

func (w *workspace) Close() error {
	return errors.Join(w.prefs.Close(), w.store.Close())
}

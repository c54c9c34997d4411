package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/event"
	"github.com/versemark/versemark-server/internal/settings"
	"github.com/versemark/versemark-server/internal/store"
)

// SpeakLabelPreference is the preference key holding the speak label id.
const SpeakLabelPreference = "speak_label_id"

type resolverState int

const (
	unresolved resolverState = iota
	cached
)

// resolverStep records which fallback produced the speak label.
type resolverStep string

const (
	stepPreference resolverStep = "preference"
	stepByName     resolverStep = "by_name"
	stepCreated    resolverStep = "created"
)

// speakLabelResolver finds the speak label once and caches it until reset.
type speakLabelResolver struct {
	repo   store.Repository
	prefs  settings.Store
	logger *slog.Logger
	name   string

	mu    sync.Mutex
	state resolverState
	label domain.Label
}

func newSpeakLabelResolver(repo store.Repository, prefs settings.Store, logger *slog.Logger, name string) *speakLabelResolver {
	return &speakLabelResolver{
		repo:   repo,
		prefs:  prefs,
		logger: logger,
		name:   name,
	}
}

// resolve returns the cached label or runs the fallback chain: the stored
// preference, then a lookup by name, then creation. created is true only when
// this call inserted the label.
func (r *speakLabelResolver) resolve(ctx context.Context) (label domain.Label, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == cached {
		return r.label, false, nil
	}

	label, step, err := r.lookup(ctx)
	if err != nil {
		return domain.Label{}, false, err
	}

	if step != stepPreference {
		if err := r.prefs.SetInt64(ctx, SpeakLabelPreference, label.ID); err != nil {
			// The next resolution finds the label by name.
			r.logger.Warn("failed to persist speak label id", "label_id", label.ID, "error", err)
		}
	}

	r.state = cached
	r.label = label
	r.logger.Info("speak label resolved", "label_id", label.ID, "step", string(step))
	return label, step == stepCreated, nil
}

func (r *speakLabelResolver) lookup(ctx context.Context) (domain.Label, resolverStep, error) {
	id, ok, err := r.prefs.GetInt64(ctx, SpeakLabelPreference)
	if err != nil {
		return domain.Label{}, "", domainerrors.Storage(err, "read speak label preference")
	}
	if ok && id > 0 {
		l, err := r.repo.LabelByID(ctx, id)
		switch {
		case err == nil:
			return *l, stepPreference, nil
		case !errors.Is(err, domainerrors.ErrNotFound):
			return domain.Label{}, "", err
		}
	}

	l, err := r.repo.LabelByName(ctx, r.name)
	switch {
	case err == nil:
		return *l, stepByName, nil
	case !errors.Is(err, domainerrors.ErrNotFound):
		return domain.Label{}, "", err
	}

	fresh := domain.Label{Name: r.name}
	newID, err := r.repo.InsertLabel(ctx, &fresh)
	if err != nil {
		return domain.Label{}, "", err
	}
	fresh.ID = newID
	return fresh, stepCreated, nil
}

// reset forgets the cached label. The stored label and preference stay.
func (r *speakLabelResolver) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = unresolved
	r.label = domain.Label{}
}

func (r *speakLabelResolver) cachedID() (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.label.ID, r.state == cached
}

// SpeakLabel returns the speak label, creating it on first use.
func (s *BookmarkService) SpeakLabel(ctx context.Context) (domain.Label, error) {
	l, created, err := s.speak.resolve(ctx)
	if err != nil {
		return domain.Label{}, err
	}
	if created {
		s.events.Publish(event.LabelAddedOrUpdated{Label: l})
	}
	return l, nil
}

// ResetSpeakLabel drops the cached speak label so the next request resolves
// it again. Used after the underlying store was swapped or reloaded.
func (s *BookmarkService) ResetSpeakLabel() {
	s.speak.reset()
	s.logger.Info("speak label cache reset")
}

// IsSpeakBookmark reports whether the bookmark carries the speak label.
func (s *BookmarkService) IsSpeakBookmark(ctx context.Context, bookmarkID int64) (bool, error) {
	speak, err := s.SpeakLabel(ctx)
	if err != nil {
		return false, err
	}
	labels, err := s.repo.LabelsForBookmark(ctx, bookmarkID)
	if err != nil {
		return false, err
	}
	return containsLabel(labels, speak), nil
}

// SpeakBookmarkForVerse returns the oldest speak bookmark starting at v, or nil.
func (s *BookmarkService) SpeakBookmarkForVerse(ctx context.Context, v domain.Verse) (*domain.Bookmark, error) {
	speak, err := s.SpeakLabel(ctx)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.repo.BookmarksStartingAtWithLabel(ctx, canonicalVerse(v), speak.ID)
	if err != nil || len(bookmarks) == 0 {
		return nil, err
	}
	return bookmarks[0], nil
}

// UpdateBookmarkSettings stores playback settings on the speak bookmark at v.
// A chapter heading (verse 0) is treated as verse 1. Only a speak bookmark that
// already has playback settings is updated; otherwise nothing happens and the
// returned bookmark is nil.
func (s *BookmarkService) UpdateBookmarkSettings(ctx context.Context, v domain.Verse, ps domain.PlaybackSettings, opts ...MutationOption) (*domain.Bookmark, error) {
	if v.Verse == 0 {
		v.Verse = 1
	}

	b, err := s.SpeakBookmarkForVerse(ctx, v)
	if err != nil || b == nil || b.PlaybackSettings == nil {
		return nil, err
	}

	b.PlaybackSettings = &ps
	return s.AddOrUpdateBookmark(ctx, b, nil, opts...)
}

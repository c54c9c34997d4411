package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/event"
	"github.com/versemark/versemark-server/internal/settings"
	"github.com/versemark/versemark-server/internal/store"
	"github.com/versemark/versemark-server/internal/validation"
)

// BookmarkService keeps bookmarks, labels and their associations consistent and
// announces every change on the event bus.
//
// Compound operations are not atomic against concurrent writers. Callers that
// need that serialize access themselves.
type BookmarkService struct {
	repo      store.Repository
	events    event.Publisher
	validator *validation.Validator
	logger    *slog.Logger
	speak     *speakLabelResolver
	now       func() time.Time
}

// Option configures a BookmarkService.
type Option func(*BookmarkService)

// WithSpeakLabelName overrides the reserved name of the speak label.
func WithSpeakLabelName(name string) Option {
	return func(s *BookmarkService) {
		if name != "" {
			s.speak.name = name
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *BookmarkService) {
		s.now = now
	}
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(
	repo store.Repository,
	prefs settings.Store,
	events event.Publisher,
	validator *validation.Validator,
	logger *slog.Logger,
	opts ...Option,
) *BookmarkService {
	s := &BookmarkService{
		repo:      repo,
		events:    events,
		validator: validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.speak = newSpeakLabelResolver(repo, prefs, logger, domain.SpeakLabelName)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MutationOption adjusts a single mutating call.
type MutationOption func(*mutation)

type mutation struct {
	doNotSync bool
}

// DoNotSync suppresses the change event. Used when applying changes that
// arrived from an external synchronization so they are not echoed back.
func DoNotSync() MutationOption {
	return func(m *mutation) { m.doNotSync = true }
}

// SyncUnless returns DoNotSync when skip is true and a no-op otherwise.
func SyncUnless(skip bool) MutationOption {
	return func(m *mutation) {
		if skip {
			m.doNotSync = true
		}
	}
}

func applyMutationOptions(opts []MutationOption) mutation {
	var m mutation
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// publish emits e unless the mutation asked for silence.
func (s *BookmarkService) publish(m mutation, e event.Event) {
	if m.doNotSync {
		s.logger.Debug("event suppressed", "event", string(e.Kind()))
		return
	}
	s.events.Publish(e)
}

// AddOrUpdateBookmark inserts b when it is new and updates it otherwise.
// A non-nil labelIDs replaces the bookmark's labels; negative ids are ignored
// and unknown ids fail with not found before anything is written.
func (s *BookmarkService) AddOrUpdateBookmark(ctx context.Context, b *domain.Bookmark, labelIDs []int64, opts ...MutationOption) (*domain.Bookmark, error) {
	if b == nil {
		return nil, domainerrors.Validation("bookmark is required")
	}
	if b.ID < 0 {
		return nil, domainerrors.InvalidIdentityf("bookmark id %d is invalid", b.ID)
	}
	if err := s.validator.Validate(b); err != nil {
		return nil, err
	}

	var ids []int64
	if labelIDs != nil {
		var err error
		if ids, err = normalizeLabelIDs(labelIDs); err != nil {
			return nil, err
		}
	}

	if err := s.requireLabels(ctx, ids); err != nil {
		return nil, err
	}

	m := applyMutationOptions(opts)
	b.Anchor = canonicalRange(b.Anchor)
	b.LastUpdatedOn = s.now()

	if b.IsNew() {
		if b.CreatedAt.IsZero() {
			b.CreatedAt = b.LastUpdatedOn
		}
		id, err := s.repo.InsertBookmark(ctx, b)
		if err != nil {
			return nil, err
		}
		b.ID = id
	} else if err := s.repo.UpdateBookmark(ctx, b); err != nil {
		return nil, err
	}

	if labelIDs != nil {
		if err := s.repo.ReplaceAssociations(ctx, b.ID, ids); err != nil {
			// The bookmark write is committed even though linking failed.
			if pubErr := s.publishBookmark(ctx, m, b); pubErr != nil {
				s.logger.Warn("failed to announce bookmark", "bookmark_id", b.ID, "error", pubErr)
			}
			return nil, err
		}
	}

	current, err := s.currentLabelIDs(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bookmark saved",
		"bookmark_id", b.ID,
		"anchor", b.Anchor.String(),
		"labels", len(current),
		"sync", !m.doNotSync,
	)
	s.publish(m, event.BookmarkAddedOrUpdated{Bookmark: b, LabelIDs: current})
	return b, nil
}

// SaveBookmarkNote sets the note of a bookmark. A nil or empty note clears it.
func (s *BookmarkService) SaveBookmarkNote(ctx context.Context, bookmarkID int64, note *string, opts ...MutationOption) (*domain.Bookmark, error) {
	m := applyMutationOptions(opts)

	if err := s.repo.SaveNote(ctx, bookmarkID, note, s.now()); err != nil {
		return nil, err
	}

	b, err := s.repo.BookmarkByID(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	current, err := s.currentLabelIDs(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bookmark note saved", "bookmark_id", bookmarkID, "cleared", !b.HasNotes())
	s.publish(m, event.BookmarkAddedOrUpdated{Bookmark: b, LabelIDs: current})
	return b, nil
}

// DeleteBookmark removes one bookmark and its label associations.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, bookmarkID int64, opts ...MutationOption) error {
	return s.DeleteBookmarks(ctx, []int64{bookmarkID}, opts...)
}

// DeleteBookmarks removes bookmarks by id. Non-positive ids address nothing
// stored and are skipped; when none remain the call is a no-op.
func (s *BookmarkService) DeleteBookmarks(ctx context.Context, bookmarkIDs []int64, opts ...MutationOption) error {
	ids := positiveUnique(bookmarkIDs)
	if len(ids) == 0 {
		return nil
	}

	m := applyMutationOptions(opts)
	if err := s.repo.DeleteBookmarks(ctx, ids); err != nil {
		return err
	}

	s.logger.Info("bookmarks deleted", "bookmark_ids", ids, "sync", !m.doNotSync)
	s.publish(m, event.BookmarksDeleted{BookmarkIDs: ids})
	return nil
}

// AddBookmarkForVerseRange bookmarks a range. When a bookmark already starts
// at the range start it is only touched. Reports whether a bookmark was created.
func (s *BookmarkService) AddBookmarkForVerseRange(ctx context.Context, document string, r domain.VerseRange, opts ...MutationOption) (*domain.Bookmark, bool, error) {
	if err := s.validator.Validate(r); err != nil {
		return nil, false, err
	}
	r = canonicalRange(r)

	existing, err := s.FirstBookmarkStartingAt(ctx, r.Start)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		b, err := s.AddOrUpdateBookmark(ctx, domain.NewBookmark(r, document), nil, opts...)
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	}

	m := applyMutationOptions(opts)
	now := s.now()
	if err := s.repo.TouchBookmark(ctx, existing.ID, now); err != nil {
		return nil, false, err
	}
	existing.LastUpdatedOn = now

	current, err := s.currentLabelIDs(ctx, existing.ID)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("bookmark touched", "bookmark_id", existing.ID, "sync", !m.doNotSync)
	s.publish(m, event.BookmarkAddedOrUpdated{Bookmark: existing, LabelIDs: current})
	return existing, false, nil
}

// DeleteBookmarkForVerseRange deletes the first bookmark starting at the range
// start. Reports false when there was nothing to delete.
func (s *BookmarkService) DeleteBookmarkForVerseRange(ctx context.Context, r domain.VerseRange, opts ...MutationOption) (bool, error) {
	existing, err := s.FirstBookmarkStartingAt(ctx, r.Start)
	if err != nil || existing == nil {
		return false, err
	}
	if err := s.DeleteBookmarks(ctx, []int64{existing.ID}, opts...); err != nil {
		return false, err
	}
	return true, nil
}

// BookmarkByID returns a bookmark or a not found error.
func (s *BookmarkService) BookmarkByID(ctx context.Context, id int64) (*domain.Bookmark, error) {
	return s.repo.BookmarkByID(ctx, id)
}

// FirstBookmarkStartingAt returns the oldest bookmark starting at v, or nil.
func (s *BookmarkService) FirstBookmarkStartingAt(ctx context.Context, v domain.Verse) (*domain.Bookmark, error) {
	bookmarks, err := s.repo.BookmarksStartingAt(ctx, canonicalVerse(v))
	if err != nil || len(bookmarks) == 0 {
		return nil, err
	}
	return bookmarks[0], nil
}

// HasBookmarksForVerse reports whether any bookmark covers v.
func (s *BookmarkService) HasBookmarksForVerse(ctx context.Context, v domain.Verse) (bool, error) {
	return s.repo.HasBookmarksAt(ctx, canonicalVerse(v))
}

// BookmarksByIDs returns the bookmarks that still exist among ids.
func (s *BookmarkService) BookmarksByIDs(ctx context.Context, ids []int64) ([]*domain.Bookmark, error) {
	return s.repo.BookmarksByIDs(ctx, positiveUnique(ids))
}

// AllBookmarks lists every bookmark.
func (s *BookmarkService) AllBookmarks(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error) {
	return s.repo.AllBookmarks(ctx, order)
}

// AllBookmarksWithNotes lists bookmarks carrying a note.
func (s *BookmarkService) AllBookmarksWithNotes(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error) {
	return s.repo.AllBookmarksWithNotes(ctx, order)
}

// BookmarksInBook lists bookmarks starting in book.
func (s *BookmarkService) BookmarksInBook(ctx context.Context, book string) ([]*domain.Bookmark, error) {
	canonical := domain.CanonicalBook(book)
	if canonical == "" {
		return nil, domainerrors.Validationf("unknown book %q", book)
	}
	return s.repo.BookmarksInBook(ctx, canonical)
}

// BookmarksForVerseRange lists bookmarks overlapping r.
func (s *BookmarkService) BookmarksForVerseRange(ctx context.Context, r domain.VerseRange) ([]*domain.Bookmark, error) {
	if err := s.validator.Validate(r); err != nil {
		return nil, err
	}
	return s.repo.BookmarksInRange(ctx, canonicalRange(r))
}

// LabelsForBookmark lists the labels attached to a bookmark, sorted by name.
func (s *BookmarkService) LabelsForBookmark(ctx context.Context, bookmarkID int64) ([]domain.Label, error) {
	return s.repo.LabelsForBookmark(ctx, bookmarkID)
}

func (s *BookmarkService) currentLabelIDs(ctx context.Context, bookmarkID int64) ([]int64, error) {
	labels, err := s.repo.LabelsForBookmark(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	return domain.LabelIDs(labels), nil
}

// publishBookmark announces b with its current labels.
func (s *BookmarkService) publishBookmark(ctx context.Context, m mutation, b *domain.Bookmark) error {
	current, err := s.currentLabelIDs(ctx, b.ID)
	if err != nil {
		return err
	}
	s.publish(m, event.BookmarkAddedOrUpdated{Bookmark: b, LabelIDs: current})
	return nil
}

func canonicalVerse(v domain.Verse) domain.Verse {
	if book := domain.CanonicalBook(v.Book); book != "" {
		v.Book = book
	}
	return v
}

func canonicalRange(r domain.VerseRange) domain.VerseRange {
	return domain.VerseRange{Start: canonicalVerse(r.Start), End: canonicalVerse(r.End)}
}

// positiveUnique drops non-positive and repeated ids, keeping first occurrences.
func positiveUnique(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

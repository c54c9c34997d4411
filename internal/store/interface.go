// Package store defines the persistence interface for bookmarks and labels.
package store

import (
	"context"
	"time"

	"github.com/versemark/versemark-server/internal/domain"
)

// Repository is the durable store behind the bookmark engine.
//
// Lookups by id return an errors.ErrNotFound coded error when nothing matches;
// listing queries return an empty slice. Every other failure is reported as
// errors.ErrStorageFailure with the driver error as its cause.
type Repository interface {
	// Bookmarks
	InsertBookmark(ctx context.Context, b *domain.Bookmark) (int64, error)
	UpdateBookmark(ctx context.Context, b *domain.Bookmark) error
	TouchBookmark(ctx context.Context, id int64, at time.Time) error
	DeleteBookmarks(ctx context.Context, ids []int64) error
	BookmarkByID(ctx context.Context, id int64) (*domain.Bookmark, error)
	BookmarksByIDs(ctx context.Context, ids []int64) ([]*domain.Bookmark, error)
	BookmarksStartingAt(ctx context.Context, v domain.Verse) ([]*domain.Bookmark, error)
	BookmarksStartingAtWithLabel(ctx context.Context, v domain.Verse, labelID int64) ([]*domain.Bookmark, error)
	BookmarksInRange(ctx context.Context, r domain.VerseRange) ([]*domain.Bookmark, error)
	BookmarksInBook(ctx context.Context, book string) ([]*domain.Bookmark, error)
	BookmarksWithLabel(ctx context.Context, labelID int64, order domain.SortOrder) ([]*domain.Bookmark, error)
	UnlabelledBookmarks(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error)
	AllBookmarks(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error)
	AllBookmarksWithNotes(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error)
	HasBookmarksAt(ctx context.Context, v domain.Verse) (bool, error)
	SaveNote(ctx context.Context, bookmarkID int64, note *string, at time.Time) error

	// Labels
	InsertLabel(ctx context.Context, l *domain.Label) (int64, error)
	UpdateLabel(ctx context.Context, l *domain.Label) error
	DeleteLabels(ctx context.Context, ids []int64) error
	LabelByID(ctx context.Context, id int64) (*domain.Label, error)
	LabelByName(ctx context.Context, name string) (*domain.Label, error)
	AllLabelsSortedByName(ctx context.Context) ([]domain.Label, error)

	// Associations
	InsertAssociations(ctx context.Context, links []domain.BookmarkLabel) error
	DeleteAssociations(ctx context.Context, links []domain.BookmarkLabel) error
	ClearAssociationsForBookmark(ctx context.Context, bookmarkID int64) error
	// ApplyAssociationDelta and ReplaceAssociations are atomic: on error no
	// link has changed.
	ApplyAssociationDelta(ctx context.Context, remove, add []domain.BookmarkLabel) error
	ReplaceAssociations(ctx context.Context, bookmarkID int64, labelIDs []int64) error
	LabelsForBookmark(ctx context.Context, bookmarkID int64) ([]domain.Label, error)
}

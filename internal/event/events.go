// Package event carries bookmark and label change notifications between the
// engine and its collaborators.
package event

import "github.com/versemark/versemark-server/internal/domain"

// Kind names an event type. Values double as SSE event names.
type Kind string

// Event kinds.
const (
	KindBookmarkAddedOrUpdated Kind = "bookmark.added_or_updated"
	KindBookmarksDeleted       Kind = "bookmarks.deleted"
	KindLabelAddedOrUpdated    Kind = "label.added_or_updated"
	KindLabelsDeleted          Kind = "labels.deleted"
)

// Event is implemented by every change notification.
type Event interface {
	Kind() Kind
}

// BookmarkAddedOrUpdated is published after a bookmark insert or update, and
// after any change to its labels. LabelIDs is the full current label set.
type BookmarkAddedOrUpdated struct {
	Bookmark *domain.Bookmark `json:"bookmark"`
	LabelIDs []int64          `json:"label_ids"`
}

// Kind implements Event.
func (BookmarkAddedOrUpdated) Kind() Kind { return KindBookmarkAddedOrUpdated }

// BookmarksDeleted is published after one or more bookmarks are removed.
type BookmarksDeleted struct {
	BookmarkIDs []int64 `json:"bookmark_ids"`
}

// Kind implements Event.
func (BookmarksDeleted) Kind() Kind { return KindBookmarksDeleted }

// LabelAddedOrUpdated is published after a label insert or update.
type LabelAddedOrUpdated struct {
	Label domain.Label `json:"label"`
}

// Kind implements Event.
func (LabelAddedOrUpdated) Kind() Kind { return KindLabelAddedOrUpdated }

// LabelsDeleted is published after labels are removed. Their associations are
// already gone when it arrives.
type LabelsDeleted struct {
	LabelIDs []int64 `json:"label_ids"`
}

// Kind implements Event.
func (LabelsDeleted) Kind() Kind { return KindLabelsDeleted }

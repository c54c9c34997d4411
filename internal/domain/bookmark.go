package domain

import "time"

// Bookmark is a user annotation anchored to a verse range.
// ID 0 means the bookmark has not been persisted yet.
type Bookmark struct {
	ID               int64             `json:"id"`
	Anchor           VerseRange        `json:"anchor"`
	Document         string            `json:"document,omitempty"` // Initials of the module the bookmark was made in
	Notes            *string           `json:"notes,omitempty"`
	PlaybackSettings *PlaybackSettings `json:"playback_settings,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	LastUpdatedOn    time.Time         `json:"last_updated_on"`
}

// NewBookmark prepares an unsaved bookmark for the given range.
func NewBookmark(anchor VerseRange, document string) *Bookmark {
	now := time.Now().UTC()
	return &Bookmark{
		Anchor:        anchor,
		Document:      document,
		CreatedAt:     now,
		LastUpdatedOn: now,
	}
}

// IsNew reports whether the bookmark still needs an id from the store.
func (b *Bookmark) IsNew() bool {
	return b.ID == 0
}

// HasNotes reports whether a non-empty note is attached.
func (b *Bookmark) HasNotes() bool {
	return b.Notes != nil && *b.Notes != ""
}

// Touch updates the LastUpdatedOn timestamp.
func (b *Bookmark) Touch() {
	b.LastUpdatedOn = time.Now().UTC()
}

// PlaybackSettings is the speech playback state stored with speak bookmarks.
// The engine never interprets it.
type PlaybackSettings struct {
	Speed     int    `json:"speed"`
	Pitch     int    `json:"pitch,omitempty"`
	Document  string `json:"document,omitempty"`
	VerseOnly bool   `json:"verse_only,omitempty"`
}

// SortOrder selects the ordering of bookmark listings.
type SortOrder string

const (
	// OrderCanonical sorts by position in the corpus.
	OrderCanonical SortOrder = "canonical"
	// OrderCreatedAt sorts newest first.
	OrderCreatedAt SortOrder = "created_at"
	// OrderLastUpdated sorts most recently touched first.
	OrderLastUpdated SortOrder = "last_updated"
)

// ParseSortOrder maps a query value onto a SortOrder, defaulting to canonical.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case OrderCreatedAt:
		return OrderCreatedAt
	case OrderLastUpdated:
		return OrderLastUpdated
	default:
		return OrderCanonical
	}
}

// BookmarkLabel is one row of the bookmark/label association.
type BookmarkLabel struct {
	BookmarkID int64 `json:"bookmark_id"`
	LabelID    int64 `json:"label_id"`
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/service"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks",
		Summary:     "List bookmarks",
		Tags:        []string{"Bookmarks"},
	}, s.handleListBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks",
		Summary:     "Create or update bookmark",
		Description: "Inserts when id is 0, otherwise updates. label_ids, when present, replaces every label.",
		Tags:        []string{"Bookmarks"},
	}, s.handleSaveBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookmarks",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks/delete",
		Summary:     "Delete bookmarks by id",
		Tags:        []string{"Bookmarks"},
	}, s.handleDeleteBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookmark",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Get bookmark",
		Tags:        []string{"Bookmarks"},
	}, s.handleGetBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Delete bookmark",
		Tags:        []string{"Bookmarks"},
	}, s.handleDeleteBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBookmarkLabels",
		Method:      http.MethodPut,
		Path:        "/api/v1/bookmarks/{id}/labels",
		Summary:     "Reconcile bookmark labels",
		Description: "Moves the bookmark to exactly the given labels, touching only associations that differ",
		Tags:        []string{"Bookmarks"},
	}, s.handleSetBookmarkLabels)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceBookmarkLabelIDs",
		Method:      http.MethodPut,
		Path:        "/api/v1/bookmarks/{id}/label-ids",
		Summary:     "Replace bookmark label ids",
		Description: "Clears every association and inserts the given ids",
		Tags:        []string{"Bookmarks"},
	}, s.handleReplaceBookmarkLabelIDs)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBookmarkNote",
		Method:      http.MethodPut,
		Path:        "/api/v1/bookmarks/{id}/note",
		Summary:     "Set bookmark note",
		Description: "An empty or missing note clears it",
		Tags:        []string{"Bookmarks"},
	}, s.handleSetBookmarkNote)
}

// === DTOs ===

// BookmarkResponse contains bookmark data in API responses.
type BookmarkResponse struct {
	ID               int64                    `json:"id" doc:"Bookmark ID"`
	Reference        string                   `json:"reference" doc:"OSIS range, e.g. Gen.1.1-Gen.1.3"`
	Start            domain.Verse             `json:"start" doc:"First verse"`
	End              domain.Verse             `json:"end" doc:"Last verse"`
	Document         string                   `json:"document,omitempty" doc:"Module the bookmark was made in"`
	Notes            *string                  `json:"notes,omitempty" doc:"Free-text note"`
	PlaybackSettings *domain.PlaybackSettings `json:"playback_settings,omitempty" doc:"Speech playback state"`
	LabelIDs         []int64                  `json:"label_ids,omitempty" doc:"Current label ids"`
	CreatedAt        time.Time                `json:"created_at" doc:"Creation time"`
	LastUpdatedOn    time.Time                `json:"last_updated_on" doc:"Last modification time"`
}

func toBookmarkResponse(b *domain.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:               b.ID,
		Reference:        b.Anchor.String(),
		Start:            b.Anchor.Start,
		End:              b.Anchor.End,
		Document:         b.Document,
		Notes:            b.Notes,
		PlaybackSettings: b.PlaybackSettings,
		CreatedAt:        b.CreatedAt,
		LastUpdatedOn:    b.LastUpdatedOn,
	}
}

func toBookmarkResponses(bookmarks []*domain.Bookmark) []BookmarkResponse {
	out := make([]BookmarkResponse, len(bookmarks))
	for i, b := range bookmarks {
		out[i] = toBookmarkResponse(b)
	}
	return out
}

// ListBookmarksInput contains parameters for listing bookmarks.
type ListBookmarksInput struct {
	Order     string `query:"order" enum:"canonical,created_at,last_updated" default:"canonical" doc:"Sort order"`
	NotesOnly bool   `query:"notes_only" doc:"Only bookmarks with a note"`
}

// ListBookmarksResponse contains a list of bookmarks.
type ListBookmarksResponse struct {
	Bookmarks []BookmarkResponse `json:"bookmarks" doc:"Bookmarks"`
}

// ListBookmarksOutput wraps the list bookmarks response for Huma.
type ListBookmarksOutput struct {
	Body ListBookmarksResponse
}

// BookmarkOutput wraps a single bookmark for Huma.
type BookmarkOutput struct {
	Body BookmarkResponse
}

// SaveBookmarkRequest is the request body for creating or updating a bookmark.
type SaveBookmarkRequest struct {
	ID               int64                    `json:"id,omitempty" minimum:"0" doc:"Bookmark ID, 0 to create"`
	Reference        string                   `json:"reference" minLength:"1" doc:"OSIS range, e.g. Gen.1.1-Gen.1.3"`
	Document         string                   `json:"document,omitempty" doc:"Module the bookmark was made in"`
	Notes            *string                  `json:"notes,omitempty" doc:"Free-text note"`
	PlaybackSettings *domain.PlaybackSettings `json:"playback_settings,omitempty" doc:"Speech playback state"`
	LabelIDs         []int64                  `json:"label_ids,omitempty" doc:"Replaces every label when present"`
}

// SaveBookmarkInput wraps the save bookmark request for Huma.
type SaveBookmarkInput struct {
	DoNotSync bool `query:"do_not_sync" doc:"Suppress the change event"`
	Body      SaveBookmarkRequest
}

// BookmarkIDInput addresses a bookmark by id.
type BookmarkIDInput struct {
	ID int64 `path:"id" doc:"Bookmark ID"`
}

// DeleteBookmarkInput contains parameters for deleting a bookmark.
type DeleteBookmarkInput struct {
	ID        int64 `path:"id" doc:"Bookmark ID"`
	DoNotSync bool  `query:"do_not_sync" doc:"Suppress the change event"`
}

// DeleteBookmarksRequest is the request body for deleting bookmarks in bulk.
type DeleteBookmarksRequest struct {
	IDs []int64 `json:"ids" doc:"Bookmark IDs"`
}

// DeleteBookmarksInput wraps the bulk delete request for Huma.
type DeleteBookmarksInput struct {
	DoNotSync bool `query:"do_not_sync" doc:"Suppress the change event"`
	Body      DeleteBookmarksRequest
}

// LabelIDsRequest carries the desired labels of a bookmark.
type LabelIDsRequest struct {
	LabelIDs []int64 `json:"label_ids" doc:"Desired label ids; virtual ids are ignored"`
}

// BookmarkLabelsInput wraps a label change for Huma.
type BookmarkLabelsInput struct {
	ID        int64 `path:"id" doc:"Bookmark ID"`
	DoNotSync bool  `query:"do_not_sync" doc:"Suppress the change event"`
	Body      LabelIDsRequest
}

// LabelDeltaResponse reports what a reconciliation changed.
type LabelDeltaResponse struct {
	Added    []int64 `json:"added" doc:"Label ids attached"`
	Removed  []int64 `json:"removed" doc:"Label ids detached"`
	LabelIDs []int64 `json:"label_ids" doc:"Current label ids"`
}

// LabelDeltaOutput wraps the delta response for Huma.
type LabelDeltaOutput struct {
	Body LabelDeltaResponse
}

// NoteRequest is the request body for setting a note.
type NoteRequest struct {
	Note *string `json:"note,omitempty" doc:"Note text"`
}

// SetNoteInput wraps the set note request for Huma.
type SetNoteInput struct {
	ID        int64 `path:"id" doc:"Bookmark ID"`
	DoNotSync bool  `query:"do_not_sync" doc:"Suppress the change event"`
	Body      NoteRequest
}

// === Handlers ===

func (s *Server) handleListBookmarks(ctx context.Context, input *ListBookmarksInput) (*ListBookmarksOutput, error) {
	order := domain.ParseSortOrder(input.Order)

	var (
		bookmarks []*domain.Bookmark
		err       error
	)
	if input.NotesOnly {
		bookmarks, err = s.bookmarks.AllBookmarksWithNotes(ctx, order)
	} else {
		bookmarks, err = s.bookmarks.AllBookmarks(ctx, order)
	}
	if err != nil {
		return nil, err
	}
	return &ListBookmarksOutput{Body: ListBookmarksResponse{Bookmarks: toBookmarkResponses(bookmarks)}}, nil
}

func (s *Server) handleSaveBookmark(ctx context.Context, input *SaveBookmarkInput) (*BookmarkOutput, error) {
	anchor, err := domain.ParseVerseRange(input.Body.Reference)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var b *domain.Bookmark
	if input.Body.ID == 0 {
		b = domain.NewBookmark(anchor, input.Body.Document)
	} else {
		if b, err = s.bookmarks.BookmarkByID(ctx, input.Body.ID); err != nil {
			return nil, err
		}
		b.Anchor = anchor
		b.Document = input.Body.Document
	}
	b.Notes = input.Body.Notes
	b.PlaybackSettings = input.Body.PlaybackSettings

	saved, err := s.bookmarks.AddOrUpdateBookmark(ctx, b, input.Body.LabelIDs, service.SyncUnless(input.DoNotSync))
	if err != nil {
		return nil, err
	}
	return s.bookmarkOutput(ctx, saved)
}

func (s *Server) handleGetBookmark(ctx context.Context, input *BookmarkIDInput) (*BookmarkOutput, error) {
	b, err := s.bookmarks.BookmarkByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return s.bookmarkOutput(ctx, b)
}

func (s *Server) handleDeleteBookmark(ctx context.Context, input *DeleteBookmarkInput) (*MessageOutput, error) {
	if _, err := s.bookmarks.BookmarkByID(ctx, input.ID); err != nil {
		return nil, err
	}
	if err := s.bookmarks.DeleteBookmark(ctx, input.ID, service.SyncUnless(input.DoNotSync)); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Bookmark deleted"}}, nil
}

func (s *Server) handleDeleteBookmarks(ctx context.Context, input *DeleteBookmarksInput) (*MessageOutput, error) {
	if err := s.bookmarks.DeleteBookmarks(ctx, input.Body.IDs, service.SyncUnless(input.DoNotSync)); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Bookmarks deleted"}}, nil
}

func (s *Server) handleSetBookmarkLabels(ctx context.Context, input *BookmarkLabelsInput) (*LabelDeltaOutput, error) {
	desired := make([]domain.Label, 0, len(input.Body.LabelIDs))
	for _, labelID := range input.Body.LabelIDs {
		if labelID == 0 {
			// Reconciliation reports the unpersisted label.
			desired = append(desired, domain.Label{})
			continue
		}
		l, err := s.bookmarks.LabelByID(ctx, labelID)
		if err != nil {
			return nil, err
		}
		desired = append(desired, l)
	}

	delta, err := s.bookmarks.SetLabels(ctx, input.ID, desired, service.SyncUnless(input.DoNotSync))
	if err != nil {
		return nil, err
	}

	current, err := s.currentLabelIDs(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &LabelDeltaOutput{Body: LabelDeltaResponse{
		Added:    domain.LabelIDs(delta.ToAdd),
		Removed:  domain.LabelIDs(delta.ToRemove),
		LabelIDs: current,
	}}, nil
}

func (s *Server) handleReplaceBookmarkLabelIDs(ctx context.Context, input *BookmarkLabelsInput) (*BookmarkOutput, error) {
	if err := s.bookmarks.SetLabelIDs(ctx, input.ID, input.Body.LabelIDs, service.SyncUnless(input.DoNotSync)); err != nil {
		return nil, err
	}
	b, err := s.bookmarks.BookmarkByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return s.bookmarkOutput(ctx, b)
}

func (s *Server) handleSetBookmarkNote(ctx context.Context, input *SetNoteInput) (*BookmarkOutput, error) {
	b, err := s.bookmarks.SaveBookmarkNote(ctx, input.ID, input.Body.Note, service.SyncUnless(input.DoNotSync))
	if err != nil {
		return nil, err
	}
	return s.bookmarkOutput(ctx, b)
}

// bookmarkOutput attaches the current label ids to a single bookmark.
func (s *Server) bookmarkOutput(ctx context.Context, b *domain.Bookmark) (*BookmarkOutput, error) {
	ids, err := s.currentLabelIDs(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	resp := toBookmarkResponse(b)
	resp.LabelIDs = ids
	return &BookmarkOutput{Body: resp}, nil
}

func (s *Server) currentLabelIDs(ctx context.Context, bookmarkID int64) ([]int64, error) {
	labels, err := s.bookmarks.LabelsForBookmark(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	return domain.LabelIDs(labels), nil
}

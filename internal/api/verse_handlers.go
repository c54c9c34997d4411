package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/service"
)

func (s *Server) registerVerseRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getVerseBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/verses/{range}/bookmarks",
		Summary:     "List bookmarks overlapping a range",
		Tags:        []string{"Verses"},
	}, s.handleGetVerseBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "addVerseBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/verses/{range}/bookmark",
		Summary:     "Bookmark a range",
		Description: "Refreshes the bookmark already starting at the range start, or creates one",
		Tags:        []string{"Verses"},
	}, s.handleAddVerseBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteVerseBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/verses/{range}/bookmark",
		Summary:     "Remove the bookmark at a range",
		Description: "Deletes the first bookmark starting at the range start, if any",
		Tags:        []string{"Verses"},
	}, s.handleDeleteVerseBookmark)
}

// === DTOs ===

// VerseRangeInput addresses a verse range.
type VerseRangeInput struct {
	Range string `path:"range" doc:"OSIS range, e.g. Gen.1.1 or Gen.1.1-Gen.1.3"`
}

// AddVerseBookmarkInput contains parameters for bookmarking a range.
type AddVerseBookmarkInput struct {
	Range     string `path:"range" doc:"OSIS range, e.g. Gen.1.1 or Gen.1.1-Gen.1.3"`
	Document  string `query:"document" doc:"Module the bookmark is made in"`
	DoNotSync bool   `query:"do_not_sync" doc:"Suppress the change event"`
}

// DeleteVerseBookmarkInput contains parameters for removing the bookmark at a range.
type DeleteVerseBookmarkInput struct {
	Range     string `path:"range" doc:"OSIS range, e.g. Gen.1.1 or Gen.1.1-Gen.1.3"`
	DoNotSync bool   `query:"do_not_sync" doc:"Suppress the change event"`
}

// VerseBookmarkResponse reports the result of a toggle add.
type VerseBookmarkResponse struct {
	Bookmark BookmarkResponse `json:"bookmark" doc:"The bookmark at the range start"`
	Created  bool             `json:"created" doc:"Whether a new bookmark was inserted"`
}

// VerseBookmarkOutput wraps the toggle add response for Huma.
type VerseBookmarkOutput struct {
	Body VerseBookmarkResponse
}

// DeletedResponse reports whether anything was deleted.
type DeletedResponse struct {
	Deleted bool `json:"deleted" doc:"Whether a bookmark was removed"`
}

// DeletedOutput wraps DeletedResponse for Huma.
type DeletedOutput struct {
	Body DeletedResponse
}

// === Handlers ===

func parseRange(s string) (domain.VerseRange, error) {
	r, err := domain.ParseVerseRange(s)
	if err != nil {
		return domain.VerseRange{}, domainerrors.Validation(err.Error())
	}
	return r, nil
}

func (s *Server) handleGetVerseBookmarks(ctx context.Context, input *VerseRangeInput) (*ListBookmarksOutput, error) {
	r, err := parseRange(input.Range)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.bookmarks.BookmarksForVerseRange(ctx, r)
	if err != nil {
		return nil, err
	}
	return &ListBookmarksOutput{Body: ListBookmarksResponse{Bookmarks: toBookmarkResponses(bookmarks)}}, nil
}

func (s *Server) handleAddVerseBookmark(ctx context.Context, input *AddVerseBookmarkInput) (*VerseBookmarkOutput, error) {
	r, err := parseRange(input.Range)
	if err != nil {
		return nil, err
	}
	b, created, err := s.bookmarks.AddBookmarkForVerseRange(ctx, input.Document, r, service.SyncUnless(input.DoNotSync))
	if err != nil {
		return nil, err
	}
	out, err := s.bookmarkOutput(ctx, b)
	if err != nil {
		return nil, err
	}
	return &VerseBookmarkOutput{Body: VerseBookmarkResponse{Bookmark: out.Body, Created: created}}, nil
}

func (s *Server) handleDeleteVerseBookmark(ctx context.Context, input *DeleteVerseBookmarkInput) (*DeletedOutput, error) {
	r, err := parseRange(input.Range)
	if err != nil {
		return nil, err
	}
	deleted, err := s.bookmarks.DeleteBookmarkForVerseRange(ctx, r, service.SyncUnless(input.DoNotSync))
	if err != nil {
		return nil, err
	}
	return &DeletedOutput{Body: DeletedResponse{Deleted: deleted}}, nil
}

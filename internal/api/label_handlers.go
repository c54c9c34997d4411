package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/service"
)

func (s *Server) registerLabelRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLabels",
		Method:      http.MethodGet,
		Path:        "/api/v1/labels",
		Summary:     "List labels",
		Description: "Returns the All and Unlabelled groupings followed by stored labels sorted by name",
		Tags:        []string{"Labels"},
	}, s.handleListLabels)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSpeakLabel",
		Method:      http.MethodGet,
		Path:        "/api/v1/labels/speak",
		Summary:     "Get speak label",
		Description: "Resolves the speak label, creating it on first use",
		Tags:        []string{"Labels"},
	}, s.handleGetSpeakLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "createLabel",
		Method:      http.MethodPost,
		Path:        "/api/v1/labels",
		Summary:     "Create label",
		Tags:        []string{"Labels"},
	}, s.handleCreateLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLabel",
		Method:      http.MethodGet,
		Path:        "/api/v1/labels/{id}",
		Summary:     "Get label",
		Tags:        []string{"Labels"},
	}, s.handleGetLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLabel",
		Method:      http.MethodPut,
		Path:        "/api/v1/labels/{id}",
		Summary:     "Update label",
		Tags:        []string{"Labels"},
	}, s.handleUpdateLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteLabel",
		Method:      http.MethodDelete,
		Path:        "/api/v1/labels/{id}",
		Summary:     "Delete label",
		Description: "Deletes a label and detaches it from every bookmark",
		Tags:        []string{"Labels"},
	}, s.handleDeleteLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLabelBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/labels/{id}/bookmarks",
		Summary:     "List bookmarks for a label",
		Description: "Accepts the virtual ids -999 (All) and -998 (Unlabelled)",
		Tags:        []string{"Labels"},
	}, s.handleGetLabelBookmarks)
}

// === DTOs ===

// LabelResponse contains label data in API responses.
type LabelResponse struct {
	ID      int64  `json:"id" doc:"Label ID, negative for virtual labels"`
	Name    string `json:"name" doc:"Display name"`
	Color   int32  `json:"color" doc:"ARGB colour"`
	Virtual bool   `json:"virtual" doc:"Whether the label is a computed grouping"`
}

func toLabelResponse(l domain.Label) LabelResponse {
	return LabelResponse{ID: l.ID, Name: l.Name, Color: l.Color, Virtual: l.IsVirtual()}
}

func toLabelResponses(labels []domain.Label) []LabelResponse {
	out := make([]LabelResponse, len(labels))
	for i, l := range labels {
		out[i] = toLabelResponse(l)
	}
	return out
}

// ListLabelsInput contains parameters for listing labels.
type ListLabelsInput struct {
	Assignable bool `query:"assignable" doc:"Only stored labels that can be attached to bookmarks"`
}

// ListLabelsResponse contains a list of labels.
type ListLabelsResponse struct {
	Labels []LabelResponse `json:"labels" doc:"Labels in presentation order"`
}

// ListLabelsOutput wraps the list labels response for Huma.
type ListLabelsOutput struct {
	Body ListLabelsResponse
}

// LabelOutput wraps a single label for Huma.
type LabelOutput struct {
	Body LabelResponse
}

// SaveLabelRequest is the request body for creating or updating a label.
type SaveLabelRequest struct {
	Name  string `json:"name" minLength:"1" maxLength:"100" doc:"Display name"`
	Color int32  `json:"color,omitempty" doc:"ARGB colour"`
}

// CreateLabelInput wraps the create label request for Huma.
type CreateLabelInput struct {
	DoNotSync bool `query:"do_not_sync" doc:"Suppress the change event"`
	Body      SaveLabelRequest
}

// LabelIDInput addresses a label by id.
type LabelIDInput struct {
	ID int64 `path:"id" doc:"Label ID"`
}

// UpdateLabelInput wraps the update label request for Huma.
type UpdateLabelInput struct {
	ID        int64 `path:"id" doc:"Label ID"`
	DoNotSync bool  `query:"do_not_sync" doc:"Suppress the change event"`
	Body      SaveLabelRequest
}

// DeleteLabelInput contains parameters for deleting a label.
type DeleteLabelInput struct {
	ID        int64 `path:"id" doc:"Label ID"`
	DoNotSync bool  `query:"do_not_sync" doc:"Suppress the change event"`
}

// LabelBookmarksInput contains parameters for listing a label's bookmarks.
type LabelBookmarksInput struct {
	ID    int64  `path:"id" doc:"Label ID"`
	Order string `query:"order" enum:"canonical,created_at,last_updated" default:"canonical" doc:"Sort order"`
}

// === Handlers ===

func (s *Server) handleListLabels(ctx context.Context, input *ListLabelsInput) (*ListLabelsOutput, error) {
	var (
		labels []domain.Label
		err    error
	)
	if input.Assignable {
		labels, err = s.bookmarks.AssignableLabels(ctx)
	} else {
		labels, err = s.bookmarks.AllLabels(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &ListLabelsOutput{Body: ListLabelsResponse{Labels: toLabelResponses(labels)}}, nil
}

func (s *Server) handleGetSpeakLabel(ctx context.Context, _ *struct{}) (*LabelOutput, error) {
	l, err := s.bookmarks.SpeakLabel(ctx)
	if err != nil {
		return nil, err
	}
	return &LabelOutput{Body: toLabelResponse(l)}, nil
}

func (s *Server) handleCreateLabel(ctx context.Context, input *CreateLabelInput) (*LabelOutput, error) {
	l, err := s.bookmarks.SaveLabel(ctx, &domain.Label{
		Name:  input.Body.Name,
		Color: input.Body.Color,
	}, service.SyncUnless(input.DoNotSync))
	if err != nil {
		return nil, err
	}
	return &LabelOutput{Body: toLabelResponse(*l)}, nil
}

func (s *Server) handleGetLabel(ctx context.Context, input *LabelIDInput) (*LabelOutput, error) {
	l, err := s.bookmarks.LabelByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &LabelOutput{Body: toLabelResponse(l)}, nil
}

func (s *Server) handleUpdateLabel(ctx context.Context, input *UpdateLabelInput) (*LabelOutput, error) {
	if input.ID == 0 {
		return nil, domainerrors.NotFound("label 0 not found")
	}
	l := &domain.Label{ID: input.ID, Name: input.Body.Name, Color: input.Body.Color}

	saved, err := s.bookmarks.SaveLabel(ctx, l, service.SyncUnless(input.DoNotSync))
	if err != nil {
		return nil, err
	}
	return &LabelOutput{Body: toLabelResponse(*saved)}, nil
}

func (s *Server) handleDeleteLabel(ctx context.Context, input *DeleteLabelInput) (*MessageOutput, error) {
	if err := s.bookmarks.DeleteLabel(ctx, input.ID, service.SyncUnless(input.DoNotSync)); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Label deleted"}}, nil
}

func (s *Server) handleGetLabelBookmarks(ctx context.Context, input *LabelBookmarksInput) (*ListBookmarksOutput, error) {
	bookmarks, err := s.bookmarks.BookmarksForLabelID(ctx, input.ID, domain.ParseSortOrder(input.Order))
	if err != nil {
		return nil, err
	}
	return &ListBookmarksOutput{Body: ListBookmarksResponse{Bookmarks: toBookmarkResponses(bookmarks)}}, nil
}

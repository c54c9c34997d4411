package service

import (
	"context"
	"slices"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/event"
)

// AllLabels returns the labels for presentation: the virtual All and
// Unlabelled groupings first, then every stored label sorted by name.
func (s *BookmarkService) AllLabels(ctx context.Context) ([]domain.Label, error) {
	stored, err := s.repo.AllLabelsSortedByName(ctx)
	if err != nil {
		return nil, err
	}
	return append(domain.VirtualLabels(), stored...), nil
}

// AssignableLabels returns only the stored labels, sorted by name.
func (s *BookmarkService) AssignableLabels(ctx context.Context) ([]domain.Label, error) {
	return s.repo.AllLabelsSortedByName(ctx)
}

// LabelByID resolves an id to a label. Interop ids of the virtual labels
// resolve to the virtual labels themselves.
func (s *BookmarkService) LabelByID(ctx context.Context, id int64) (domain.Label, error) {
	if l, ok := domain.VirtualLabelByID(id); ok {
		return l, nil
	}
	if id <= 0 {
		return domain.Label{}, domainerrors.NotFoundf("label %d not found", id)
	}
	l, err := s.repo.LabelByID(ctx, id)
	if err != nil {
		return domain.Label{}, err
	}
	return *l, nil
}

// BookmarksForLabel lists the bookmarks a label stands for. All yields every
// bookmark, Unlabelled yields bookmarks without associations, and a stored
// label yields the bookmarks associated with it.
func (s *BookmarkService) BookmarksForLabel(ctx context.Context, label domain.Label, order domain.SortOrder) ([]*domain.Bookmark, error) {
	switch label.Grouping() {
	case domain.LabelAll:
		return s.repo.AllBookmarks(ctx, order)
	case domain.LabelUnlabelled:
		return s.repo.UnlabelledBookmarks(ctx, order)
	default:
		return s.repo.BookmarksWithLabel(ctx, label.ID, order)
	}
}

// BookmarksForLabelID is BookmarksForLabel for callers holding only an id.
func (s *BookmarkService) BookmarksForLabelID(ctx context.Context, labelID int64, order domain.SortOrder) ([]*domain.Bookmark, error) {
	l, err := s.LabelByID(ctx, labelID)
	if err != nil {
		return nil, err
	}
	return s.BookmarksForLabel(ctx, l, order)
}

// SaveLabel inserts a new label (id 0) or updates a stored one.
// Virtual labels and negative ids are rejected.
func (s *BookmarkService) SaveLabel(ctx context.Context, l *domain.Label, opts ...MutationOption) (*domain.Label, error) {
	if l == nil {
		return nil, domainerrors.Validation("label is required")
	}
	if l.IsVirtual() || l.ID < 0 {
		return nil, domainerrors.InvalidIdentityf("label id %d is reserved for virtual labels", l.ID)
	}
	if err := s.validator.Validate(l); err != nil {
		return nil, err
	}
	m := applyMutationOptions(opts)

	created := l.IsNew()
	if created {
		id, err := s.repo.InsertLabel(ctx, l)
		if err != nil {
			return nil, err
		}
		l.ID = id
	} else if err := s.repo.UpdateLabel(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("label saved", "label_id", l.ID, "name", l.Name, "created", created, "sync", !m.doNotSync)
	s.publish(m, event.LabelAddedOrUpdated{Label: *l})
	return l, nil
}

// DeleteLabel removes a stored label together with its associations.
func (s *BookmarkService) DeleteLabel(ctx context.Context, labelID int64, opts ...MutationOption) error {
	return s.DeleteLabels(ctx, []int64{labelID}, opts...)
}

// DeleteLabels removes stored labels together with their associations.
// Deleting the speak label clears the cached speak label.
func (s *BookmarkService) DeleteLabels(ctx context.Context, labelIDs []int64, opts ...MutationOption) error {
	ids := make([]int64, 0, len(labelIDs))
	for _, id := range labelIDs {
		switch {
		case id < 0:
			return domainerrors.InvalidIdentityf("label id %d is reserved for virtual labels", id)
		case id == 0:
			return domainerrors.UnpersistedLabelf("label id 0 refers to an unsaved label")
		}
		ids = append(ids, id)
	}
	ids = positiveUnique(ids)
	if len(ids) == 0 {
		return nil
	}
	m := applyMutationOptions(opts)

	if err := s.repo.DeleteLabels(ctx, ids); err != nil {
		return err
	}

	if cached, ok := s.speak.cachedID(); ok && slices.Contains(ids, cached) {
		s.speak.reset()
	}

	s.logger.Info("labels deleted", "label_ids", ids, "sync", !m.doNotSync)
	s.publish(m, event.LabelsDeleted{LabelIDs: ids})
	return nil
}

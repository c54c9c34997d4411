package service

import (
	"context"
	"slices"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/event"
)

// LabelDelta is the association change needed to move a bookmark from its
// current labels to a desired set.
type LabelDelta struct {
	ToAdd    []domain.Label `json:"to_add"`
	ToRemove []domain.Label `json:"to_remove"`
}

// Empty reports whether nothing needs to change.
func (d LabelDelta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// ReconcileLabels computes the delta between current and desired labels.
// Virtual labels in desired are ignored. Desired labels that were never
// persisted fail with an unpersisted label error. Both sides keep their input
// order and repeated labels collapse to the first occurrence.
func ReconcileLabels(current, desired []domain.Label) (LabelDelta, error) {
	want := make([]domain.Label, 0, len(desired))
	for _, l := range desired {
		if l.IsVirtual() {
			continue
		}
		if l.IsNew() {
			return LabelDelta{}, domainerrors.UnpersistedLabelf("label %q must be saved before it is assigned", l.Name)
		}
		if l.ID < 0 {
			return LabelDelta{}, domainerrors.InvalidIdentityf("label id %d is reserved", l.ID)
		}
		if !containsLabel(want, l) {
			want = append(want, l)
		}
	}

	var delta LabelDelta
	for _, l := range current {
		if !containsLabel(want, l) && !containsLabel(delta.ToRemove, l) {
			delta.ToRemove = append(delta.ToRemove, l)
		}
	}
	for _, l := range want {
		if !containsLabel(current, l) {
			delta.ToAdd = append(delta.ToAdd, l)
		}
	}
	return delta, nil
}

func containsLabel(labels []domain.Label, l domain.Label) bool {
	for _, x := range labels {
		if x.Equal(l) {
			return true
		}
	}
	return false
}

// SetLabels moves a bookmark to exactly the desired labels, touching only the
// associations that differ. Removals are applied before additions, in one
// transaction.
func (s *BookmarkService) SetLabels(ctx context.Context, bookmarkID int64, desired []domain.Label, opts ...MutationOption) (LabelDelta, error) {
	if bookmarkID <= 0 {
		return LabelDelta{}, domainerrors.UnpersistedLabelf("bookmark must be saved before labels are assigned")
	}
	m := applyMutationOptions(opts)

	b, err := s.repo.BookmarkByID(ctx, bookmarkID)
	if err != nil {
		return LabelDelta{}, err
	}

	current, err := s.repo.LabelsForBookmark(ctx, bookmarkID)
	if err != nil {
		return LabelDelta{}, err
	}

	delta, err := ReconcileLabels(current, desired)
	if err != nil {
		return LabelDelta{}, err
	}

	if err := s.repo.ApplyAssociationDelta(ctx, links(bookmarkID, delta.ToRemove), links(bookmarkID, delta.ToAdd)); err != nil {
		return LabelDelta{}, err
	}

	ids, err := s.currentLabelIDs(ctx, bookmarkID)
	if err != nil {
		return LabelDelta{}, err
	}

	s.logger.Info("bookmark labels reconciled",
		"bookmark_id", bookmarkID,
		"added", domain.LabelIDs(delta.ToAdd),
		"removed", domain.LabelIDs(delta.ToRemove),
		"sync", !m.doNotSync,
	)
	s.publish(m, event.BookmarkAddedOrUpdated{Bookmark: b, LabelIDs: ids})
	return delta, nil
}

// SetLabelIDs replaces every label of a bookmark with ids, without diffing.
// On error the previous labels are kept.
// Negative ids name virtual labels and are dropped; id 0 is an error.
func (s *BookmarkService) SetLabelIDs(ctx context.Context, bookmarkID int64, labelIDs []int64, opts ...MutationOption) error {
	if bookmarkID <= 0 {
		return domainerrors.UnpersistedLabelf("bookmark must be saved before labels are assigned")
	}
	ids, err := normalizeLabelIDs(labelIDs)
	if err != nil {
		return err
	}
	m := applyMutationOptions(opts)

	b, err := s.repo.BookmarkByID(ctx, bookmarkID)
	if err != nil {
		return err
	}

	if err := s.requireLabels(ctx, ids); err != nil {
		return err
	}
	if err := s.repo.ReplaceAssociations(ctx, bookmarkID, ids); err != nil {
		return err
	}

	current, err := s.currentLabelIDs(ctx, bookmarkID)
	if err != nil {
		return err
	}

	s.logger.Info("bookmark labels replaced", "bookmark_id", bookmarkID, "label_ids", current, "sync", !m.doNotSync)
	s.publish(m, event.BookmarkAddedOrUpdated{Bookmark: b, LabelIDs: current})
	return nil
}

// requireLabels fails with a not found error naming the first id that has
// no stored label.
func (s *BookmarkService) requireLabels(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := s.repo.LabelByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// normalizeLabelIDs drops virtual ids and duplicates, rejecting unsaved ones.
func normalizeLabelIDs(ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		switch {
		case id == 0:
			return nil, domainerrors.UnpersistedLabelf("label id 0 refers to an unsaved label")
		case id < 0:
			continue
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func links(bookmarkID int64, labels []domain.Label) []domain.BookmarkLabel {
	rows := make([]domain.BookmarkLabel, len(labels))
	for i, l := range labels {
		rows[i] = domain.BookmarkLabel{BookmarkID: bookmarkID, LabelID: l.ID}
	}
	return rows
}

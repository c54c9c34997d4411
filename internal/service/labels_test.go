package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/event"
)

func TestAllLabels_VirtualFirst(t *testing.T) {
	f := setupBookmarkTest(t)
	ctx := context.Background()

	labels, err := f.svc.AllLabels(ctx)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.True(t, labels[0].Equal(domain.LabelAllBookmarks))
	assert.True(t, labels[1].Equal(domain.LabelNoLabels))

	f.addLabel(t, "zeal")
	f.addLabel(t, "Faith")

	labels, err = f.svc.AllLabels(ctx)
	require.NoError(t, err)
	require.Len(t, labels, 4)
	assert.Equal(t, []string{"All", "Unlabelled", "Faith", "zeal"},
		[]string{labels[0].Name, labels[1].Name, labels[2].Name, labels[3].Name})

	assignable, err := f.svc.AssignableLabels(ctx)
	require.NoError(t, err)
	assert.Len(t, assignable, 2)
	for _, l := range assignable {
		assert.False(t, l.IsVirtual())
	}
}

func TestSaveLabel_RejectsVirtualIdentity(t *testing.T) {
	f := setupBookmarkTest(t)
	ctx := context.Background()

	all := domain.LabelAllBookmarks
	_, err := f.svc.SaveLabel(ctx, &all)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidIdentity)

	_, err = f.svc.SaveLabel(ctx, &domain.Label{ID: domain.LabelAllID, Name: "All"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidIdentity)

	_, err = f.svc.SaveLabel(ctx, &domain.Label{ID: -1, Name: "negative"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidIdentity)

	assert.Empty(t, f.events.Events())
	assert.Zero(t, f.repo.count("InsertLabel"))
}

func TestSaveLabel_InsertUpdate(t *testing.T) {
	f := setupBookmarkTest(t)
	ctx := context.Background()

	l, err := f.svc.SaveLabel(ctx, &domain.Label{Name: "Faith", Color: 7})
	require.NoError(t, err)
	assert.Positive(t, l.ID)

	l.Name = "Belief"
	_, err = f.svc.SaveLabel(ctx, l)
	require.NoError(t, err)

	stored, err := f.svc.LabelByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Belief", stored.Name)

	evt := lastEvent(t, f.events).(event.LabelAddedOrUpdated)
	assert.Equal(t, "Belief", evt.Label.Name)

	_, err = f.svc.SaveLabel(ctx, &domain.Label{Name: ""})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.svc.SaveLabel(ctx, &domain.Label{ID: 999, Name: "ghost"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteLabels_Errors(t *testing.T) {
	f := setupBookmarkTest(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.DeleteLabel(ctx, domain.LabelAllID), domainerrors.ErrInvalidIdentity)
	assert.ErrorIs(t, f.svc.DeleteLabel(ctx, 0), domainerrors.ErrUnpersistedLabel)
	assert.NoError(t, f.svc.DeleteLabels(ctx, nil))
	assert.Empty(t, f.events.Events())
}

func TestLabelByID(t *testing.T) {
	f := setupBookmarkTest(t)
	ctx := context.Background()

	l, err := f.svc.LabelByID(ctx, domain.LabelUnlabelledID)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelUnlabelled, l.Kind)

	_, err = f.svc.LabelByID(ctx, -5)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.svc.LabelByID(ctx, 5)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookmarksForLabel(t *testing.T) {
	f := setupBookmarkTest(t)
	ctx := context.Background()

	b1 := f.addBookmark(t, gen(1, 1))
	b2 := f.addBookmark(t, gen(1, 2))
	b3 := f.addBookmark(t, gen(1, 3))
	faith := f.addLabel(t, "Faith")
	hope := f.addLabel(t, "Hope")

	require.NoError(t, f.svc.SetLabelIDs(ctx, b1.ID, []int64{faith.ID}))
	require.NoError(t, f.svc.SetLabelIDs(ctx, b2.ID, []int64{faith.ID, hope.ID}))

	all, err := f.svc.BookmarksForLabel(ctx, domain.LabelAllBookmarks, domain.OrderCanonical)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	withFaith, err := f.svc.BookmarksForLabelID(ctx, faith.ID, domain.OrderCanonical)
	require.NoError(t, err)
	assert.Equal(t, []int64{b1.ID, b2.ID}, bookmarkIDs(withFaith))

	unlabelled, err := f.svc.BookmarksForLabelID(ctx, domain.LabelUnlabelledID, domain.OrderCanonical)
	require.NoError(t, err)
	assert.Equal(t, []int64{b3.ID}, bookmarkIDs(unlabelled))

	// b is in Unlabelled exactly when it has no labels.
	for _, b := range all {
		labels, err := f.svc.LabelsForBookmark(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, len(labels) == 0, containsBookmark(unlabelled, b.ID), "bookmark %d", b.ID)
	}

	_, err = f.svc.BookmarksForLabelID(ctx, 12345, domain.OrderCanonical)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookmarksForLabel_InteropIDWithoutKind(t *testing.T) {
	f := setupBookmarkTest(t)
	ctx := context.Background()

	b1 := f.addBookmark(t, gen(1, 1))
	b2 := f.addBookmark(t, gen(1, 2))
	faith := f.addLabel(t, "Faith")
	require.NoError(t, f.svc.SetLabelIDs(ctx, b1.ID, []int64{faith.ID}))

	all, err := f.svc.BookmarksForLabel(ctx, domain.Label{ID: domain.LabelAllID}, domain.OrderCanonical)
	require.NoError(t, err)
	assert.Equal(t, []int64{b1.ID, b2.ID}, bookmarkIDs(all))

	unlabelled, err := f.svc.BookmarksForLabel(ctx, domain.Label{ID: domain.LabelUnlabelledID}, domain.OrderCanonical)
	require.NoError(t, err)
	assert.Equal(t, []int64{b2.ID}, bookmarkIDs(unlabelled))
}

func bookmarkIDs(bookmarks []*domain.Bookmark) []int64 {
	ids := make([]int64, len(bookmarks))
	for i, b := range bookmarks {
		ids[i] = b.ID
	}
	return ids
}

func containsBookmark(bookmarks []*domain.Bookmark, id int64) bool {
	for _, b := range bookmarks {
		if b.ID == id {
			return true
		}
	}
	return false
}

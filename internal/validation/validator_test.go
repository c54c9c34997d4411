package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/validation"
)

func gen(chapter, verse int) domain.Verse {
	return domain.Verse{Book: "Gen", Chapter: chapter, Verse: verse}
}

func TestValidator_ValidBookmark(t *testing.T) {
	v := validation.New()

	b := domain.NewBookmark(domain.VerseRange{Start: gen(1, 1), End: gen(1, 3)}, "KJV")

	assert.NoError(t, v.Validate(b))
}

func TestValidator_BookmarkErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		anchor    domain.VerseRange
		wantField string
		wantMsg   string
	}{
		{
			name:      "unknown book",
			anchor:    domain.SingleVerse(domain.Verse{Book: "Tobit", Chapter: 1, Verse: 1}),
			wantField: "anchor.start.book",
			wantMsg:   "must be an OSIS book id",
		},
		{
			name:      "chapter zero",
			anchor:    domain.VerseRange{Start: gen(0, 1), End: gen(1, 1)},
			wantField: "anchor.start.chapter",
			wantMsg:   "must be greater than or equal to 1",
		},
		{
			name:      "reversed range",
			anchor:    domain.VerseRange{Start: gen(2, 1), End: gen(1, 1)},
			wantField: "anchor.end",
			wantMsg:   "must not precede start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(domain.NewBookmark(tt.anchor, ""))
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_LabelName(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(domain.Label{Name: "Faith"}))

	err := v.Validate(domain.Label{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

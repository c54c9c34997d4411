package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
)

// InsertLabel stores a new label and returns its id.
func (s *Store) InsertLabel(ctx context.Context, l *domain.Label) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO labels (name, color) VALUES (?, ?)`, l.Name, l.Color)
	if err != nil {
		return 0, storageErr(err, "insert label")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr(err, "insert label")
	}
	return id, nil
}

// UpdateLabel overwrites name and color of a stored label.
// Returns a not found error if the label does not exist.
func (s *Store) UpdateLabel(ctx context.Context, l *domain.Label) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE labels SET name = ?, color = ? WHERE id = ?`, l.Name, l.Color, l.ID)
	if err != nil {
		return storageErr(err, "update label")
	}
	return expectRow(res, "update label", "label", l.ID)
}

// DeleteLabels removes labels; their associations cascade. Missing ids are ignored.
func (s *Store) DeleteLabels(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	marks, args := placeholders(ids)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE id IN (`+marks+`)`, args...); err != nil {
		return storageErr(err, "delete labels")
	}
	return nil
}

// LabelByID retrieves a label by id.
func (s *Store) LabelByID(ctx context.Context, id int64) (*domain.Label, error) {
	var l domain.Label
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color FROM labels WHERE id = ?`, id).Scan(&l.ID, &l.Name, &l.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("label %d not found", id)
	}
	if err != nil {
		return nil, storageErr(err, "get label")
	}
	return &l, nil
}

// LabelByName retrieves the oldest label with an exact name match.
func (s *Store) LabelByName(ctx context.Context, name string) (*domain.Label, error) {
	var l domain.Label
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color FROM labels WHERE name = ? ORDER BY id ASC LIMIT 1`, name).
		Scan(&l.ID, &l.Name, &l.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("label %q not found", name)
	}
	if err != nil {
		return nil, storageErr(err, "get label by name")
	}
	return &l, nil
}

// AllLabelsSortedByName returns every stored label ordered by the store locale.
func (s *Store) AllLabelsSortedByName(ctx context.Context) ([]domain.Label, error) {
	labels, err := s.queryLabels(ctx, "list labels", `SELECT id, name, color FROM labels`)
	if err != nil {
		return nil, err
	}
	sortLabels(labels, s.currentLocale())
	return labels, nil
}

func (s *Store) queryLabels(ctx context.Context, op, query string, args ...any) ([]domain.Label, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err, op)
	}
	defer rows.Close()

	labels := []domain.Label{}
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Color); err != nil {
			return nil, storageErr(err, op)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, op)
	}
	return labels, nil
}

// sortLabels orders labels case-insensitively for the locale, breaking ties on id.
// A collator is not safe for concurrent use, so one is built per call.
func sortLabels(labels []domain.Label, tag language.Tag) {
	c := collate.New(tag, collate.IgnoreCase)
	slices.SortStableFunc(labels, func(a, b domain.Label) int {
		if r := c.CompareString(a.Name, b.Name); r != 0 {
			return r
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

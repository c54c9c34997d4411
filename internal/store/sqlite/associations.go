package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/versemark/versemark-server/internal/domain"
)

const (
	insertLinkSQL = `INSERT OR IGNORE INTO bookmark_labels (bookmark_id, label_id) VALUES (?, ?)`
	deleteLinkSQL = `DELETE FROM bookmark_labels WHERE bookmark_id = ? AND label_id = ?`
)

// InsertAssociations links bookmarks to labels. Existing links are left alone.
// All links are written in one transaction.
func (s *Store) InsertAssociations(ctx context.Context, links []domain.BookmarkLabel) error {
	if len(links) == 0 {
		return nil
	}
	return s.withTx(ctx, "insert associations", func(tx *sql.Tx) error {
		return execLinks(ctx, tx, insertLinkSQL, links)
	})
}

// DeleteAssociations removes links. Missing links are ignored.
func (s *Store) DeleteAssociations(ctx context.Context, links []domain.BookmarkLabel) error {
	if len(links) == 0 {
		return nil
	}
	return s.withTx(ctx, "delete associations", func(tx *sql.Tx) error {
		return execLinks(ctx, tx, deleteLinkSQL, links)
	})
}

// ApplyAssociationDelta removes and then adds links in one transaction.
// If any step fails nothing changes.
func (s *Store) ApplyAssociationDelta(ctx context.Context, remove, add []domain.BookmarkLabel) error {
	if len(remove) == 0 && len(add) == 0 {
		return nil
	}
	return s.withTx(ctx, "apply association delta", func(tx *sql.Tx) error {
		if err := execLinks(ctx, tx, deleteLinkSQL, remove); err != nil {
			return err
		}
		return execLinks(ctx, tx, insertLinkSQL, add)
	})
}

// ReplaceAssociations sets the labels of one bookmark to exactly labelIDs.
// The clear and the inserts share a transaction, so a failed insert keeps the
// previous labels.
func (s *Store) ReplaceAssociations(ctx context.Context, bookmarkID int64, labelIDs []int64) error {
	return s.withTx(ctx, "replace associations", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM bookmark_labels WHERE bookmark_id = ?`, bookmarkID); err != nil {
			return err
		}
		links := make([]domain.BookmarkLabel, len(labelIDs))
		for i, id := range labelIDs {
			links[i] = domain.BookmarkLabel{BookmarkID: bookmarkID, LabelID: id}
		}
		return execLinks(ctx, tx, insertLinkSQL, links)
	})
}

func execLinks(ctx context.Context, tx *sql.Tx, query string, links []domain.BookmarkLabel) error {
	if len(links) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, link := range links {
		if _, err := stmt.ExecContext(ctx, link.BookmarkID, link.LabelID); err != nil {
			return err
		}
	}
	return nil
}

// ClearAssociationsForBookmark removes every link of one bookmark.
func (s *Store) ClearAssociationsForBookmark(ctx context.Context, bookmarkID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmark_labels WHERE bookmark_id = ?`, bookmarkID); err != nil {
		return storageErr(err, "clear associations")
	}
	return nil
}

// LabelsForBookmark returns the labels linked to a bookmark, sorted by name.
func (s *Store) LabelsForBookmark(ctx context.Context, bookmarkID int64) ([]domain.Label, error) {
	labels, err := s.queryLabels(ctx, "get labels for bookmark", `
		SELECT l.id, l.name, l.color FROM labels l
		JOIN bookmark_labels bl ON bl.label_id = l.id
		WHERE bl.bookmark_id = ?`, bookmarkID)
	if err != nil {
		return nil, err
	}
	sortLabels(labels, s.currentLocale())
	return labels, nil
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, op)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && s.logger != nil {
			s.logger.Warn("rollback failed", "op", op, "error", rbErr)
		}
		return storageErr(err, op)
	}

	if err := tx.Commit(); err != nil {
		return storageErr(fmt.Errorf("commit: %w", err), op)
	}
	return nil
}

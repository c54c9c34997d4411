package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
)

// bookmarkColumns is the ordered list of columns selected in bookmark queries.
// Must match the scan order in scanBookmark.
const bookmarkColumns = `b.id, b.start_book, b.start_chapter, b.start_verse,
	b.end_book, b.end_chapter, b.end_verse, b.document, b.notes,
	b.playback_settings, b.created_at, b.last_updated_on`

// scanBookmark scans a sql.Row (or sql.Rows via its Scan method) into a domain.Bookmark.
func scanBookmark(scanner interface{ Scan(dest ...any) error }) (*domain.Bookmark, error) {
	var b domain.Bookmark

	var (
		document  sql.NullString
		notes     sql.NullString
		playback  sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Anchor.Start.Book,
		&b.Anchor.Start.Chapter,
		&b.Anchor.Start.Verse,
		&b.Anchor.End.Book,
		&b.Anchor.End.Chapter,
		&b.Anchor.End.Verse,
		&document,
		&notes,
		&playback,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Document = document.String
	if notes.Valid {
		n := notes.String
		b.Notes = &n
	}
	if playback.Valid && playback.String != "" {
		var ps domain.PlaybackSettings
		if err := json.Unmarshal([]byte(playback.String), &ps); err != nil {
			return nil, fmt.Errorf("decode playback settings: %w", err)
		}
		b.PlaybackSettings = &ps
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.LastUpdatedOn, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func encodePlayback(ps *domain.PlaybackSettings) (sql.NullString, error) {
	if ps == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(ps)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode playback settings: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// orderClause maps a sort order onto SQL. Ties always break on id for stable output.
func orderClause(order domain.SortOrder) string {
	switch order {
	case domain.OrderCreatedAt:
		return ` ORDER BY b.created_at DESC, b.id DESC`
	case domain.OrderLastUpdated:
		return ` ORDER BY b.last_updated_on DESC, b.id DESC`
	default:
		return ` ORDER BY b.start_key ASC, b.end_key ASC, b.id ASC`
	}
}

// queryBookmarks runs a bookmark SELECT and collects the rows.
func (s *Store) queryBookmarks(ctx context.Context, op, query string, args ...any) ([]*domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err, op)
	}
	defer rows.Close()

	bookmarks := []*domain.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, storageErr(err, op)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, op)
	}
	return bookmarks, nil
}

// InsertBookmark stores a new bookmark and returns its id.
func (s *Store) InsertBookmark(ctx context.Context, b *domain.Bookmark) (int64, error) {
	playback, err := encodePlayback(b.PlaybackSettings)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (
			start_book, start_chapter, start_verse,
			end_book, end_chapter, end_verse,
			start_key, end_key, document, notes, playback_settings,
			created_at, last_updated_on
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Anchor.Start.Book, b.Anchor.Start.Chapter, b.Anchor.Start.Verse,
		b.Anchor.End.Book, b.Anchor.End.Chapter, b.Anchor.End.Verse,
		b.Anchor.Start.Key(), b.Anchor.End.Key(),
		nullString(b.Document),
		nullableString(b.Notes),
		playback,
		formatTime(b.CreatedAt),
		formatTime(b.LastUpdatedOn),
	)
	if err != nil {
		return 0, storageErr(err, "insert bookmark")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr(err, "insert bookmark")
	}
	return id, nil
}

// UpdateBookmark overwrites a bookmark row.
// Returns a not found error if the bookmark does not exist.
func (s *Store) UpdateBookmark(ctx context.Context, b *domain.Bookmark) error {
	playback, err := encodePlayback(b.PlaybackSettings)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookmarks SET
			start_book = ?, start_chapter = ?, start_verse = ?,
			end_book = ?, end_chapter = ?, end_verse = ?,
			start_key = ?, end_key = ?, document = ?, notes = ?,
			playback_settings = ?, last_updated_on = ?
		WHERE id = ?`,
		b.Anchor.Start.Book, b.Anchor.Start.Chapter, b.Anchor.Start.Verse,
		b.Anchor.End.Book, b.Anchor.End.Chapter, b.Anchor.End.Verse,
		b.Anchor.Start.Key(), b.Anchor.End.Key(),
		nullString(b.Document),
		nullableString(b.Notes),
		playback,
		formatTime(b.LastUpdatedOn),
		b.ID,
	)
	if err != nil {
		return storageErr(err, "update bookmark")
	}
	return expectRow(res, "update bookmark", "bookmark", b.ID)
}

// TouchBookmark sets last_updated_on without changing anything else.
func (s *Store) TouchBookmark(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET last_updated_on = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return storageErr(err, "touch bookmark")
	}
	return expectRow(res, "touch bookmark", "bookmark", id)
}

// SaveNote sets or clears the note of a bookmark and stamps last_updated_on
// with at. An empty note is stored as NULL.
func (s *Store) SaveNote(ctx context.Context, bookmarkID int64, note *string, at time.Time) error {
	if note != nil && *note == "" {
		note = nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET notes = ?, last_updated_on = ? WHERE id = ?`,
		nullableString(note), formatTime(at), bookmarkID)
	if err != nil {
		return storageErr(err, "save note")
	}
	return expectRow(res, "save note", "bookmark", bookmarkID)
}

// DeleteBookmarks removes bookmarks; their label associations cascade.
// Missing ids are ignored.
func (s *Store) DeleteBookmarks(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	marks, args := placeholders(ids)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id IN (`+marks+`)`, args...); err != nil {
		return storageErr(err, "delete bookmarks")
	}
	return nil
}

// BookmarkByID retrieves a bookmark by its id.
// Returns a not found error if the bookmark does not exist.
func (s *Store) BookmarkByID(ctx context.Context, id int64) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks b WHERE b.id = ?`, id)

	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("bookmark %d not found", id)
	}
	if err != nil {
		return nil, storageErr(err, "get bookmark")
	}
	return b, nil
}

// BookmarksByIDs returns the bookmarks that exist among ids, in canonical order.
func (s *Store) BookmarksByIDs(ctx context.Context, ids []int64) ([]*domain.Bookmark, error) {
	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}
	marks, args := placeholders(ids)
	return s.queryBookmarks(ctx, "get bookmarks by ids",
		`SELECT `+bookmarkColumns+` FROM bookmarks b WHERE b.id IN (`+marks+`)`+orderClause(domain.OrderCanonical),
		args...)
}

// BookmarksStartingAt returns bookmarks whose range begins at v, oldest first.
func (s *Store) BookmarksStartingAt(ctx context.Context, v domain.Verse) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get bookmarks starting at verse",
		`SELECT `+bookmarkColumns+` FROM bookmarks b WHERE b.start_key = ? ORDER BY b.id ASC`,
		v.Key())
}

// BookmarksStartingAtWithLabel narrows BookmarksStartingAt to one label.
func (s *Store) BookmarksStartingAtWithLabel(ctx context.Context, v domain.Verse, labelID int64) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get labelled bookmarks starting at verse",
		`SELECT `+bookmarkColumns+` FROM bookmarks b
		JOIN bookmark_labels bl ON bl.bookmark_id = b.id
		WHERE b.start_key = ? AND bl.label_id = ?
		ORDER BY b.id ASC`,
		v.Key(), labelID)
}

// BookmarksInRange returns bookmarks overlapping r in canonical order.
func (s *Store) BookmarksInRange(ctx context.Context, r domain.VerseRange) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get bookmarks in range",
		`SELECT `+bookmarkColumns+` FROM bookmarks b
		WHERE b.start_key <= ? AND b.end_key >= ?`+orderClause(domain.OrderCanonical),
		r.End.Key(), r.Start.Key())
}

// BookmarksInBook returns bookmarks starting in the given book in canonical order.
func (s *Store) BookmarksInBook(ctx context.Context, book string) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get bookmarks in book",
		`SELECT `+bookmarkColumns+` FROM bookmarks b WHERE b.start_book = ?`+orderClause(domain.OrderCanonical),
		domain.CanonicalBook(book))
}

// BookmarksWithLabel returns bookmarks associated with labelID.
func (s *Store) BookmarksWithLabel(ctx context.Context, labelID int64, order domain.SortOrder) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get bookmarks with label",
		`SELECT `+bookmarkColumns+` FROM bookmarks b
		JOIN bookmark_labels bl ON bl.bookmark_id = b.id
		WHERE bl.label_id = ?`+orderClause(order),
		labelID)
}

// UnlabelledBookmarks returns bookmarks with no association rows.
func (s *Store) UnlabelledBookmarks(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get unlabelled bookmarks",
		`SELECT `+bookmarkColumns+` FROM bookmarks b
		WHERE NOT EXISTS (SELECT 1 FROM bookmark_labels bl WHERE bl.bookmark_id = b.id)`+orderClause(order))
}

// AllBookmarks returns every bookmark.
func (s *Store) AllBookmarks(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get all bookmarks",
		`SELECT `+bookmarkColumns+` FROM bookmarks b`+orderClause(order))
}

// AllBookmarksWithNotes returns bookmarks carrying a non-empty note.
func (s *Store) AllBookmarksWithNotes(ctx context.Context, order domain.SortOrder) ([]*domain.Bookmark, error) {
	return s.queryBookmarks(ctx, "get bookmarks with notes",
		`SELECT `+bookmarkColumns+` FROM bookmarks b
		WHERE b.notes IS NOT NULL AND b.notes != ''`+orderClause(order))
}

// HasBookmarksAt reports whether any bookmark range covers v.
func (s *Store) HasBookmarksAt(ctx context.Context, v domain.Verse) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookmarks WHERE start_key <= ? AND end_key >= ?)`,
		v.Key(), v.Key()).Scan(&exists)
	if err != nil {
		return false, storageErr(err, "check bookmarks at verse")
	}
	return exists == 1, nil
}

// expectRow turns a zero-row UPDATE into a not found error.
func expectRow(res sql.Result, op, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err, op)
	}
	if n == 0 {
		return domainerrors.NotFoundf("%s %d not found", entity, id)
	}
	return nil
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// osisBooks lists the OSIS book identifiers in canonical (protestant) order.
// The index + 1 is the book ordinal used for ordering and range arithmetic.
var osisBooks = []string{
	"Gen", "Exod", "Lev", "Num", "Deut", "Josh", "Judg", "Ruth", "1Sam", "2Sam",
	"1Kgs", "2Kgs", "1Chr", "2Chr", "Ezra", "Neh", "Esth", "Job", "Ps", "Prov",
	"Eccl", "Song", "Isa", "Jer", "Lam", "Ezek", "Dan", "Hos", "Joel", "Amos",
	"Obad", "Jonah", "Mic", "Nah", "Hab", "Zeph", "Hag", "Zech", "Mal",
	"Matt", "Mark", "Luke", "John", "Acts", "Rom", "1Cor", "2Cor", "Gal", "Eph",
	"Phil", "Col", "1Thess", "2Thess", "1Tim", "2Tim", "Titus", "Phlm", "Heb", "Jas",
	"1Pet", "2Pet", "1John", "2John", "3John", "Jude", "Rev",
}

var bookOrdinals = func() map[string]int {
	m := make(map[string]int, len(osisBooks))
	for i, b := range osisBooks {
		m[strings.ToLower(b)] = i + 1
	}
	return m
}()

// Books returns the OSIS book identifiers in canonical order.
func Books() []string {
	out := make([]string, len(osisBooks))
	copy(out, osisBooks)
	return out
}

// BookOrdinal returns the 1-based canonical position of an OSIS book id,
// or 0 if the book is unknown. Matching is case-insensitive.
func BookOrdinal(book string) int {
	return bookOrdinals[strings.ToLower(book)]
}

// CanonicalBook returns the OSIS spelling for book, or "" if unknown.
func CanonicalBook(book string) string {
	n := BookOrdinal(book)
	if n == 0 {
		return ""
	}
	return osisBooks[n-1]
}

// Verse addresses a single verse in the corpus.
// Verse 0 addresses the chapter heading.
type Verse struct {
	Book    string `json:"book" validate:"required,osisbook"`
	Chapter int    `json:"chapter" validate:"gte=1,lte=999"`
	Verse   int    `json:"verse" validate:"gte=0,lte=999"`
}

// Key returns a sortable integer for the verse: ordinal, chapter and verse
// packed so that canonical order equals numeric order.
func (v Verse) Key() int64 {
	return int64(BookOrdinal(v.Book))*1_000_000 + int64(v.Chapter)*1_000 + int64(v.Verse)
}

// Valid reports whether the verse names a known book and sane numbers.
func (v Verse) Valid() bool {
	return BookOrdinal(v.Book) > 0 && v.Chapter >= 1 && v.Chapter <= 999 && v.Verse >= 0 && v.Verse <= 999
}

// String renders the verse in OSIS form, e.g. "Gen.1.1".
func (v Verse) String() string {
	book := CanonicalBook(v.Book)
	if book == "" {
		book = v.Book
	}
	return fmt.Sprintf("%s.%d.%d", book, v.Chapter, v.Verse)
}

// ParseVerse parses an OSIS verse reference such as "Gen.1.1".
func ParseVerse(s string) (Verse, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Verse{}, fmt.Errorf("invalid verse reference %q", s)
	}
	book := CanonicalBook(parts[0])
	if book == "" {
		return Verse{}, fmt.Errorf("unknown book %q", parts[0])
	}
	chapter, err := strconv.Atoi(parts[1])
	if err != nil {
		return Verse{}, fmt.Errorf("invalid chapter in %q: %w", s, err)
	}
	verse, err := strconv.Atoi(parts[2])
	if err != nil {
		return Verse{}, fmt.Errorf("invalid verse in %q: %w", s, err)
	}
	v := Verse{Book: book, Chapter: chapter, Verse: verse}
	if !v.Valid() {
		return Verse{}, fmt.Errorf("verse reference out of range %q", s)
	}
	return v, nil
}

// VerseRange is an inclusive span of verses; Start must not sort after End.
type VerseRange struct {
	Start Verse `json:"start"`
	End   Verse `json:"end"`
}

// SingleVerse returns a range covering exactly v.
func SingleVerse(v Verse) VerseRange {
	return VerseRange{Start: v, End: v}
}

// Valid reports whether both ends are valid and ordered.
func (r VerseRange) Valid() bool {
	return r.Start.Valid() && r.End.Valid() && r.Start.Key() <= r.End.Key()
}

// Contains reports whether v falls inside the range.
func (r VerseRange) Contains(v Verse) bool {
	k := v.Key()
	return r.Start.Key() <= k && k <= r.End.Key()
}

// Overlaps reports whether the two ranges share at least one verse.
func (r VerseRange) Overlaps(o VerseRange) bool {
	return r.Start.Key() <= o.End.Key() && o.Start.Key() <= r.End.Key()
}

// String renders "Gen.1.1" for a single verse or "Gen.1.1-Gen.1.3" otherwise.
func (r VerseRange) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return r.Start.String() + "-" + r.End.String()
}

// ParseVerseRange parses "Gen.1.1" or "Gen.1.1-Gen.1.3".
func ParseVerseRange(s string) (VerseRange, error) {
	startStr, endStr, found := strings.Cut(strings.TrimSpace(s), "-")
	start, err := ParseVerse(startStr)
	if err != nil {
		return VerseRange{}, err
	}
	if !found {
		return SingleVerse(start), nil
	}
	end, err := ParseVerse(endStr)
	if err != nil {
		return VerseRange{}, err
	}
	r := VerseRange{Start: start, End: end}
	if !r.Valid() {
		return VerseRange{}, fmt.Errorf("range end precedes start in %q", s)
	}
	return r, nil
}

package catalog

import (
	"slices"
	"strings"
	"time"

	"bookshelf/internal/book"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllCategories is the category filter value that matches every record.
const AllCategories = "전체"

// SortMode selects the ordering of the visible set.
type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortTitle  SortMode = "title"
)

// ParseSortMode maps user input to a SortMode. Unknown values report false.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortNewest:
		return SortNewest, true
	case SortOldest:
		return SortOldest, true
	case SortTitle:
		return SortTitle, true
	}
	return "", false
}

// Query is the search text, category filter and sort mode a visible set is
// derived from.
type Query struct {
	Search   string   `json:"search"`
	Category string   `json:"category"`
	Sort     SortMode `json:"sort"`
}

// DefaultQuery matches everything, newest first.
func DefaultQuery() Query {
	return Query{Category: AllCategories, Sort: SortNewest}
}

// Engine holds the book collection and derives filtered, sorted and
// aggregated views of it. An Engine is not safe for concurrent use; Service
// serializes access to one.
type Engine struct {
	books    []book.Book
	query    Query
	collator *collate.Collator
	version  uint64

	memo struct {
		valid   bool
		version uint64
		query   Query
		books   []book.Book
	}
}

// NewEngine seeds an engine with a copy of seed. Records without a category
// are filed under book.DefaultCategory.
func NewEngine(seed []book.Book) *Engine {
	books := make([]book.Book, len(seed))
	for i, b := range seed {
		b.Category = b.CategoryOrDefault()
		books[i] = b
	}
	return &Engine{
		books:    books,
		query:    DefaultQuery(),
		collator: collate.New(language.Korean),
	}
}

// SetSearchText replaces the active search text.
func (e *Engine) SetSearchText(text string) {
	e.query.Search = text
}

// SetCategoryFilter replaces the active category filter.
func (e *Engine) SetCategoryFilter(label string) {
	e.query.Category = label
}

// SetSortMode replaces the active sort mode.
func (e *Engine) SetSortMode(mode SortMode) {
	e.query.Sort = mode
}

// Query returns the active search, category and sort state.
func (e *Engine) Query() Query {
	return e.query
}

// AddBook puts b at the front of the collection. The id is not checked for
// uniqueness.
func (e *Engine) AddBook(b book.Book) {
	b.Category = b.CategoryOrDefault()
	e.books = slices.Insert(e.books, 0, b)
	e.version++
}

// Len returns the number of records in the collection.
func (e *Engine) Len() int {
	return len(e.books)
}

// Books returns the full collection in insertion order.
func (e *Engine) Books() []book.Book {
	return slices.Clone(e.books)
}

// Find returns the first record with the given id.
func (e *Engine) Find(id string) (book.Book, bool) {
	for _, b := range e.books {
		if b.ID == id {
			return b, true
		}
	}
	return book.Book{}, false
}

// Categories lists AllCategories followed by every distinct label in the
// collection in first-seen order.
func (e *Engine) Categories() []string {
	seen := make(map[string]bool, len(e.books))
	labels := []string{AllCategories}
	for _, b := range e.books {
		if seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		labels = append(labels, b.Category)
	}
	return labels
}

// CountsByCategory counts records per label. AllCategories maps to the
// collection size.
func (e *Engine) CountsByCategory() map[string]int {
	counts := map[string]int{AllCategories: len(e.books)}
	for _, b := range e.books {
		counts[b.Category]++
	}
	return counts
}

// VisibleBooks applies the active query to the collection.
func (e *Engine) VisibleBooks() []book.Book {
	return e.Select(e.query)
}

// Select applies q to the collection without touching the active query.
func (e *Engine) Select(q Query) []book.Book {
	if e.memo.valid && e.memo.version == e.version && e.memo.query == q {
		return slices.Clone(e.memo.books)
	}

	result := e.selectUncached(q)

	e.memo.valid = true
	e.memo.version = e.version
	e.memo.query = q
	e.memo.books = result
	return slices.Clone(result)
}

type sortable struct {
	book book.Book
	read time.Time
}

func (e *Engine) selectUncached(q Query) []book.Book {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	matched := make([]sortable, 0, len(e.books))
	for _, b := range e.books {
		if needle != "" && !b.MatchesText(needle) {
			continue
		}
		if q.Category != AllCategories && b.Category != q.Category {
			continue
		}
		matched = append(matched, sortable{book: b, read: book.ParseReadDate(b.ReadDate)})
	}

	switch q.Sort {
	case SortTitle:
		slices.SortStableFunc(matched, func(a, b sortable) int {
			return e.collator.CompareString(a.book.Title, b.book.Title)
		})
	case SortOldest:
		slices.SortStableFunc(matched, func(a, b sortable) int {
			return a.read.Compare(b.read)
		})
	default:
		slices.SortStableFunc(matched, func(a, b sortable) int {
			return b.read.Compare(a.read)
		})
	}

	out := make([]book.Book, len(matched))
	for i, m := range matched {
		out[i] = m.book
	}
	return out
}

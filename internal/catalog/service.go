package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/openlibrary"

	"github.com/google/uuid"
)

// ErrInvalidBook is returned when a record cannot be added.
var ErrInvalidBook = errors.New("invalid book")

// DefaultCoverTimeout bounds a single cover lookup during AddBook.
const DefaultCoverTimeout = 5 * time.Second

// CategoryCount pairs a category label with the number of records in it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Service exposes an Engine to concurrent callers and handles the I/O
// around adding records.
type Service struct {
	mu     sync.Mutex
	engine *Engine
	repo   Repository
	covers CoverFinder
	newID  func() string
	now    func() time.Time

	coverTimeout time.Duration
}

// NewService wraps engine. repo and covers may be nil.
func NewService(engine *Engine, repo Repository, covers CoverFinder) *Service {
	s := &Service{
		engine: engine,
		repo:   repo,
		covers: covers,
		newID:  uuid.NewString,
		now:    time.Now,

		coverTimeout: DefaultCoverTimeout,
	}
	catalogBooks.Set(float64(engine.Len()))
	return s
}

// LoadService seeds a new engine from src.
func LoadService(ctx context.Context, src Source, repo Repository, covers CoverFinder) (*Service, error) {
	books, err := src.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	return NewService(NewEngine(books), repo, covers), nil
}

// List returns the visible set for q. An empty category means all.
func (s *Service) List(ctx context.Context, q Query) []book.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Select(normalizeQuery(q))
}

// Get returns the record with the given id.
func (s *Service) Get(ctx context.Context, id string) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.engine.Find(id)
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

// Categories returns every category with its record count, AllCategories
// first.
func (s *Service) Categories(ctx context.Context) []CategoryCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	labels := s.engine.Categories()
	counts := s.engine.CountsByCategory()
	out := make([]CategoryCount, len(labels))
	for i, label := range labels {
		out[i] = CategoryCount{Name: label, Count: counts[label]}
	}
	return out
}

// Shelf returns the engine's active query and its visible set.
func (s *Service) Shelf(ctx context.Context) (Query, []book.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Query(), s.engine.VisibleBooks()
}

// UpdateShelf replaces the engine's active query through its setters.
func (s *Service) UpdateShelf(ctx context.Context, q Query) (Query, []book.Book) {
	q = normalizeQuery(q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetSearchText(q.Search)
	s.engine.SetCategoryFilter(q.Category)
	s.engine.SetSortMode(q.Sort)
	return s.engine.Query(), s.engine.VisibleBooks()
}

// AddBook fills in defaults, persists b when a repository is configured and
// prepends it to the collection.
func (s *Service) AddBook(ctx context.Context, b book.Book) (book.Book, error) {
	if strings.TrimSpace(b.Title) == "" {
		return book.Book{}, fmt.Errorf("%w: title is required", ErrInvalidBook)
	}

	if b.ID == "" {
		b.ID = s.newID()
	}
	if b.ReadDate == "" {
		today := s.now()
		b.ReadDate = book.FormatReadDate(time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, time.UTC))
	}
	b.Category = b.CategoryOrDefault()
	if b.BlogCategory == "" {
		b.BlogCategory = b.Category
	}
	b.NormalizeDimensions()

	if b.CoverImage == "" && s.covers != nil {
		b.CoverImage = s.lookupCover(ctx, b)
	}
	if b.CoverImage == "" {
		b.CoverImage = book.DefaultCover
	}
	if b.ThumbnailURL == "" {
		b.ThumbnailURL = b.CoverImage
	}

	// Held across the insert so the in-memory order matches insert order.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo != nil {
		if err := s.repo.Insert(ctx, b); err != nil {
			return book.Book{}, fmt.Errorf("persist book %s: %w", b.ID, err)
		}
	}
	s.engine.AddBook(b)
	catalogBooks.Set(float64(s.engine.Len()))

	booksAdded.Inc()
	return b, nil
}

func (s *Service) lookupCover(ctx context.Context, b book.Book) string {
	ctx, cancel := context.WithTimeout(ctx, s.coverTimeout)
	defer cancel()

	cover, err := s.covers.FindCover(ctx, b.Title, b.Author)
	switch {
	case errors.Is(err, openlibrary.ErrNoCover):
		return ""
	case err != nil:
		log.Printf("cover lookup failed: title=%q error=%v", b.Title, err)
		return ""
	}
	return cover
}

func normalizeQuery(q Query) Query {
	if q.Category == "" {
		q.Category = AllCategories
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	return q
}

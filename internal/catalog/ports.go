package catalog

import (
	"context"

	"bookshelf/internal/book"
)

// Source supplies the collection the engine is seeded with.
type Source interface {
	LoadAll(ctx context.Context) ([]book.Book, error)
}

// Repository persists records added at runtime.
type Repository interface {
	Insert(ctx context.Context, b book.Book) error
}

// CoverFinder looks up a cover image for a book that was added without one.
type CoverFinder interface {
	FindCover(ctx context.Context, title, author string) (string, error)
}

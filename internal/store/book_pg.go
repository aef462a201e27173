package store

import (
	"context"
	"fmt"

	"bookshelf/internal/book"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookPG reads and writes the books table.
type BookPG struct {
	db *pgxpool.Pool
}

func NewBookPG(db *pgxpool.Pool) *BookPG {
	return &BookPG{db: db}
}

const bookColumns = `id, title, author, publisher, category, blog_category, tags, read_date,
	page_count, size_width, size_height, size_depth, weight, isbn, cover_image, content_html, thumbnail_url`

// LoadAll returns every book, most recently added first.
func (r *BookPG) LoadAll(ctx context.Context) ([]book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY seq DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// Insert stores b. Inserting an id twice is an error.
func (r *BookPG) Insert(ctx context.Context, b book.Book) error {
	_, err := r.db.Exec(ctx, insertSQL, insertArgs(b)...)
	if err != nil {
		return fmt.Errorf("insert book %s: %w", b.ID, err)
	}
	return nil
}

// InsertBatch stores books in one round trip, skipping ids that already
// exist. It returns the number of rows written.
func (r *BookPG) InsertBatch(ctx context.Context, books []book.Book) (int, error) {
	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(insertSQL+` ON CONFLICT (id) DO NOTHING`, insertArgs(b)...)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for _, b := range books {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("insert book %s: %w", b.ID, err)
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

const insertSQL = `INSERT INTO books (` + bookColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

func insertArgs(b book.Book) []any {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		b.ID, b.Title, b.Author, b.Publisher, b.Category, b.BlogCategory, tags, b.ReadDate,
		b.PageCount, b.SizeWidth, b.SizeHeight, b.SizeDepth, b.Weight, b.ISBN, b.CoverImage, b.ContentHTML, b.ThumbnailURL,
	}
}

func scanBook(row pgx.Row) (book.Book, error) {
	var b book.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Category, &b.BlogCategory, &b.Tags, &b.ReadDate,
		&b.PageCount, &b.SizeWidth, &b.SizeHeight, &b.SizeDepth, &b.Weight, &b.ISBN, &b.CoverImage, &b.ContentHTML, &b.ThumbnailURL,
	)
	if err != nil {
		return book.Book{}, fmt.Errorf("scan book: %w", err)
	}
	if len(b.Tags) == 0 {
		b.Tags = nil
	}
	return b, nil
}

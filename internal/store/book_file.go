package store

import (
	"context"
	"fmt"
	"os"

	"bookshelf/internal/book"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BookFile reads the static JSON dataset: an array of book records.
type BookFile struct {
	path string
}

func NewBookFile(path string) *BookFile {
	return &BookFile{path: path}
}

// LoadAll decodes the dataset in file order.
func (f *BookFile) LoadAll(ctx context.Context) ([]book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var books []book.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return books, nil
}

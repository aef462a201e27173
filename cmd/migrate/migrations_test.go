package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMigrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")
}

func TestMigrations(t *testing.T) {
	dir := testMigrationsDir(t)

	t.Run("goose parses the directory", func(t *testing.T) {
		migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
		require.NoError(t, err)
		assert.NotEmpty(t, migrations)
	})

	t.Run("every file has up and down", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)

		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
				continue
			}
			b, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Contains(t, string(b), "-- +goose Up", e.Name())
			assert.Contains(t, string(b), "-- +goose Down", e.Name())
		}
	})

	t.Run("books table matches the store columns", func(t *testing.T) {
		b, err := os.ReadFile(filepath.Join(dir, "00001_create_books.sql"))
		require.NoError(t, err)
		sql := string(b)

		assert.Contains(t, sql, "seq           BIGSERIAL PRIMARY KEY")
		assert.Contains(t, sql, "id            TEXT NOT NULL UNIQUE")
		for _, col := range []string{
			"title", "author", "publisher", "category", "blog_category", "tags",
			"read_date", "page_count", "size_width", "size_height", "size_depth",
			"weight", "isbn", "cover_image", "content_html", "thumbnail_url",
		} {
			assert.Contains(t, sql, "\n    "+col+" ", col)
		}
		assert.Contains(t, sql, "DROP TABLE IF EXISTS books")
	})
}

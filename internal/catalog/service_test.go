package catalog

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/openlibrary"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCoverFinder struct {
	mock.Mock
}

func (m *mockCoverFinder) FindCover(ctx context.Context, title, author string) (string, error) {
	args := m.Called(ctx, title, author)
	return args.String(0), args.Error(1)
}

type blockingCoverFinder struct{}

func (blockingCoverFinder) FindCover(ctx context.Context, title, author string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestLoadService(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("seeds engine", func(t *testing.T) {
		src := NewMockSource(ctrl)
		src.EXPECT().LoadAll(gomock.Any()).Return(scenarioBooks(), nil)

		svc, err := LoadService(ctx, src, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, ids(svc.List(ctx, Query{})))
	})

	t.Run("source error", func(t *testing.T) {
		src := NewMockSource(ctrl)
		src.EXPECT().LoadAll(gomock.Any()).Return(nil, errors.New("disk gone"))

		_, err := LoadService(ctx, src, nil, nil)
		assert.ErrorContains(t, err, "disk gone")
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewEngine(shelfBooks()), nil, nil)

	t.Run("zero query means everything newest first", func(t *testing.T) {
		assert.Equal(t, []string{"b", "a", "d", "c", "e"}, ids(svc.List(ctx, Query{})))
	})

	t.Run("does not change the shelf", func(t *testing.T) {
		svc.List(ctx, Query{Category: "소설", Sort: SortTitle})
		q, books := svc.Shelf(ctx)
		assert.Equal(t, DefaultQuery(), q)
		assert.Len(t, books, 5)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewEngine(shelfBooks()), nil, nil)

	b, err := svc.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "라틴어 수업", b.Title)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestService_Categories(t *testing.T) {
	svc := NewService(NewEngine(shelfBooks()), nil, nil)

	got := svc.Categories(context.Background())
	assert.Equal(t, CategoryCount{Name: AllCategories, Count: 5}, got[0])
	assert.Contains(t, got, CategoryCount{Name: "소설", Count: 2})
	assert.Contains(t, got, CategoryCount{Name: book.DefaultCategory, Count: 1})
}

func TestService_UpdateShelf(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewEngine(shelfBooks()), nil, nil)

	q, books := svc.UpdateShelf(ctx, Query{Category: "소설", Sort: SortTitle})
	assert.Equal(t, Query{Category: "소설", Sort: SortTitle}, q)
	assert.Equal(t, []string{"b", "c"}, ids(books))

	q, books = svc.Shelf(ctx)
	assert.Equal(t, "소설", q.Category)
	assert.Len(t, books, 2)

	q, _ = svc.UpdateShelf(ctx, Query{})
	assert.Equal(t, DefaultQuery(), q)
}

func TestService_AddBook(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults", func(t *testing.T) {
		svc := NewService(NewEngine(scenarioBooks()), nil, nil)
		svc.newID = func() string { return "generated" }
		svc.now = func() time.Time { return time.Date(2026, 3, 9, 23, 40, 0, 0, time.Local) }

		w, h := 210.0, 148.0
		got, err := svc.AddBook(ctx, book.Book{Title: "Cherry", SizeWidth: &w, SizeHeight: &h})
		require.NoError(t, err)

		assert.Equal(t, "generated", got.ID)
		assert.Equal(t, book.DefaultCategory, got.Category)
		assert.Equal(t, book.DefaultCategory, got.BlogCategory)
		assert.Equal(t, book.DefaultCover, got.CoverImage)
		assert.Equal(t, book.DefaultCover, got.ThumbnailURL)
		assert.Equal(t, 148.0, *got.SizeWidth)
		assert.Equal(t, "2026. 3. 9. 12:00", got.ReadDate)

		assert.Equal(t, "generated", svc.List(ctx, Query{Sort: SortNewest})[0].ID)
	})

	t.Run("keeps supplied read date", func(t *testing.T) {
		svc := NewService(NewEngine(nil), nil, nil)
		got, err := svc.AddBook(ctx, book.Book{Title: "A", ReadDate: "2020. 2. 2. 9:15"})
		require.NoError(t, err)
		assert.Equal(t, "2020. 2. 2. 9:15", got.ReadDate)
	})

	t.Run("generated ids are unique", func(t *testing.T) {
		svc := NewService(NewEngine(nil), nil, nil)
		a, err := svc.AddBook(ctx, book.Book{Title: "A"})
		require.NoError(t, err)
		b, err := svc.AddBook(ctx, book.Book{Title: "B"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("keeps caller id", func(t *testing.T) {
		svc := NewService(NewEngine(nil), nil, nil)
		got, err := svc.AddBook(ctx, book.Book{ID: "mine", Title: "A"})
		require.NoError(t, err)
		assert.Equal(t, "mine", got.ID)
	})

	t.Run("rejects blank title", func(t *testing.T) {
		svc := NewService(NewEngine(nil), nil, nil)
		_, err := svc.AddBook(ctx, book.Book{Title: "  "})
		assert.ErrorIs(t, err, ErrInvalidBook)
		assert.Empty(t, svc.List(ctx, Query{}))
	})

	t.Run("persists before prepending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b book.Book) error {
			assert.Equal(t, "Cherry", b.Title)
			assert.NotEmpty(t, b.ID)
			return nil
		})

		svc := NewService(NewEngine(scenarioBooks()), repo, nil)
		_, err := svc.AddBook(ctx, book.Book{Title: "Cherry"})
		require.NoError(t, err)
		assert.Len(t, svc.List(ctx, Query{}), 3)
	})

	t.Run("persist failure leaves collection untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		svc := NewService(NewEngine(scenarioBooks()), repo, nil)
		_, err := svc.AddBook(ctx, book.Book{Title: "Cherry"})
		assert.ErrorContains(t, err, "db down")
		assert.Len(t, svc.List(ctx, Query{}), 2)
	})

	t.Run("looks up missing cover", func(t *testing.T) {
		covers := new(mockCoverFinder)
		covers.On("FindCover", mock.Anything, "숨", "테드 창").Return("https://covers.openlibrary.org/b/id/1-L.jpg", nil)

		svc := NewService(NewEngine(nil), nil, covers)
		got, err := svc.AddBook(ctx, book.Book{Title: "숨", Author: "테드 창"})
		require.NoError(t, err)
		assert.Equal(t, "https://covers.openlibrary.org/b/id/1-L.jpg", got.CoverImage)
		assert.Equal(t, got.CoverImage, got.ThumbnailURL)
		covers.AssertExpectations(t)
	})

	t.Run("cover lookup failure falls back", func(t *testing.T) {
		covers := new(mockCoverFinder)
		covers.On("FindCover", mock.Anything, "숨", "").Return("", errors.New("timeout"))

		svc := NewService(NewEngine(nil), nil, covers)
		got, err := svc.AddBook(ctx, book.Book{Title: "숨"})
		require.NoError(t, err)
		assert.Equal(t, book.DefaultCover, got.CoverImage)
	})

	t.Run("slow cover lookup is cut short", func(t *testing.T) {
		svc := NewService(NewEngine(nil), nil, blockingCoverFinder{})
		svc.coverTimeout = 20 * time.Millisecond

		start := time.Now()
		got, err := svc.AddBook(ctx, book.Book{Title: "숨"})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, book.DefaultCover, got.CoverImage)
	})

	t.Run("no cover is not logged", func(t *testing.T) {
		var buf bytes.Buffer
		log.SetOutput(&buf)
		defer log.SetOutput(os.Stderr)

		covers := new(mockCoverFinder)
		covers.On("FindCover", mock.Anything, "숨", "").Return("", openlibrary.ErrNoCover)

		svc := NewService(NewEngine(nil), nil, covers)
		got, err := svc.AddBook(ctx, book.Book{Title: "숨"})
		require.NoError(t, err)
		assert.Equal(t, book.DefaultCover, got.CoverImage)
		assert.NotContains(t, buf.String(), "cover lookup failed")
	})

	t.Run("supplied cover skips lookup", func(t *testing.T) {
		covers := new(mockCoverFinder)
		svc := NewService(NewEngine(nil), nil, covers)
		_, err := svc.AddBook(ctx, book.Book{Title: "숨", CoverImage: "/book_covers/cover_007.jpg"})
		require.NoError(t, err)
		covers.AssertNotCalled(t, "FindCover", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewEngine(shelfBooks()), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.AddBook(ctx, book.Book{Title: "concurrent"})
		}()
		go func() {
			defer wg.Done()
			svc.List(ctx, Query{Search: "con", Sort: SortTitle})
			svc.Categories(ctx)
		}()
	}
	wg.Wait()

	assert.Len(t, svc.List(ctx, Query{}), 25)
}

func TestService_ConcurrentAddsKeepInsertOrder(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var inserted []string
	repo := NewMockRepository(ctrl)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(20).DoAndReturn(func(_ context.Context, b book.Book) error {
		inserted = append(inserted, b.ID)
		return nil
	})

	svc := NewService(NewEngine(nil), repo, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddBook(ctx, book.Book{Title: "same", ReadDate: "2024. 1. 1. 10:00"})
		}()
	}
	wg.Wait()

	slices.Reverse(inserted)
	assert.Equal(t, inserted, ids(svc.List(ctx, Query{})))
}

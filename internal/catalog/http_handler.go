package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
)

// CreateBookRequest is the body of POST /v1/books.
type CreateBookRequest struct {
	ID         string   `json:"id"`
	Title      string   `json:"title" validate:"required,max=300"`
	Author     string   `json:"author" validate:"required,max=200"`
	Publisher  string   `json:"publisher" validate:"max=200"`
	ReadDate   string   `json:"readDate" validate:"omitempty,readdate"`
	Category   string   `json:"category" validate:"max=100"`
	Tags       string   `json:"tags"`
	CoverImage string   `json:"coverImage" validate:"omitempty,cover"`
	Content    string   `json:"content"`
	PageCount  *int     `json:"pageCount" validate:"omitempty,gt=0,lte=20000"`
	SizeWidth  *float64 `json:"sizeWidth" validate:"omitempty,gt=0"`
	SizeHeight *float64 `json:"sizeHeight" validate:"omitempty,gt=0"`
	SizeDepth  *float64 `json:"sizeDepth" validate:"omitempty,gt=0"`
	Weight     *float64 `json:"weight" validate:"omitempty,gt=0"`
	ISBN       string   `json:"isbn"`
}

// Book converts the request into a record. It expects a validated request.
func (r CreateBookRequest) Book() book.Book {
	readDate, _ := book.ReadDateFromInput(r.ReadDate)
	return book.Book{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		Publisher:   r.Publisher,
		ReadDate:    readDate,
		Category:    r.Category,
		Tags:        book.SplitTags(r.Tags),
		CoverImage:  r.CoverImage,
		ContentHTML: r.Content,
		PageCount:   r.PageCount,
		SizeWidth:   r.SizeWidth,
		SizeHeight:  r.SizeHeight,
		SizeDepth:   r.SizeDepth,
		Weight:      r.Weight,
		ISBN:        r.ISBN,
	}
}

// BookView is a record as rendered on the shelf.
type BookView struct {
	book.Book
	SpineColor     string `json:"spineColor"`
	SpineDarkColor string `json:"spineDarkColor"`
}

func viewOf(b book.Book) BookView {
	color := book.SpineColor(b.Title)
	return BookView{Book: b, SpineColor: color, SpineDarkColor: book.DarkerShade(color)}
}

func viewsOf(books []book.Book) []BookView {
	out := make([]BookView, len(books))
	for i, b := range books {
		out[i] = viewOf(b)
	}
	return out
}

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Register mounts the catalog routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/books", h.List)
	mux.HandleFunc("POST /v1/books", h.Create)
	mux.HandleFunc("GET /v1/books/{id}", h.Get)
	mux.HandleFunc("GET /v1/categories", h.Categories)
	mux.HandleFunc("GET /v1/shelf", h.GetShelf)
	mux.HandleFunc("PUT /v1/shelf", h.UpdateShelf)
}

// List handles GET /v1/books
// @Summary List visible books
// @Tags books
// @Produce json
// @Param q query string false "Search text (title, author, tags)"
// @Param category query string false "Category label" default(전체)
// @Param sort query string false "newest, oldest or title" default(newest)
// @Param cursor query string false "Opaque page cursor"
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := Query{
		Search:   query.Get("q"),
		Category: query.Get("category"),
		Sort:     SortNewest,
	}
	if s := query.Get("sort"); s != "" {
		mode, ok := ParseSortMode(s)
		if !ok {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "sort must be newest, oldest or title", nil)
			return
		}
		q.Sort = mode
	}

	cur, err := DecodeCursor(query.Get("cursor"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid cursor", nil)
		return
	}

	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	visible := h.svc.List(r.Context(), q)
	page, next := Page(visible, cur, pageSize)

	httpx.JSONSuccess(w, r, viewsOf(page), map[string]any{
		"page_size":   pageSize,
		"total":       len(visible),
		"next_cursor": EncodeCursor(next),
	})
}

// Get handles GET /v1/books/{id}
// @Summary Get a book by id
// @Tags books
// @Produce json
// @Param id path string true "Book id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "id is required", nil)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, viewOf(b), nil)
}

// Create handles POST /v1/books
// @Summary Add a book to the shelf
// @Tags books
// @Accept json
// @Produce json
// @Param book body CreateBookRequest true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	created, err := h.svc.AddBook(r.Context(), req.Book())
	if err != nil {
		if errors.Is(err, ErrInvalidBook) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		log.Printf("add book failed: request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONCreated(w, r, viewOf(created))
}

// Categories handles GET /v1/categories
// @Summary List categories with counts
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/categories [get]
func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.svc.Categories(r.Context()), nil)
}

type shelfResponse struct {
	Query Query      `json:"query"`
	Books []BookView `json:"books"`
}

// GetShelf handles GET /v1/shelf
func (h *HTTPHandler) GetShelf(w http.ResponseWriter, r *http.Request) {
	q, books := h.svc.Shelf(r.Context())
	httpx.JSONSuccess(w, r, shelfResponse{Query: q, Books: viewsOf(books)}, nil)
}

// UpdateShelf handles PUT /v1/shelf
func (h *HTTPHandler) UpdateShelf(w http.ResponseWriter, r *http.Request) {
	var q Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if q.Sort != "" {
		mode, ok := ParseSortMode(string(q.Sort))
		if !ok {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "sort must be newest, oldest or title", nil)
			return
		}
		q.Sort = mode
	}

	applied, books := h.svc.UpdateShelf(r.Context(), q)
	httpx.JSONSuccess(w, r, shelfResponse{Query: applied, Books: viewsOf(books)}, nil)
}

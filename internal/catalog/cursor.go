package catalog

import (
	"encoding/base64"
	"encoding/json"

	"bookshelf/internal/book"
)

// CursorData represents the data encoded in a cursor
type CursorData struct {
	AfterID string `json:"after_id,omitempty"`
	// Index is the position of AfterID in the list the cursor was cut from.
	Index int `json:"index,omitempty"`
}

// EncodeCursor encodes cursor data to a base64 string
func EncodeCursor(data CursorData) string {
	if data.AfterID == "" {
		return ""
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string to CursorData
func DecodeCursor(cursor string) (CursorData, error) {
	if cursor == "" {
		return CursorData{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return CursorData{}, err
	}

	var data CursorData
	err = json.Unmarshal(decoded, &data)
	return data, err
}

// Page cuts at most limit books out of books, starting right after the
// record the cursor points at. The cursor's Index is trusted when the id
// there still matches, so duplicate ids page correctly. Otherwise the id is
// searched from Index onward, then from the start. An AfterID that is not
// present starts from the beginning. The returned cursor is empty on the
// last page.
func Page(books []book.Book, cur CursorData, limit int) ([]book.Book, CursorData) {
	start := 0
	if cur.AfterID != "" {
		if at := locate(books, cur); at >= 0 {
			start = at + 1
		}
	}
	end := min(start+limit, len(books))
	page := books[start:end]
	if end >= len(books) || len(page) == 0 {
		return page, CursorData{}
	}
	return page, CursorData{AfterID: page[len(page)-1].ID, Index: end - 1}
}

func locate(books []book.Book, cur CursorData) int {
	from := max(cur.Index, 0)
	for i := from; i < len(books); i++ {
		if books[i].ID == cur.AfterID {
			return i
		}
	}
	for i := 0; i < min(from, len(books)); i++ {
		if books[i].ID == cur.AfterID {
			return i
		}
	}
	return -1
}

package book

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

const (
	// DefaultCategory is the catch-all label for records without a category.
	DefaultCategory = "기타"
	// DefaultCover is used when a record is created without a cover image.
	DefaultCover = "/book_covers/cover_000.jpg"
)

// Book represents one entry of the reading log.
type Book struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Publisher    string   `json:"publisher"`
	Category     string   `json:"category"`
	BlogCategory string   `json:"blogCategory,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ReadDate     string   `json:"readDate"`
	PageCount    *int     `json:"pageCount,omitempty"`
	SizeWidth    *float64 `json:"sizeWidth,omitempty"`
	SizeHeight   *float64 `json:"sizeHeight,omitempty"`
	SizeDepth    *float64 `json:"sizeDepth,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	ISBN         string   `json:"isbn,omitempty"`
	CoverImage   string   `json:"coverImage"`
	ContentHTML  string   `json:"contentHtml,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
}

// CategoryOrDefault returns the record's category, or DefaultCategory when
// the category is blank.
func (b Book) CategoryOrDefault() string {
	if strings.TrimSpace(b.Category) == "" {
		return DefaultCategory
	}
	return b.Category
}

// MatchesText reports whether the already lowercased needle occurs in the
// title, the author or any tag.
func (b Book) MatchesText(needle string) bool {
	if strings.Contains(strings.ToLower(b.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Author), needle) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// SplitTags turns a comma separated tag string into a tag list, trimming
// each entry and dropping empties.
func SplitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeDimensions swaps width and height when the width is the larger
// one. It reports whether a swap happened.
func (b *Book) NormalizeDimensions() bool {
	if b.SizeWidth == nil || b.SizeHeight == nil {
		return false
	}
	if *b.SizeWidth <= *b.SizeHeight {
		return false
	}
	b.SizeWidth, b.SizeHeight = b.SizeHeight, b.SizeWidth
	return true
}

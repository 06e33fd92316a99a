package services

import "math"

// Default pagination bounds for catalog listings.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Page is the envelope returned by all paginated catalog listings.
type Page struct {
	CurrentPage int         `json:"current_page"`
	TotalItems  int64       `json:"total_items"`
	TotalPages  int         `json:"total_pages"`
	Items       interface{} `json:"items"`
}

// NewPage assembles a pagination envelope for one result page.
func NewPage(page, perPage int, total int64, items interface{}) *Page {
	return &Page{
		CurrentPage: page,
		TotalItems:  total,
		TotalPages:  int(math.Ceil(float64(total) / float64(perPage))),
		Items:       items,
	}
}

// NormalizePageParams clamps raw pagination parameters to sane bounds.
func NormalizePageParams(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

package pagination

// Page represents an offset-based page request. Callers pass whatever the
// query string contained; Normalize clamps it to sane bounds.
type Page struct {
	Number  int
	PerPage int
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Normalize clamps the page number and size to valid bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Meta describes a page of results for the response envelope.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds response metadata from a normalized page and a total count.
func NewMeta(p Page, total int) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.PerPage - 1) / p.PerPage
	}
	return Meta{
		Page:       p.Number,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

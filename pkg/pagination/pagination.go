package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds page parameters read from the query string.
type Params struct {
	Page    int
	PerPage int
}

// FromRequest reads page and per_page, ignoring malformed values and capping
// per_page at MaxPerPage.
func FromRequest(r *http.Request) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		p.PerPage = min(v, MaxPerPage)
	}
	return p
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages returns the number of pages needed for total rows.
func (p Params) TotalPages(total int) int {
	if p.PerPage <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}

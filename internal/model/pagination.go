package model

import "math"

// Pagination is passed as a parameter to limit the number of events returned.
type Pagination struct {
	Limit  int
	Offset int
}

// NewPagination returns the window for page (zero based) of perPage items. A page
// whose offset would not fit in an int starts past any history instead.
func NewPagination(perPage, page int) *Pagination {
	if perPage < 0 {
		perPage = 0
	}

	if page < 0 {
		page = 0
	}

	offset := page * perPage
	if perPage > 0 && page > math.MaxInt/perPage {
		offset = math.MaxInt
	}

	return &Pagination{
		Limit:  perPage,
		Offset: offset,
	}
}

// Bounds returns the [start, end) window of a slice of length n. A zero Limit selects everything
// after Offset.
func (p *Pagination) Bounds(n int) (int, int) {
	start := p.Offset
	switch {
	case start < 0:
		start = 0
	case start > n:
		start = n
	}

	end := n
	if p.Limit > 0 && p.Limit < n-start {
		end = start + p.Limit
	}

	return start, end
}

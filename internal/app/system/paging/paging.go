// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows returned when the client does
// not ask for a limit.
const DefaultPageSize = 20

// MaxPageSize caps the per-request limit so a client cannot pull an
// entire collection in one call.
const MaxPageSize = 100

// Params is a parsed page/limit pair. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Parse extracts "page" and "limit" from the query string, applying
// defaults and clamping. Invalid or missing values fall back rather
// than erroring; a list endpoint should never 400 over pagination.
func Parse(r *http.Request) Params {
	p := Params{Page: 1, Limit: DefaultPageSize}

	if s := query.Get(r, "page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Limit = n
			if p.Limit > MaxPageSize {
				p.Limit = MaxPageSize
			}
		}
	}
	return p
}

// Skip returns the number of documents to skip for Mongo Find().SetSkip().
func (p Params) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Meta describes a page of results for the JSON response envelope.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalReports int64 `json:"totalReports"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// BuildMeta computes the envelope for a page that returned shown rows
// out of total matching documents. HasNext compares the absolute
// position of the last shown row against the total, so an
// over-the-end page reports HasNext false even though it shows
// nothing.
func BuildMeta(p Params, shown int, total int64) Meta {
	totalPages := int(total) / p.Limit
	if int(total)%p.Limit != 0 {
		totalPages++
	}
	return Meta{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalReports: total,
		HasNext:      p.Skip()+int64(shown) < total,
		HasPrev:      p.Page > 1,
	}
}

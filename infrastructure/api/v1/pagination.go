package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
)

// List endpoints serve twenty rows per page unless the client asks for more.
// Requests above the maximum are clamped, not rejected.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination is the page window requested through the page and page_size
// query parameters.
type Pagination struct {
	page int
	size int
}

// ParsePagination reads the page window from the request query string.
// Missing or malformed values fall back to page 1 with the default size.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{page: 1, size: defaultPageSize}
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n >= 1 {
		p.page = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && n >= 1 {
		p.size = min(n, maxPageSize)
	}
	return p
}

// Options translates the window into storage options for list queries.
func (p Pagination) Options() []storage.Option {
	return storage.WithPagination(p.size, (p.page-1)*p.size)
}

// Limit is the number of rows in the requested page.
func (p Pagination) Limit() int {
	return p.size
}

// Offset is the number of rows preceding the requested page.
func (p Pagination) Offset() int {
	return (p.page - 1) * p.size
}

func (p Pagination) pages(total int64) int {
	if p.size <= 0 {
		return 0
	}
	return int((total + int64(p.size) - 1) / int64(p.size))
}

// PaginationMeta builds the meta object for a paginated list response.
func PaginationMeta(p Pagination, total int64) *jsonapi.Meta {
	return &jsonapi.Meta{
		"page":        p.page,
		"page_size":   p.size,
		"total_count": total,
		"total_pages": p.pages(total),
	}
}

// PaginationLinks builds the self, first, last, prev, and next links for a
// paginated list. Prev and next are omitted at the edges of the range.
func PaginationLinks(r *http.Request, p Pagination, total int64) *jsonapi.Links {
	href := func(page int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(p.size))
		return fmt.Sprintf("%s?%s", r.URL.Path, q.Encode())
	}

	pages := p.pages(total)
	links := jsonapi.Links{
		Self:  href(p.page),
		First: href(1),
	}
	if pages > 0 {
		links.Last = href(pages)
	}
	if p.page > 1 {
		links.Prev = href(p.page - 1)
	}
	if p.page < pages {
		links.Next = href(p.page + 1)
	}
	return &links
}

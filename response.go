package datatables

import "context"

// Page is one page of rows as returned by a page source.
//
// Fields:
//   - Items: The rows of the page.
//   - Total: Number of rows matching the query across all pages.
//   - Pages: Number of pages at the requested size.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// EmptyPage returns the page loaders degrade to when a fetch fails.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// NewPage builds a page and derives the page count from total and size.
func NewPage[T any](items []T, total int64, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Pages: PageCount(total, size)}
}

// PageCount returns how many pages of size rows hold total rows.
func PageCount(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// IsEmpty reports whether the page has no rows.
func (p Page[T]) IsEmpty() bool {
	return len(p.Items) == 0
}

// PageSource loads pages of T for a set of list parameters.
type PageSource[T Entity] interface {
	ListPage(ctx context.Context, params ListParams) (Page[T], error)
}

// Getter loads a single entity by id.
type Getter[T Entity] interface {
	Get(ctx context.Context, id string) (T, error)
}

// Deleter removes entities by id and reports how many were removed. It
// returns ErrNotFound when ids were given and none of them existed.
type Deleter interface {
	Delete(ctx context.Context, ids ...string) (int, error)
}

// Store is a page source that can also load and remove single entities.
type Store[T Entity] interface {
	PageSource[T]
	Getter[T]
	Deleter
}

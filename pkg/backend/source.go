package backend

import (
	"context"
	"fmt"
	"net/url"

	datatables "github.com/ZihxS/gorm-admin-datatables"
)

// Source loads pages of T from a backend collection.
//
// The collection at path answers:
//   - GET path?page&size&search&sortBy&sortOrder&filter[x] with {items,total,pages}
//   - GET path/{id} with one item
//   - DELETE path/{id}
type Source[T datatables.Entity] struct {
	client *Client
	path   string
}

// NewSource returns a source for the collection at path.
func NewSource[T datatables.Entity](client *Client, path string) *Source[T] {
	return &Source[T]{client: client, path: path}
}

// ListPage fetches the page selected by params. On failure the returned page
// is empty.
func (s *Source[T]) ListPage(ctx context.Context, params datatables.ListParams) (datatables.Page[T], error) {
	var page datatables.Page[T]
	if err := s.client.GetJSON(ctx, s.path, params.Values(), &page); err != nil {
		return datatables.EmptyPage[T](), fmt.Errorf("list %s: %w", s.path, err)
	}

	if page.Items == nil {
		page.Items = []T{}
	}
	if page.Pages == 0 {
		page.Pages = datatables.PageCount(page.Total, params.Size)
	}
	return page, nil
}

// Get fetches the item with id.
func (s *Source[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if err := s.client.GetJSON(ctx, s.itemPath(id), nil, &item); err != nil {
		return item, fmt.Errorf("get %s: %w", id, err)
	}
	return item, nil
}

// Delete removes the items with ids one by one and returns how many were
// removed. Missing items are skipped; datatables.ErrNotFound is returned only
// when none of them exist. On failure the count covers the items removed
// before it.
func (s *Source[T]) Delete(ctx context.Context, ids ...string) (int, error) {
	deleted := 0
	for _, id := range ids {
		err := s.client.Delete(ctx, s.itemPath(id))
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("delete %s: %w", id, err)
		}
		deleted++
	}
	if len(ids) > 0 && deleted == 0 {
		return 0, datatables.ErrNotFound
	}
	return deleted, nil
}

func (s *Source[T]) itemPath(id string) string {
	return s.path + "/" + url.PathEscape(id)
}

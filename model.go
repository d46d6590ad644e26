package datatables

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by sources when no entity matches an id.
var ErrNotFound = errors.New("entity not found")

// Source loads pages of T from a database through gorm.
//
// It is configured fluently: which columns the search term matches, which
// keys may be sorted on, which relations are preloaded and which custom
// filters are applied to every query.
type Source[T Entity] struct {
	tx            *gorm.DB
	primaryKey    string
	searchColumns []string
	sortColumns   map[string]string
	filterColumns map[string]string
	relations     []string
	filters       []func(*gorm.DB) *gorm.DB
	defaultSort   *SortState
}

// NewSource returns a source reading T through tx.
func NewSource[T Entity](tx *gorm.DB) *Source[T] {
	return &Source[T]{
		tx:            tx,
		primaryKey:    "id",
		sortColumns:   make(map[string]string),
		filterColumns: make(map[string]string),
	}
}

// NewSourceFor returns a source whose sortable keys are the sortable
// descriptors of config.
func NewSourceFor[T Entity](tx *gorm.DB, config DataTableConfig[T]) *Source[T] {
	return NewSource[T](tx).Sortable(config.SortableKeys()...)
}

// PrimaryKey sets the id column used by Get and Delete. Defaults to "id".
func (s *Source[T]) PrimaryKey(column string) *Source[T] {
	s.primaryKey = column
	return s
}

// Search sets the columns the search term is matched against with LIKE.
func (s *Source[T]) Search(columns ...string) *Source[T] {
	s.searchColumns = append(s.searchColumns, columns...)
	return s
}

// Sortable allows sorting on keys, each mapped to the column of the same
// name.
func (s *Source[T]) Sortable(keys ...string) *Source[T] {
	for _, key := range keys {
		s.sortColumns[key] = key
	}
	return s
}

// SortColumn allows sorting on key using column.
func (s *Source[T]) SortColumn(key, column string) *Source[T] {
	s.sortColumns[key] = column
	return s
}

// Filterable allows equality filters on keys, each mapped to the column of
// the same name. Filters on other keys are ignored.
func (s *Source[T]) Filterable(keys ...string) *Source[T] {
	for _, key := range keys {
		s.filterColumns[key] = key
	}
	return s
}

// With preloads the given relations on every page.
func (s *Source[T]) With(relations ...string) *Source[T] {
	s.relations = append(s.relations, relations...)
	return s
}

// Filter adds a scope applied to every query of the source.
func (s *Source[T]) Filter(filterFunc func(*gorm.DB) *gorm.DB) *Source[T] {
	s.filters = append(s.filters, filterFunc)
	return s
}

// DefaultSort sets the order used when the parameters carry no allowed sort
// key.
func (s *Source[T]) DefaultSort(key string, order SortOrder) *Source[T] {
	s.defaultSort = &SortState{SortBy: key, SortOrder: normalizeOrder(order)}
	if _, ok := s.sortColumns[key]; !ok {
		s.sortColumns[key] = key
	}
	return s
}

// Validate checks that the source can run queries.
func (s *Source[T]) Validate() error {
	if s.tx == nil {
		return errors.New("no tx provided")
	}
	if s.primaryKey == "" {
		return errors.New("primary key is required")
	}
	return nil
}

// ListPage returns the page of T selected by params. Total counts every row
// matching the filters and search term, not just the page.
func (s *Source[T]) ListPage(ctx context.Context, params ListParams) (Page[T], error) {
	if err := s.Validate(); err != nil {
		return EmptyPage[T](), err
	}

	filtered := s.buildFilteredQuery(ctx, params)

	total, err := s.getCount(filtered)
	if err != nil {
		return EmptyPage[T](), fmt.Errorf("count: %w", err)
	}

	if params.Size < 1 {
		params.Size = DefaultPageSize
	}

	query := s.applyRelations(filtered)
	query = s.applyOrder(query, params)
	query = s.applyPagination(query, params)

	items, err := s.executeQuery(query)
	if err != nil {
		return EmptyPage[T](), fmt.Errorf("list: %w", err)
	}

	return NewPage(items, total, params.Size), nil
}

// Get returns the entity with id, or ErrNotFound.
func (s *Source[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if err := s.Validate(); err != nil {
		return item, err
	}

	query := s.applyRelations(s.tx.WithContext(ctx).Model(new(T)))
	err := query.Where(clause.Eq{Column: clause.Column{Name: s.primaryKey}, Value: id}).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("get %s: %w", id, err)
	}
	return item, nil
}

// Delete removes the entities with the given ids and returns the number of
// deleted rows. It returns ErrNotFound when none of them exist.
func (s *Source[T]) Delete(ctx context.Context, ids ...string) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	result := s.tx.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: s.primaryKey}, Values: values}).
		Delete(new(T))
	if result.Error != nil {
		return 0, fmt.Errorf("delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return int(result.RowsAffected), nil
}

package datatables

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// buildBaseQuery returns the query every page starts from: the model of T
// with the custom filters and the allowed equality filters applied.
func (s *Source[T]) buildBaseQuery(ctx context.Context, params ListParams) *gorm.DB {
	query := s.tx.WithContext(ctx).Model(new(T))
	query = s.applyFilters(query)
	query = s.applyParamFilters(query, params.Filters)
	return query
}

// buildFilteredQuery applies the search term to the base query and returns a
// session that can be branched into the count and the page query.
func (s *Source[T]) buildFilteredQuery(ctx context.Context, params ListParams) *gorm.DB {
	query := s.buildBaseQuery(ctx, params)
	query = s.applySearch(query, params.Search)
	return query.Session(&gorm.Session{})
}

// applyFilters applies the scopes registered with Filter.
func (s *Source[T]) applyFilters(query *gorm.DB) *gorm.DB {
	for _, filter := range s.filters {
		query = filter(query)
	}
	return query
}

// applyParamFilters applies filter[key]=value pairs whose key was registered
// with Filterable. Keys are applied in sorted order so the SQL is stable.
func (s *Source[T]) applyParamFilters(query *gorm.DB, filters map[string]string) *gorm.DB {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		if _, ok := s.filterColumns[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		query = query.Where(clause.Eq{
			Column: clause.Column{Name: s.filterColumns[key]},
			Value:  filters[key],
		})
	}
	return query
}

// applyRelations preloads the relations registered with With.
func (s *Source[T]) applyRelations(query *gorm.DB) *gorm.DB {
	for _, relation := range s.relations {
		query = query.Preload(relation)
	}
	return query
}

// applySearch matches the search term against every search column with
// LIKE, joined with OR. An empty term or no search columns leaves the query
// unmodified.
func (s *Source[T]) applySearch(query *gorm.DB, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(s.searchColumns) == 0 {
		return query
	}

	conditions := make([]clause.Expression, 0, len(s.searchColumns))
	for _, column := range s.searchColumns {
		conditions = append(conditions, clause.Like{
			Column: clause.Column{Name: column},
			Value:  "%" + term + "%",
		})
	}

	// A one-element OR group would be joined to the previous condition with
	// OR, so a single column is added as a plain condition.
	if len(conditions) == 1 {
		return query.Where(conditions[0])
	}
	return query.Where(clause.Or(conditions...))
}

// applyOrder orders by the requested key when it is sortable, otherwise by
// the default sort if one is set.
func (s *Source[T]) applyOrder(query *gorm.DB, params ListParams) *gorm.DB {
	state := params.Sort()
	column, ok := s.sortColumns[state.SortBy]
	if !ok || state.SortBy == "" {
		if s.defaultSort == nil {
			return query
		}
		state = *s.defaultSort
		column = s.sortColumns[state.SortBy]
	}
	if column == "" {
		return query
	}

	return query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   normalizeOrder(state.SortOrder) == SortDesc,
	})
}

// applyPagination limits the query to the requested page.
func (s *Source[T]) applyPagination(query *gorm.DB, params ListParams) *gorm.DB {
	return query.Offset(params.Offset()).Limit(params.Size)
}

// getCount returns the number of rows matched by query.
func (s *Source[T]) getCount(query *gorm.DB) (int64, error) {
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// executeQuery runs query and scans the rows into T.
func (s *Source[T]) executeQuery(query *gorm.DB) ([]T, error) {
	var items []T
	err := query.Find(&items).Error
	return items, err
}

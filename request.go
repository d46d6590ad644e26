package datatables

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	qs "github.com/derekstavis/go-qs"
)

// ListParams are the list page parameters reflected from the URL query
// string.
//
// Fields:
//   - Page: 1-based page number.
//   - Size: Rows per page, capped at MaxPageSize.
//   - Search: Free text search term.
//   - SortBy: Key of the sort column; empty means the source default.
//   - SortOrder: Direction of SortBy.
//   - Filters: Equality filters from filter[field]=value pairs.
type ListParams struct {
	Page      int
	Size      int
	Search    string
	SortBy    string
	SortOrder SortOrder
	Filters   map[string]string
}

// DefaultListParams returns the parameters used when the query string is
// empty.
func DefaultListParams() ListParams {
	return ListParams{
		Page:      DefaultPage,
		Size:      DefaultPageSize,
		SortOrder: SortAsc,
	}
}

// ParseListParams parses list parameters from the request query string.
//
// Missing or invalid numbers fall back to their defaults, the page size is
// capped at MaxPageSize and unknown sort orders fall back to ascending.
func ParseListParams(r *http.Request) (ListParams, error) {
	return ParseListValues(r.URL.Query())
}

// ParseListValues parses list parameters from decoded query or form values.
//
// When the nested keys cannot be decoded the error is returned together with
// the parameters read from the flat keys; filters are dropped in that case.
func ParseListValues(query url.Values) (ListParams, error) {
	params := DefaultListParams()

	raw := query.Encode()
	if raw == "" {
		return params, nil
	}
	values, err := qs.Unmarshal(raw)
	if err != nil {
		values = make(map[string]any, len(query))
		for key := range query {
			values[key] = query.Get(key)
		}
		err = fmt.Errorf("invalid query string: %w", err)
	}

	if page, ok := intParam(values, paramPage); ok && page > 0 {
		params.Page = page
	}
	if size, ok := intParam(values, paramSize); ok && size > 0 {
		params.Size = min(size, MaxPageSize)
	}
	params.Search = strings.TrimSpace(stringParam(values, paramSearch))
	params.SortBy = strings.TrimSpace(stringParam(values, paramSortBy))
	params.SortOrder = normalizeOrder(SortOrder(stringParam(values, paramSortOrder)))

	if filters, ok := values[paramFilter].(map[string]any); ok {
		for k, v := range filters {
			s, ok := v.(string)
			if !ok || s == "" {
				continue
			}
			if params.Filters == nil {
				params.Filters = make(map[string]string)
			}
			params.Filters[k] = s
		}
	}

	return params, err
}

func stringParam(values map[string]any, key string) string {
	if s, ok := values[key].(string); ok {
		return s
	}
	return ""
}

func intParam(values map[string]any, key string) (int, bool) {
	i, err := strconv.Atoi(stringParam(values, key))
	if err != nil {
		return 0, false
	}
	return i, true
}

// Offset returns the row offset of the current page.
func (p ListParams) Offset() int {
	if p.Page < 1 || p.Size < 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

// Sort returns the sort state carried by the parameters.
func (p ListParams) Sort() SortState {
	return SortState{SortBy: p.SortBy, SortOrder: p.SortOrder}
}

// ToggleSort returns the parameters after activating the header of
// columnID: the same column flips direction, another column becomes the sort
// column in ascending order. Either way the result starts at the first page.
func (p ListParams) ToggleSort(columnID string) ListParams {
	next := p.clone()
	next.Page = DefaultPage
	if columnID == p.SortBy {
		if normalizeOrder(p.SortOrder) == SortAsc {
			next.SortOrder = SortDesc
		} else {
			next.SortOrder = SortAsc
		}
		return next
	}
	next.SortBy = columnID
	next.SortOrder = SortAsc
	return next
}

// WithPage returns the parameters moved to page.
func (p ListParams) WithPage(page int) ListParams {
	next := p.clone()
	next.Page = max(page, 1)
	return next
}

func (p ListParams) clone() ListParams {
	next := p
	if p.Filters != nil {
		next.Filters = make(map[string]string, len(p.Filters))
		for k, v := range p.Filters {
			next.Filters[k] = v
		}
	}
	return next
}

// Values encodes the parameters as query string values.
func (p ListParams) Values() url.Values {
	values := url.Values{}
	values.Set(paramPage, strconv.Itoa(max(p.Page, 1)))
	if p.Size > 0 {
		values.Set(paramSize, strconv.Itoa(p.Size))
	}
	if p.Search != "" {
		values.Set(paramSearch, p.Search)
	}
	if p.SortBy != "" {
		values.Set(paramSortBy, p.SortBy)
		values.Set(paramSortOrder, string(normalizeOrder(p.SortOrder)))
	}
	for k, v := range p.Filters {
		values.Set(paramFilter+"["+k+"]", v)
	}
	return values
}

// URL returns path with the parameters as its query string.
func (p ListParams) URL(path string) string {
	return path + "?" + p.Values().Encode()
}

// PageURL returns the location of page under path.
func (p ListParams) PageURL(path string, page int) string {
	return p.WithPage(page).URL(path)
}

// SortHandler returns the sort callback for a list page served at path. The
// callback toggles the sort state and returns the location encoding it.
func (p ListParams) SortHandler(path string) SortHandler {
	return func(columnID string) string {
		return p.ToggleSort(columnID).URL(path)
	}
}

// SelectedIDs returns the distinct non-empty "selected" values, sorted.
func SelectedIDs(values url.Values) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(values[paramSelected]))
	for _, id := range values[paramSelected] {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

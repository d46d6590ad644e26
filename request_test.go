package datatables

import (
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
)

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected ListParams
	}{
		{
			name:     "defaults",
			query:    "",
			expected: ListParams{Page: 1, Size: 10, SortOrder: SortAsc},
		},
		{
			name:  "all_values",
			query: "page=3&size=25&search=+go+&sortBy=name&sortOrder=DESC",
			expected: ListParams{
				Page:      3,
				Size:      25,
				Search:    "go",
				SortBy:    "name",
				SortOrder: SortDesc,
			},
		},
		{
			name:     "invalid_numbers",
			query:    "page=abc&size=-5",
			expected: ListParams{Page: 1, Size: 10, SortOrder: SortAsc},
		},
		{
			name:     "size_capped",
			query:    "size=500",
			expected: ListParams{Page: 1, Size: 100, SortOrder: SortAsc},
		},
		{
			name:     "unknown_order",
			query:    "sortBy=name&sortOrder=sideways",
			expected: ListParams{Page: 1, Size: 10, SortBy: "name", SortOrder: SortAsc},
		},
		{
			name:  "filters",
			query: "filter%5Btag_type%5D=2&filter%5Bempty%5D=",
			expected: ListParams{
				Page:      1,
				Size:      10,
				SortOrder: SortAsc,
				Filters:   map[string]string{"tag_type": "2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/tags?"+tt.query, nil)
			params, err := ParseListParams(r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(params, tt.expected) {
				t.Errorf("ParseListParams() = %+v, want %+v", params, tt.expected)
			}
		})
	}
}

func TestParseListParamsMalformedNesting(t *testing.T) {
	r := httptest.NewRequest("GET", "/tags?page=3&size=20&search=go&sortBy=name&sortOrder=desc&filter=x&filter%5Ba%5D=b", nil)

	params, err := ParseListParams(r)
	if err == nil {
		t.Fatal("expected an error for mixed flat and nested filter keys")
	}

	expected := ListParams{Page: 3, Size: 20, Search: "go", SortBy: "name", SortOrder: SortDesc}
	if !reflect.DeepEqual(params, expected) {
		t.Errorf("ParseListParams() = %+v, want %+v", params, expected)
	}
}

func TestParseListValues(t *testing.T) {
	form := url.Values{
		"page":             {"2"},
		"size":             {"5"},
		"sortBy":           {"name"},
		"filter[tag_type]": {"4"},
	}

	params, err := ParseListValues(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := ListParams{
		Page:      2,
		Size:      5,
		SortBy:    "name",
		SortOrder: SortAsc,
		Filters:   map[string]string{"tag_type": "4"},
	}
	if !reflect.DeepEqual(params, expected) {
		t.Errorf("ParseListValues() = %+v, want %+v", params, expected)
	}
}

func TestListParamsOffset(t *testing.T) {
	tests := []struct {
		name     string
		params   ListParams
		expected int
	}{
		{name: "first_page", params: ListParams{Page: 1, Size: 10}, expected: 0},
		{name: "third_page", params: ListParams{Page: 3, Size: 25}, expected: 50},
		{name: "zero_page", params: ListParams{Page: 0, Size: 10}, expected: 0},
		{name: "zero_size", params: ListParams{Page: 4, Size: 0}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Offset(); got != tt.expected {
				t.Errorf("Offset() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestListParamsToggleSort(t *testing.T) {
	tests := []struct {
		name      string
		params    ListParams
		columnID  string
		sortBy    string
		sortOrder SortOrder
	}{
		{name: "unsorted", params: ListParams{}, columnID: "name", sortBy: "name", sortOrder: SortAsc},
		{name: "flip_to_desc", params: ListParams{SortBy: "name", SortOrder: SortAsc}, columnID: "name", sortBy: "name", sortOrder: SortDesc},
		{name: "flip_to_asc", params: ListParams{SortBy: "name", SortOrder: SortDesc}, columnID: "name", sortBy: "name", sortOrder: SortAsc},
		{name: "other_column", params: ListParams{SortBy: "name", SortOrder: SortDesc}, columnID: "modified_date", sortBy: "modified_date", sortOrder: SortAsc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.params.ToggleSort(tt.columnID)
			if got.SortBy != tt.sortBy || got.SortOrder != tt.sortOrder {
				t.Errorf("ToggleSort() = %s %s, want %s %s", got.SortBy, got.SortOrder, tt.sortBy, tt.sortOrder)
			}
		})
	}
}

func TestListParamsToggleSortKeepsFilters(t *testing.T) {
	params := ListParams{Page: 2, Size: 10, Filters: map[string]string{"tag_type": "1"}}
	next := params.ToggleSort("name")
	next.Filters["tag_type"] = "2"

	if params.Filters["tag_type"] != "1" {
		t.Error("ToggleSort shares the filter map with its receiver")
	}
	if next.Page != 1 {
		t.Errorf("Page = %d, want 1", next.Page)
	}
	if params.Page != 2 {
		t.Errorf("ToggleSort changed the receiver page to %d", params.Page)
	}
}

func TestListParamsURL(t *testing.T) {
	tests := []struct {
		name     string
		params   ListParams
		expected string
	}{
		{
			name:     "defaults",
			params:   DefaultListParams(),
			expected: "/tags?page=1&size=10",
		},
		{
			name:     "sorted",
			params:   ListParams{Page: 2, Size: 10, SortBy: "name", SortOrder: SortDesc},
			expected: "/tags?page=2&size=10&sortBy=name&sortOrder=desc",
		},
		{
			name:     "search_and_filter",
			params:   ListParams{Page: 1, Size: 20, Search: "go lang", Filters: map[string]string{"tag_type": "3"}},
			expected: "/tags?filter%5Btag_type%5D=3&page=1&search=go+lang&size=20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.URL("/tags"); got != tt.expected {
				t.Errorf("URL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestListParamsRoundTrip(t *testing.T) {
	params := ListParams{
		Page:      4,
		Size:      20,
		Search:    "go",
		SortBy:    "modified_date",
		SortOrder: SortDesc,
		Filters:   map[string]string{"tag_type": "3"},
	}

	r := httptest.NewRequest("GET", params.URL("/tags"), nil)
	parsed, err := ParseListParams(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(parsed, params) {
		t.Errorf("parsed = %+v, want %+v", parsed, params)
	}
}

func TestListParamsSortHandler(t *testing.T) {
	params := ListParams{Page: 3, Size: 10, SortBy: "name", SortOrder: SortAsc}
	handle := params.SortHandler("/tags")

	if got, want := handle("name"), "/tags?page=1&size=10&sortBy=name&sortOrder=desc"; got != want {
		t.Errorf("handle(name) = %q, want %q", got, want)
	}
	if got, want := handle("modified_date"), "/tags?page=1&size=10&sortBy=modified_date&sortOrder=asc"; got != want {
		t.Errorf("handle(modified_date) = %q, want %q", got, want)
	}
	if got, want := params.PageURL("/tags", 0), "/tags?page=1&size=10&sortBy=name&sortOrder=asc"; got != want {
		t.Errorf("PageURL() = %q, want %q", got, want)
	}
}

func TestSelectedIDs(t *testing.T) {
	values := url.Values{"selected": {"3", "1", "", " 3 ", "2"}}
	if got, want := SelectedIDs(values), []string{"1", "2", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SelectedIDs() = %v, want %v", got, want)
	}
	if got := SelectedIDs(url.Values{}); len(got) != 0 {
		t.Errorf("SelectedIDs() = %v, want empty", got)
	}
}

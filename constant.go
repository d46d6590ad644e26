package datatables

// SortOrder is the direction a table is sorted in.
type SortOrder string

// Constants for specifying order direction in list parameters.
const (
	SortAsc  SortOrder = "asc"  // Sort in ascending order.
	SortDesc SortOrder = "desc" // Sort in descending order.
)

// ColumnKind tells the renderer how a column definition is painted.
type ColumnKind int

const (
	KindData      ColumnKind = iota // Plain or sortable field column.
	KindActions                     // Trailing view/edit/delete column.
	KindSelection                   // Row checkbox column.
)

// Identifiers of the synthetic columns added by the builder.
const (
	ActionsColumnID   = "actions"
	SelectionColumnID = "select"
)

// Literals shown by the renderer and the formatting helpers.
const (
	EmptyStateText = "No results" // Body text when a page has no rows.
	NoneText       = "None"       // Fallback for missing nested relations.
	ActionsTitle   = "Actions"    // Header of the actions column.
)

// Header indicators for the active sort column.
const (
	indicatorAsc  = "▲"
	indicatorDesc = "▼"
)

// Defaults applied when list parameters are missing or out of range.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query string keys used by ParseListParams and the URL builders.
const (
	paramPage      = "page"
	paramSize      = "size"
	paramSearch    = "search"
	paramSortBy    = "sortBy"
	paramSortOrder = "sortOrder"
	paramFilter    = "filter"
	paramSelected  = "selected"
)

package datatables

import (
	"html/template"
	"net/url"
	"strings"
)

// CellFunc renders the cell of a column for one row.
type CellFunc[T Entity] func(row T) template.HTML

// SortHandler is the sort callback bound into sortable headers. It is called
// with the column key when the header is activated and returns the location
// the header links to.
type SortHandler func(columnID string) string

// Header is the header cell of a column definition.
//
// Fields:
//   - Title: The display text.
//   - Sortable: Whether the header carries a sort affordance.
//   - Active: Whether this column is the current sort column.
//   - Order: The current sort direction, meaningful only when Active.
type Header struct {
	Title    string
	Sortable bool
	Active   bool
	Order    SortOrder
	columnID string
	onSort   SortHandler
}

// Indicator returns the direction glyph of the active sort column, or an
// empty string for every other header.
func (h Header) Indicator() string {
	if !h.Sortable || !h.Active {
		return ""
	}
	if h.Order == SortDesc {
		return indicatorDesc
	}
	return indicatorAsc
}

// AriaSort returns the aria-sort attribute value for the header.
func (h Header) AriaSort() string {
	switch h.Indicator() {
	case indicatorAsc:
		return "ascending"
	case indicatorDesc:
		return "descending"
	default:
		return "none"
	}
}

// Toggle activates the header. It invokes the bound sort callback with the
// column key and returns its result. Non-sortable headers return "".
func (h Header) Toggle() string {
	if !h.Sortable || h.onSort == nil {
		return ""
	}
	return h.onSort(h.columnID)
}

// ColumnDef is the renderable column produced from a ColumnConfig for one
// render pass.
//
// Fields:
//   - ID: The column key, or one of the synthetic column ids.
//   - Kind: How the renderer paints the column.
//   - Header: The header cell.
//   - Accessor: Returns the raw field value of a row.
//   - Cell: Optional renderer; when set it fully replaces the default cell.
type ColumnDef[T Entity] struct {
	ID       string
	Kind     ColumnKind
	Header   Header
	Accessor func(row T) any
	Cell     CellFunc[T]
}

// Render returns the HTML of the column's cell for row. Without a Cell
// override the accessor value is rendered as escaped text.
func (c ColumnDef[T]) Render(row T) template.HTML {
	if c.Cell != nil {
		return c.Cell(row)
	}
	if c.Accessor == nil {
		return ""
	}
	return template.HTML(template.HTMLEscapeString(CellText(c.Accessor(row))))
}

// ColumnOverrides replaces parts of a generated column definition while the
// header and sort behavior stay generated.
type ColumnOverrides[T Entity] struct {
	Cell CellFunc[T]
}

// fieldAccessor returns a null-safe accessor for key.
func fieldAccessor[T Entity](key string) func(row T) any {
	return func(row T) any {
		return FieldValue(row, key)
	}
}

// NewSortableColumn returns a column whose header shows title, carries the
// direction indicator when key is the current sort column and links to the
// location returned by onSort(key). An override Cell replaces the default
// identity rendering of the field.
func NewSortableColumn[T Entity](key, title, sortBy string, sortOrder SortOrder, onSort SortHandler, overrides ...ColumnOverrides[T]) ColumnDef[T] {
	col := ColumnDef[T]{
		ID:   key,
		Kind: KindData,
		Header: Header{
			Title:    title,
			Sortable: true,
			Active:   key == sortBy,
			Order:    normalizeOrder(sortOrder),
			columnID: key,
			onSort:   onSort,
		},
		Accessor: fieldAccessor[T](key),
	}
	for _, o := range overrides {
		if o.Cell != nil {
			col.Cell = o.Cell
		}
	}
	return col
}

// newPlainColumn returns a non-interactive column: accessor and header only.
func newPlainColumn[T Entity](key, title string, cell CellFunc[T]) ColumnDef[T] {
	return ColumnDef[T]{
		ID:       key,
		Kind:     KindData,
		Header:   Header{Title: title, columnID: key},
		Accessor: fieldAccessor[T](key),
		Cell:     cell,
	}
}

var actionsTemplate = template.Must(template.New("actions").Parse(
	`<div class="row-actions">` +
		`<a class="action-view" href="{{ .Base }}" aria-label="View {{ .Entity }}">View</a>` +
		`{{ if .CanEdit }} <a class="action-edit" href="{{ .Base }}/edit" aria-label="Edit {{ .Entity }}">Edit</a>{{ end }}` +
		`{{ if .CanDelete }} <a class="action-delete" href="{{ .Base }}/delete" aria-label="Delete {{ .Entity }}">Delete</a>{{ end }}` +
		`</div>`,
))

// EntityURL joins a base route and an entity id.
func EntityURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(id)
}

// NewActionsColumn returns the trailing actions column with view, edit and
// delete controls pointing at baseURL/<id>. When perms is omitted both edit
// and delete are shown.
func NewActionsColumn[T Entity](entityName, baseURL string, perms ...Permissions) ColumnDef[T] {
	p := AllowAll
	if len(perms) > 0 {
		p = perms[0]
	}

	return ColumnDef[T]{
		ID:     ActionsColumnID,
		Kind:   KindActions,
		Header: Header{Title: ActionsTitle, columnID: ActionsColumnID},
		Accessor: func(row T) any {
			return row.EntityID()
		},
		Cell: func(row T) template.HTML {
			var b strings.Builder
			err := actionsTemplate.Execute(&b, struct {
				Base      string
				Entity    string
				CanEdit   bool
				CanDelete bool
			}{
				Base:      EntityURL(baseURL, row.EntityID()),
				Entity:    entityName,
				CanEdit:   p.CanEdit,
				CanDelete: p.CanDelete,
			})
			if err != nil {
				return ""
			}
			return template.HTML(b.String())
		},
	}
}

// NewSelectionColumn returns the checkbox column. The checked state of each
// row and of the select-all header comes from the table that renders it.
func NewSelectionColumn[T Entity]() ColumnDef[T] {
	return ColumnDef[T]{
		ID:     SelectionColumnID,
		Kind:   KindSelection,
		Header: Header{columnID: SelectionColumnID},
		Accessor: func(row T) any {
			return row.EntityID()
		},
	}
}

// normalizeOrder maps anything other than desc to asc.
func normalizeOrder(o SortOrder) SortOrder {
	if SortOrder(strings.ToLower(string(o))) == SortDesc {
		return SortDesc
	}
	return SortAsc
}

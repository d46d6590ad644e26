package datatables

// ColumnsFunc produces the column definitions of one render pass from the
// current sort state and the sort callback.
type ColumnsFunc[T Entity] func(sortBy string, sortOrder SortOrder, handleSort SortHandler) []ColumnDef[T]

// NewColumns binds config and returns the render-time column generator.
//
// Every descriptor becomes a sortable column unless it is marked
// non-sortable, in which case it becomes a plain column with no sort
// affordance. Exactly one actions column built from the config's entity name,
// base URL and permissions is appended. Identical arguments always produce
// structurally identical definitions.
func NewColumns[T Entity](config DataTableConfig[T]) ColumnsFunc[T] {
	return func(sortBy string, sortOrder SortOrder, handleSort SortHandler) []ColumnDef[T] {
		columns := make([]ColumnDef[T], 0, len(config.Columns)+1)
		for _, c := range config.Columns {
			if !c.IsSortable() {
				columns = append(columns, newPlainColumn[T](c.Key, c.Title, c.Cell))
				continue
			}
			columns = append(columns, NewSortableColumn(c.Key, c.Title, sortBy, sortOrder, handleSort, ColumnOverrides[T]{Cell: c.Cell}))
		}

		var perms []Permissions
		if config.Permissions != nil {
			perms = append(perms, *config.Permissions)
		}
		return append(columns, NewActionsColumn[T](config.EntityName, config.BaseURL, perms...))
	}
}

// ColumnBuilder is NewColumns as a value: it holds the static config and
// builds column definitions on demand.
type ColumnBuilder[T Entity] struct {
	config    DataTableConfig[T]
	columns   ColumnsFunc[T]
	selection bool
}

// NewColumnBuilder returns a builder bound to config.
func NewColumnBuilder[T Entity](config DataTableConfig[T]) *ColumnBuilder[T] {
	return &ColumnBuilder[T]{
		config:  config,
		columns: NewColumns(config),
	}
}

// WithSelection makes Build prepend the selection column.
func (b *ColumnBuilder[T]) WithSelection() *ColumnBuilder[T] {
	b.selection = true
	return b
}

// Config returns the bound table configuration.
func (b *ColumnBuilder[T]) Config() DataTableConfig[T] {
	return b.config
}

// Build returns the column definitions for the given sort state.
func (b *ColumnBuilder[T]) Build(state SortState, handleSort SortHandler) []ColumnDef[T] {
	columns := b.columns(state.SortBy, state.SortOrder, handleSort)
	if !b.selection {
		return columns
	}
	return append([]ColumnDef[T]{NewSelectionColumn[T]()}, columns...)
}

// SortState is the externally owned sort key and direction.
type SortState struct {
	SortBy    string
	SortOrder SortOrder
}

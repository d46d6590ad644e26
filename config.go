package datatables

// Entity is implemented by every row type shown in a table. The returned id
// must be unique within the entity kind; integer ids are formatted in base 10.
type Entity interface {
	EntityID() string
}

// ColumnConfig describes one field of T shown in a table.
//
// Fields:
//   - Key: JSON name of the field on T. Dotted paths reach nested fields.
//   - Title: Header text.
//   - Sortable: nil means sortable; set to Bool(false) for a plain column.
//   - Cell: Optional renderer that replaces the default text cell.
type ColumnConfig[T Entity] struct {
	Key      string
	Title    string
	Sortable *bool
	Cell     CellFunc[T]
}

// IsSortable reports whether the column gets a sort affordance.
func (c ColumnConfig[T]) IsSortable() bool {
	return c.Sortable == nil || *c.Sortable
}

// Permissions gates the edit and delete controls of the actions column. The
// flags are resolved by the caller; this package never checks authorization.
type Permissions struct {
	CanEdit   bool
	CanDelete bool
}

// AllowAll is the permission set used when none is supplied.
var AllowAll = Permissions{CanEdit: true, CanDelete: true}

// DataTableConfig is a reusable table definition bound to one entity kind and
// its CRUD route prefix.
//
// Fields:
//   - Columns: Column descriptors in display order. Never includes actions.
//   - EntityName: Human name of the entity, used in action labels.
//   - BaseURL: Route prefix of a single entity, e.g. "/tags/tag".
//   - Permissions: Optional gate for the actions column.
type DataTableConfig[T Entity] struct {
	Columns     []ColumnConfig[T]
	EntityName  string
	BaseURL     string
	Permissions *Permissions
}

// SortableKeys returns the keys of all sortable descriptors, in order.
func (c DataTableConfig[T]) SortableKeys() []string {
	keys := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		if col.IsSortable() {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

// Bool returns a pointer to b, for the optional Sortable flag.
func Bool(b bool) *bool {
	return &b
}

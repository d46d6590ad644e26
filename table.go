package datatables

import (
	"embed"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.gohtml
var templateFiles embed.FS

var tableTemplate = template.Must(
	template.New("datatables").
		Funcs(template.FuncMap{
			"comma": func(n int64) string { return humanize.Comma(n) },
		}).
		ParseFS(templateFiles, "templates/*.gohtml"),
)

// Table renders a page of rows against a column definition list. It owns the
// row selection of the page it renders.
//
// Fields:
//   - OnSelectionChange: Called with the selected ids after every change.
//   - FormAction: When set the table is wrapped in a POST form to this URL.
//   - CSRFToken: Hidden token included in the form.
//   - Pager: Optional page buttons inside the form.
//   - Caption: Optional table caption.
type Table[T Entity] struct {
	columns  []ColumnDef[T]
	page     Page[T]
	selected map[string]bool

	OnSelectionChange func(selected []string)
	FormAction        string
	CSRFToken         string
	Pager             *Pager
	Caption           string
}

// Pager renders previous and next buttons inside the table form. They post
// the selection, the list parameters and the target page as "goto" to
// Action, which is expected to redirect to that page with the selection in
// the query string.
type Pager struct {
	Action string
	Params ListParams
}

type hiddenField struct {
	Name  string
	Value string
}

type pagerView struct {
	Action string
	Fields []hiddenField
	Page   int64
	Pages  int64
	Prev   int
	Next   int
}

func (t *Table[T]) pagerView() *pagerView {
	if t.Pager == nil || t.FormAction == "" || t.page.Pages < 2 {
		return nil
	}

	page := max(t.Pager.Params.Page, 1)
	view := &pagerView{
		Action: t.Pager.Action,
		Page:   int64(page),
		Pages:  int64(t.page.Pages),
	}
	if page > 1 {
		view.Prev = page - 1
	}
	if page < t.page.Pages {
		view.Next = page + 1
	}

	values := t.Pager.Params.Values()
	values.Del(paramPage)
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		view.Fields = append(view.Fields, hiddenField{Name: name, Value: values.Get(name)})
	}
	return view
}

// NewTable returns a table for columns and page.
func NewTable[T Entity](columns []ColumnDef[T], page Page[T]) *Table[T] {
	return &Table[T]{
		columns:  columns,
		page:     page,
		selected: make(map[string]bool),
	}
}

// Columns returns the column definitions of the table.
func (t *Table[T]) Columns() []ColumnDef[T] {
	return t.columns
}

// Page returns the page the table renders.
func (t *Table[T]) Page() Page[T] {
	return t.page
}

// HasSelection reports whether the table has a selection column.
func (t *Table[T]) HasSelection() bool {
	for _, col := range t.columns {
		if col.Kind == KindSelection {
			return true
		}
	}
	return false
}

// SetSelected replaces the selection with ids, e.g. to carry a previous
// selection over to this page.
func (t *Table[T]) SetSelected(ids ...string) {
	t.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			t.selected[id] = true
		}
	}
	t.notify()
}

// ToggleRow flips the selection of the row with id.
func (t *Table[T]) ToggleRow(id string) {
	if t.selected == nil {
		t.selected = make(map[string]bool)
	}
	if t.selected[id] {
		delete(t.selected, id)
	} else {
		t.selected[id] = true
	}
	t.notify()
}

// ToggleAll selects every row of the page, or clears them when all are
// already selected.
func (t *Table[T]) ToggleAll() {
	if t.selected == nil {
		t.selected = make(map[string]bool)
	}
	all := t.AllSelected()
	for _, row := range t.page.Items {
		if all {
			delete(t.selected, row.EntityID())
		} else {
			t.selected[row.EntityID()] = true
		}
	}
	t.notify()
}

// IsSelected reports whether the row with id is selected.
func (t *Table[T]) IsSelected(id string) bool {
	return t.selected[id]
}

// AllSelected reports whether the page has rows and all of them are
// selected.
func (t *Table[T]) AllSelected() bool {
	if len(t.page.Items) == 0 {
		return false
	}
	for _, row := range t.page.Items {
		if !t.selected[row.EntityID()] {
			return false
		}
	}
	return true
}

// Selected returns the selected ids, sorted.
func (t *Table[T]) Selected() []string {
	ids := make([]string, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CarriedSelection returns the selected ids that are not rows of the current
// page, sorted. The table form submits them as hidden fields so a selection
// made on other pages is kept.
func (t *Table[T]) CarriedSelection() []string {
	onPage := make(map[string]bool, len(t.page.Items))
	for _, row := range t.page.Items {
		onPage[row.EntityID()] = true
	}

	ids := make([]string, 0)
	for _, id := range t.Selected() {
		if !onPage[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *Table[T]) notify() {
	if t.OnSelectionChange != nil {
		t.OnSelectionChange(t.Selected())
	}
}

// HeaderCell is the rendered form of a column header.
type HeaderCell struct {
	ID        string
	Title     string
	Sortable  bool
	Href      string
	Indicator string
	AriaSort  string
	Selection bool
	Checked   bool
}

// BodyCell is the rendered form of one cell.
type BodyCell struct {
	ID        string
	HTML      template.HTML
	Selection bool
	RowID     string
	Checked   bool
}

// BodyRow is the rendered form of one row.
type BodyRow struct {
	ID       string
	Selected bool
	Cells    []BodyCell
}

// Headers returns the header row. Sortable headers are activated here, so
// the sort callback runs once per sortable column per render.
func (t *Table[T]) Headers() []HeaderCell {
	headers := make([]HeaderCell, 0, len(t.columns))
	for _, col := range t.columns {
		h := HeaderCell{
			ID:        col.ID,
			Title:     col.Header.Title,
			Sortable:  col.Header.Sortable,
			Indicator: col.Header.Indicator(),
			AriaSort:  col.Header.AriaSort(),
			Selection: col.Kind == KindSelection,
		}
		if h.Sortable {
			h.Href = col.Header.Toggle()
		}
		if h.Selection {
			h.Checked = t.AllSelected()
		}
		headers = append(headers, h)
	}
	return headers
}

// Rows returns one body row per item of the page.
func (t *Table[T]) Rows() []BodyRow {
	rows := make([]BodyRow, 0, len(t.page.Items))
	for _, item := range t.page.Items {
		id := item.EntityID()
		row := BodyRow{ID: id, Selected: t.selected[id]}
		for _, col := range t.columns {
			if col.Kind == KindSelection {
				row.Cells = append(row.Cells, BodyCell{ID: col.ID, Selection: true, RowID: id, Checked: row.Selected})
				continue
			}
			row.Cells = append(row.Cells, BodyCell{ID: col.ID, HTML: col.Render(item)})
		}
		rows = append(rows, row)
	}
	return rows
}

type tableView struct {
	Headers     []HeaderCell
	Rows        []BodyRow
	Empty       bool
	EmptyText   string
	ColumnCount int
	Total       int64
	FormAction  string
	CSRFToken   string
	Carried     []string
	Pager       *pagerView
	Caption     string
}

// Render writes the table as HTML to w.
func (t *Table[T]) Render(w io.Writer) error {
	view := tableView{
		Headers:     t.Headers(),
		Rows:        t.Rows(),
		Empty:       t.page.IsEmpty(),
		EmptyText:   EmptyStateText,
		ColumnCount: max(len(t.columns), 1),
		Total:       t.page.Total,
		FormAction:  t.FormAction,
		CSRFToken:   t.CSRFToken,
		Caption:     t.Caption,
	}
	if t.FormAction != "" && t.HasSelection() {
		view.Carried = t.CarriedSelection()
	}
	view.Pager = t.pagerView()
	return tableTemplate.ExecuteTemplate(w, "table", view)
}

// HTML renders the table into a string for embedding in a page template.
func (t *Table[T]) HTML() (template.HTML, error) {
	var b strings.Builder
	if err := t.Render(&b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

package admin

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	datatables "github.com/ZihxS/gorm-admin-datatables"
	"github.com/ZihxS/gorm-admin-datatables/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
	"go.uber.org/zap"
)

const (
	paramDeleted  = "deleted"
	paramGoto     = "goto"
	paramSelected = "selected"
)

// Resource serves the pages of one entity kind.
//
// Routes, with list = ListURL and base = Config.BaseURL:
//   - GET list: the table page
//   - POST list/bulk-delete: delete the selected rows
//   - POST list/select: move to another page keeping the selection
//   - GET base/{id}: the detail page
//   - GET base/{id}/delete: the delete confirmation page
//   - POST base/{id}/delete: delete one row
type Resource[T datatables.Entity] struct {
	Title   string
	ListURL string
	Config  datatables.DataTableConfig[T]
	Store   datatables.Store[T]

	builder *datatables.ColumnBuilder[T]
	server  *Server
}

// NewResource returns the resource for config, listed at listURL and loaded
// from store.
func NewResource[T datatables.Entity](title, listURL string, config datatables.DataTableConfig[T], store datatables.Store[T]) *Resource[T] {
	builder := datatables.NewColumnBuilder(config)
	res := &Resource[T]{
		Title:   title,
		ListURL: listURL,
		Config:  config,
		Store:   store,
		builder: builder,
	}
	if res.canDelete() {
		builder.WithSelection()
	}
	return res
}

// NavItem returns the sidebar link to the list page.
func (res *Resource[T]) NavItem() NavItem {
	return NavItem{Title: res.Title, Href: res.ListURL}
}

// Register mounts the resource routes on r.
func (res *Resource[T]) Register(r chi.Router, s *Server) {
	res.server = s

	r.Get(res.ListURL, res.list)
	r.Get(res.Config.BaseURL+"/{id}", res.view)
	if res.canDelete() {
		r.Post(res.ListURL+"/bulk-delete", res.bulkDelete)
		r.Post(res.ListURL+"/select", res.selectPage)
		r.Get(res.Config.BaseURL+"/{id}/delete", res.confirmDelete)
		r.Post(res.Config.BaseURL+"/{id}/delete", res.delete)
	}
}

func (res *Resource[T]) canDelete() bool {
	return res.Config.Permissions == nil || res.Config.Permissions.CanDelete
}

type listView struct {
	ListURL   string
	ListTitle string
	Params    datatables.ListParams
	Table     template.HTML
	Notice    string
	Page      int
	Pages     int
	PrevURL   string
	NextURL   string
	InTable   bool
}

func (res *Resource[T]) list(w http.ResponseWriter, r *http.Request) {
	params, err := datatables.ParseListParams(r)
	if err != nil {
		log.Warn("parse list params", zap.String("path", r.URL.Path), zap.Error(err))
	}
	if !r.URL.Query().Has("size") {
		params.Size = res.server.PageSize()
	}

	page, err := res.Store.ListPage(r.Context(), params)
	if err != nil {
		log.Err("load page",
			zap.String("resource", res.Title),
			zap.String("query", r.URL.RawQuery),
			zap.Error(err),
		)
		page = datatables.EmptyPage[T]()
	}

	columns := res.builder.Build(params.Sort(), params.SortHandler(res.ListURL))
	table := datatables.NewTable(columns, page)
	table.Caption = res.Title
	if res.canDelete() {
		table.FormAction = res.ListURL + "/bulk-delete"
		table.CSRFToken = nosurf.Token(r)
		table.Pager = &datatables.Pager{Action: res.ListURL + "/select", Params: params}
	}
	selected := datatables.SelectedIDs(r.URL.Query())
	table.SetSelected(selected...)

	tableHTML, err := table.HTML()
	if err != nil {
		log.Err("render table", zap.String("resource", res.Title), zap.Error(err))
		res.server.renderError(w, r, http.StatusInternalServerError, "The table could not be rendered")
		return
	}

	view := listView{
		ListURL:   res.ListURL,
		ListTitle: res.Title,
		Params:    params,
		Table:     tableHTML,
		Page:      params.Page,
		Pages:     page.Pages,
		InTable:   table.Pager != nil,
	}
	if n, err := strconv.Atoi(r.URL.Query().Get(paramDeleted)); err == nil && n >= 0 {
		view.Notice = deletedNotice(n, res.Config.EntityName)
	}
	if params.Page > 1 {
		view.PrevURL = params.PageURL(res.ListURL, params.Page-1)
	}
	if params.Page < page.Pages {
		view.NextURL = params.PageURL(res.ListURL, params.Page+1)
	}

	res.server.render(w, r, http.StatusOK, "list", res.Title, res.ListURL, view)
}

// withSelected appends the selected ids to a list location so a selection
// survives paging.
func withSelected(location string, ids []string) string {
	if len(ids) == 0 {
		return location
	}
	values := url.Values{paramSelected: ids}
	return location + "&" + values.Encode()
}

type field struct {
	Title string
	HTML  template.HTML
}

type detailView struct {
	ListURL   string
	ListTitle string
	Fields    []field
	Actions   template.HTML
}

func (res *Resource[T]) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := res.load(w, r, id)
	if !ok {
		return
	}

	view := detailView{ListURL: res.ListURL, ListTitle: res.Title}
	for _, col := range datatables.NewColumns(res.Config)("", datatables.SortAsc, nil) {
		if col.Kind == datatables.KindActions {
			view.Actions = col.Render(item)
			continue
		}
		view.Fields = append(view.Fields, field{Title: col.Header.Title, HTML: col.Render(item)})
	}

	res.server.render(w, r, http.StatusOK, "view", res.Config.EntityName+" "+id, res.ListURL, view)
}

type confirmView struct {
	EntityName string
	Label      string
	Action     string
	CancelURL  string
	CSRFToken  string
}

func (res *Resource[T]) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := res.load(w, r, id); !ok {
		return
	}

	entityURL := datatables.EntityURL(res.Config.BaseURL, id)
	view := confirmView{
		EntityName: res.Config.EntityName,
		Label:      "#" + id,
		Action:     entityURL + "/delete",
		CancelURL:  entityURL,
		CSRFToken:  nosurf.Token(r),
	}
	res.server.render(w, r, http.StatusOK, "confirm", "Delete "+res.Config.EntityName, res.ListURL, view)
}

func (res *Resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	_, err := res.Store.Delete(r.Context(), id)
	if errors.Is(err, datatables.ErrNotFound) {
		res.server.renderError(w, r, http.StatusNotFound, res.Config.EntityName+" not found")
		return
	}
	if err != nil {
		log.Err("delete", zap.String("resource", res.Title), zap.String("id", id), zap.Error(err))
		res.server.renderError(w, r, http.StatusBadGateway, "The "+res.Config.EntityName+" could not be deleted")
		return
	}

	log.Info("deleted", zap.String("resource", res.Title), zap.String("id", id))
	res.redirectDeleted(w, r, 1)
}

func (res *Resource[T]) bulkDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		res.server.renderError(w, r, http.StatusBadRequest, "Invalid form")
		return
	}

	ids := datatables.SelectedIDs(r.PostForm)
	if len(ids) == 0 {
		http.Redirect(w, r, res.ListURL, http.StatusSeeOther)
		return
	}

	n, err := res.Store.Delete(r.Context(), ids...)
	if errors.Is(err, datatables.ErrNotFound) {
		res.redirectDeleted(w, r, 0)
		return
	}
	if err != nil {
		log.Err("bulk delete", zap.String("resource", res.Title), zap.Strings("ids", ids), zap.Error(err))
		res.server.renderError(w, r, http.StatusBadGateway, "The selected rows could not be deleted")
		return
	}

	log.Info("deleted", zap.String("resource", res.Title), zap.Strings("ids", ids), zap.Int("deleted", n))
	res.redirectDeleted(w, r, n)
}

// selectPage answers the pager buttons of the table form: it redirects to the
// requested page with the posted selection in the query string.
func (res *Resource[T]) selectPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		res.server.renderError(w, r, http.StatusBadRequest, "Invalid form")
		return
	}

	query := url.Values{}
	for key, values := range r.PostForm {
		switch key {
		case paramGoto, paramSelected, nosurf.FormFieldName:
			continue
		}
		query[key] = values
	}
	params, err := datatables.ParseListValues(query)
	if err != nil {
		log.Warn("parse list params", zap.String("path", r.URL.Path), zap.Error(err))
	}

	target, err := strconv.Atoi(r.PostForm.Get(paramGoto))
	if err != nil || target < 1 {
		target = params.Page
	}

	location := withSelected(params.PageURL(res.ListURL, target), datatables.SelectedIDs(r.PostForm))
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (res *Resource[T]) redirectDeleted(w http.ResponseWriter, r *http.Request, n int) {
	location := res.ListURL + "?" + url.Values{paramDeleted: {strconv.Itoa(n)}}.Encode()
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// load fetches the entity with id, answering the request itself when that
// fails.
func (res *Resource[T]) load(w http.ResponseWriter, r *http.Request, id string) (T, bool) {
	item, err := res.Store.Get(r.Context(), id)
	if errors.Is(err, datatables.ErrNotFound) {
		res.server.renderError(w, r, http.StatusNotFound, res.Config.EntityName+" not found")
		return item, false
	}
	if err != nil {
		log.Err("load entity", zap.String("resource", res.Title), zap.String("id", id), zap.Error(err))
		res.server.renderError(w, r, http.StatusBadGateway, "The "+res.Config.EntityName+" could not be loaded")
		return item, false
	}
	return item, true
}

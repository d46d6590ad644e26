package admin

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/ZihxS/gorm-admin-datatables/pkg/log"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.gohtml
var templateFiles embed.FS

var funcs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"lower": func(s string) string { return cases.Lower(language.English).String(s) },
}

var pages = map[string]*template.Template{
	"list":    parsePage("list"),
	"view":    parsePage("view"),
	"confirm": parsePage("confirm"),
	"error":   parsePage("error"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).ParseFS(templateFiles,
		"templates/layout.gohtml",
		"templates/"+name+".gohtml",
	))
}

type pageData struct {
	Title    string
	AppTitle string
	Nav      []NavItem
	Active   string
	Content  any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title, active string, content any) {
	data := pageData{
		Title:    title,
		AppTitle: s.opts.Title,
		Nav:      s.nav,
		Active:   active,
		Content:  content,
	}

	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Err("render page",
			zap.String("page", page),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error", http.StatusText(status), "", errorView{Message: message})
}

// deletedNotice returns the message shown after deleting n entities.
func deletedNotice(n int, entityName string) string {
	noun := cases.Lower(language.English).String(entityName)
	return "Deleted " + english.Plural(n, noun, "")
}

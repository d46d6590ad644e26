// Package admin serves the list, detail and delete pages of the question
// bank admin console.
package admin

import (
	"net/http"

	datatables "github.com/ZihxS/gorm-admin-datatables"
	"github.com/ZihxS/gorm-admin-datatables/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
	"go.uber.org/zap"
)

// Options configures the admin server.
type Options struct {
	// Title is shown in the page title and the sidebar.
	Title string
	// PageSize is used when a list request carries no size.
	PageSize int
	// Local disables the secure flag of the CSRF cookie.
	Local bool
}

// NavItem is one sidebar link.
type NavItem struct {
	Title string
	Href  string
}

// Registrar mounts the routes of one entity kind.
type Registrar interface {
	NavItem() NavItem
	Register(r chi.Router, s *Server)
}

// Server is the admin console HTTP handler.
type Server struct {
	opts   Options
	nav    []NavItem
	router chi.Router
}

// NewServer builds the router for resources. Every state changing request
// must carry a valid CSRF token.
func NewServer(opts Options, resources ...Registrar) *Server {
	if opts.PageSize < 1 {
		opts.PageSize = datatables.DefaultPageSize
	}
	if opts.PageSize > datatables.MaxPageSize {
		opts.PageSize = datatables.MaxPageSize
	}
	if opts.Title == "" {
		opts.Title = "Question Bank Admin"
	}

	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Compress(5, "text/html", "text/css", "application/json"))
	r.Use(s.csrf)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	for _, res := range resources {
		s.nav = append(s.nav, res.NavItem())
		res.Register(r, s)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if len(s.nav) == 0 {
			s.renderError(w, r, http.StatusNotFound, "No resources configured")
			return
		}
		http.Redirect(w, r, s.nav[0].Href, http.StatusFound)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// PageSize returns the default list page size.
func (s *Server) PageSize() int {
	return s.opts.PageSize
}

func (s *Server) csrf(next http.Handler) http.Handler {
	h := nosurf.New(next)
	h.SetBaseCookie(http.Cookie{
		Path:     "/",
		HttpOnly: true,
		Secure:   !s.opts.Local,
		SameSite: http.SameSiteLaxMode,
	})
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Warn("csrf check failed",
			zap.String("path", r.URL.Path),
			zap.NamedError("reason", nosurf.Reason(r)),
		)
		s.renderError(w, r, http.StatusForbidden, "Your session has expired, reload the page and try again")
	}))
	return h
}

// Package web serves the portal as server-rendered HTML pages.
//
// Screens are rendered to markdown by the renderer package and converted to
// HTML with goldmark. Chart specs are embedded as JSON for a client-side
// chart library to draw.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/portal"
	"github.com/etnz/portal/assistant"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"page.html", "guided.html", "custom.html", "coach.html", "assistant.html"}

// Server serves every browser. Each browser gets its own controller, found
// through the session cookie.
type Server struct {
	src     portal.Source
	backend assistant.Backend
	store   portal.Store
	log     *slog.Logger
	now     func() time.Time
	user    string

	md    goldmark.Markdown
	pages map[string]*template.Template

	ctrlOpts []portal.Option

	mu        sync.Mutex
	clients   map[string]*client
	assistant map[string]*assistantSession
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the snapshot store.
func WithStore(s portal.Store) Option { return func(srv *Server) { srv.store = s } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(srv *Server) { srv.log = l } }

// WithClock sets the time source.
func WithClock(now func() time.Time) Option { return func(srv *Server) { srv.now = now } }

// WithUser sets the user shown when none is given.
func WithUser(id string) Option { return func(srv *Server) { srv.user = id } }

// New returns a server over the portal backend and the assistant backend.
func New(src portal.Source, backend assistant.Backend, opts ...Option) (*Server, error) {
	s := &Server{
		src:       src,
		backend:   backend,
		log:       slog.Default(),
		now:       time.Now,
		user:      "USR000001",
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		pages:     map[string]*template.Template{},
		clients:   map[string]*client{},
		assistant: map[string]*assistantSession{},
	}
	for _, o := range opts {
		o(s)
	}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		s.pages[name] = t
	}
	s.ctrlOpts = []portal.Option{portal.WithLogger(s.log), portal.WithClock(s.now)}
	if s.store != nil {
		s.ctrlOpts = append(s.ctrlOpts, portal.WithStore(s.store))
	}
	return s, nil
}

const (
	sessionCookie = "pmp_session"
	sessionIdle   = 30 * time.Minute
)

// client is the portal state of one browser. Its requests are served one at
// a time.
type client struct {
	mu   sync.Mutex
	ctrl *portal.Controller
	seen time.Time
}

type clientKey struct{}

// clientOf returns the client of the request cookie, starting a new session
// when there is none. Sessions idle for sessionIdle are dropped.
func (s *Server) clientOf(w http.ResponseWriter, r *http.Request) *client {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if ck, err := r.Cookie(sessionCookie); err == nil {
		if c, ok := s.clients[ck.Value]; ok {
			c.seen = now
			return c
		}
	}
	for id, c := range s.clients {
		if now.Sub(c.seen) > sessionIdle {
			delete(s.clients, id)
		}
	}
	id := uuid.NewString()
	c := &client{ctrl: portal.NewController(s.src, nil, s.ctrlOpts...), seen: now}
	s.clients[id] = c
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	s.log.Debug("session started", "session", id)
	return c
}

// perClient runs next with the controller of the browser, holding the
// client for the whole request.
func (s *Server) perClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := s.clientOf(w, r)
		c.mu.Lock()
		defer c.mu.Unlock()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, c)))
	})
}

// controllerOf returns the controller of the browser sending r.
func controllerOf(r *http.Request) *portal.Controller {
	return r.Context().Value(clientKey{}).(*client).ctrl
}

// Handler returns the router of the portal.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Group(func(r chi.Router) {
		r.Use(s.perClient)
		r.Get("/", s.Welcome)
		r.Get("/tables/{name}", s.Table)
		r.Get("/tables/{name}/export", s.Export)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.Dashboard)
			r.Get("/rebalance/{asset}", s.Rebalance)
			r.Post("/rebalance/{asset}/execute", s.ExecuteRebalance)
			r.Get("/rebalance/{asset}/report", s.Report)
			r.Get("/custom/{asset}", s.Custom)
			r.Post("/custom/{asset}/execute", s.ExecuteCustom)
			r.Get("/coach", s.Coach)
			r.Post("/coach", s.Analyze)
			r.Post("/coach/implement", s.Implement)
		})
	})

	r.Get("/assistant", s.Assistant)
	r.Post("/assistant/chat", s.Chat)
	r.Get("/assistant/customers", s.Customers)
	r.Get("/assistant/customers/{id}", s.SelectCustomer)
	return r
}

// link is an action offered under a page.
type link struct {
	Label string
	Href  string
}

// pageData is what every page template receives.
type pageData struct {
	Title   string
	User    string
	Tables  []string
	Message string
	Body    template.HTML
	Charts  []portal.ChartSpec
	Links   []link

	// table pages
	Search string
	Query  string

	Guided   *portal.RebalancingSession
	Scenario string
	Custom   *portal.CustomSession

	Coach           *portal.CoachSession
	Implementations []portal.Implementation

	// assistant page
	Status      string
	Panels      []assistant.Panel
	Active      assistant.Panel
	History     []assistant.Message
	Suggestions []string
}

func (s *Server) data(title, user string) *pageData {
	if user == "" {
		user = s.user
	}
	return &pageData{Title: title, User: user, Tables: portal.TableNames()}
}

// markdown converts renderer output to HTML.
func (s *Server) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src), &buf); err != nil {
		s.log.Error("markdown conversion failed", "err", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// render writes page with status.
func (s *Server) render(w http.ResponseWriter, status int, page string, d *pageData) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", d); err != nil {
		s.log.Error("template failed", "page", page, "err", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// fail renders the inline error message of err.
func (s *Server) fail(w http.ResponseWriter, d *pageData, err error) {
	if d.Message == "" {
		d.Message = portal.Message(err)
	}
	s.render(w, statusOf(err), "page.html", d)
}

// statusOf maps the error taxonomy to an HTTP status.
func statusOf(err error) int {
	var app *portal.AppError
	var val *portal.ValidationError
	switch {
	case errors.Is(err, portal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, portal.ErrStale):
		return http.StatusConflict
	case errors.As(err, &val), errors.Is(err, portal.ErrNoSelection):
		return http.StatusBadRequest
	case portal.IsTransport(err):
		return http.StatusBadGateway
	case errors.As(err, &app):
		if app.Status >= 400 && app.Status < 500 {
			return app.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

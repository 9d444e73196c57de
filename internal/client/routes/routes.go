// Package routes holds the client's route table. Paths are matched with a
// chi router, and Navigate enforces the authentication guard on protected
// routes before recording the new location.
package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/countrybook/internal/logging"
)

var ErrNoRoute = errors.New("no such route")

type Name string

const (
	Countries      Name = "countries"
	CountryDetail  Name = "country"
	Profile        Name = "profile"
	Settings       Name = "settings"
	Signup         Name = "signup"
	ForgotPassword Name = "forgot-password"
	ResetPassword  Name = "reset-password"
	Login          Name = "login"
)

const LoginPath = "/login"

type Route struct {
	Name      Name
	Pattern   string
	Protected bool
}

// Table is the full set of client routes, in display order.
var Table = []Route{
	{Name: Countries, Pattern: "/"},
	{Name: CountryDetail, Pattern: "/country/{code}", Protected: true},
	{Name: Profile, Pattern: "/profile"},
	{Name: Settings, Pattern: "/settings"},
	{Name: Signup, Pattern: "/signup"},
	{Name: ForgotPassword, Pattern: "/forgot-password"},
	{Name: ResetPassword, Pattern: "/reset-password"},
	{Name: Login, Pattern: LoginPath},
}

type Match struct {
	Route  Route
	Path   string
	Query  url.Values
	Params map[string]string
}

func (m Match) Param(key string) string {
	return m.Params[key]
}

// Authenticator is what the guard needs to know about the session.
type Authenticator interface {
	IsAuthenticated() bool
}

type Router struct {
	mux       *chi.Mux
	byPattern map[string]Route
	log       logging.Logger

	mu      sync.RWMutex
	guard   Authenticator
	current Match
	onNav   func(Match)
}

func New(log logging.Logger) *Router {
	if log == nil {
		log = logging.Discard()
	}
	r := &Router{
		mux:       chi.NewRouter(),
		byPattern: make(map[string]Route, len(Table)),
		log:       log.With("component", "routes"),
	}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, rt := range Table {
		r.mux.Get(rt.Pattern, noop)
		r.byPattern[rt.Pattern] = rt
	}
	r.current = Match{Route: Table[0], Path: "/", Params: map[string]string{}}
	return r
}

// SetGuard installs the session check used for protected routes. Without a
// guard every protected route redirects to login.
func (r *Router) SetGuard(a Authenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guard = a
}

// OnNavigate registers a callback run after every successful navigation.
func (r *Router) OnNavigate(fn func(Match)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onNav = fn
}

func (r *Router) Resolve(path string) (Match, error) {
	u, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return Match{}, fmt.Errorf("%w: %q", ErrNoRoute, path)
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, p) {
		return Match{}, fmt.Errorf("%w: %q", ErrNoRoute, p)
	}
	rt, ok := r.byPattern[rctx.RoutePattern()]
	if !ok {
		return Match{}, fmt.Errorf("%w: %q", ErrNoRoute, p)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return Match{Route: rt, Path: p, Query: u.Query(), Params: params}, nil
}

// Navigate resolves path and makes it current. A protected route visited
// without a session lands on the login route instead; that is not an error.
func (r *Router) Navigate(path string) error {
	m, err := r.Resolve(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if m.Route.Protected && (r.guard == nil || !r.guard.IsAuthenticated()) {
		r.log.Debug(context.Background(), "redirecting to login", "from", m.Path)
		m, _ = r.Resolve(LoginPath)
		m.Query = url.Values{"next": []string{path}}
	}
	r.current = m
	fn := r.onNav
	r.mu.Unlock()

	if fn != nil {
		fn(m)
	}
	return nil
}

func (r *Router) Current() Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

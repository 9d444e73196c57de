// Package gatewaytest provides an in-process fake of the account backend and
// the countries API for tests.
//
// Backend endpoints live under /api, the countries dataset under /v3.1:
//
//	srv := gatewaytest.New(t)
//	srv.SeedCountries(gatewaytest.SampleCountries()...)
//	client, _ := gateway.NewClient(srv.APIURL())
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Call is one request observed by the server.
type Call struct {
	Method        string
	Path          string
	Query         string
	RequestID     string
	Authorization string
}

type failure struct {
	status int
	msg    string
}

type account struct {
	user     models.User
	password string
}

type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	accounts    map[string]*account // by user id
	tokens      map[string]string   // bearer token -> user id
	resetTokens map[string]string   // reset token -> user id
	favorites   map[string][]*models.Favorite
	countries   []models.Country
	failures    map[string]failure
	calls       []Call
	now         func() time.Time
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		accounts:    map[string]*account{},
		tokens:      map[string]string{},
		resetTokens: map[string]string{},
		favorites:   map[string][]*models.Favorite{},
		failures:    map[string]failure{},
		now:         time.Now,
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

// APIURL is the base URL of the account backend.
func (s *Server) APIURL() string { return s.srv.URL + "/api" }

// CountriesURL is the base URL of the countries dataset.
func (s *Server) CountriesURL() string { return s.srv.URL + "/v3.1" }

func (s *Server) Close() { s.srv.Close() }

func (s *Server) SeedCountries(items ...models.Country) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countries = append(s.countries, items...)
}

// SeedUser creates an account and returns its bearer token.
func (s *Server) SeedUser(name, email, password string) (models.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(name, email, password)
}

// Fail makes every request to path (e.g. "/api/auth/login") answer status
// with {"msg": msg} until Recover is called. An empty msg sends no body.
func (s *Server) Fail(path string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, msg: msg}
}

func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Calls returns a copy of the request log.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount counts logged requests matching method and path.
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// ResetToken returns the last password-reset token issued for email.
func (s *Server) ResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, id := range s.resetTokens {
		if a := s.accounts[id]; a != nil && strings.EqualFold(a.user.Email, email) {
			return tok
		}
	}
	return ""
}

// Favorites returns the stored records of a user, soft-deleted included.
func (s *Server) Favorites(userID string) []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Favorite, 0, len(s.favorites[userID]))
	for _, f := range s.favorites[userID] {
		out = append(out, *f)
	}
	return out
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.inject)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/forgot-password", s.forgotPassword)
		r.Put("/auth/reset-password/{token}", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/users", s.profile)
			r.Put("/users", s.updateProfile)
			r.Delete("/users", s.deleteAccount)
			r.Get("/users/{id}", s.userByID)
			r.Get("/favourites", s.listFavorites)
			r.Post("/favourites", s.addFavorite)
			r.Delete("/favourites/{id}", s.removeFavorite)
		})
	})

	r.Route("/v3.1", func(r chi.Router) {
		r.Get("/all", s.allCountries)
		r.Get("/name/{name}", s.countriesByName)
		r.Get("/region/{region}", s.countriesByRegion)
		r.Get("/lang/{lang}", s.countriesByLanguage)
		r.Get("/alpha/{code}", s.countryByCode)
		r.Get("/independent", s.independentCountries)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			RequestID:     r.Header.Get(common.RequestIDHeader),
			Authorization: r.Header.Get(common.AuthorizationHeader),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if f.msg == "" {
			w.WriteHeader(f.status)
			return
		}
		writeJSON(w, f.status, map[string]string{"msg": f.msg})
	})
}

type ctxKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeader)
		tok, ok := strings.CutPrefix(h, common.BearerPrefix)
		if !ok || tok == "" {
			writeMsg(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		s.mu.Lock()
		id, ok := s.tokens[tok]
		s.mu.Unlock()
		if !ok {
			writeMsg(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), id)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}

// param returns a route parameter with any remaining escaping removed.
func param(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (s *Server) createLocked(name, email, password string) (models.User, string) {
	now := s.now().UTC()
	u := models.User{ID: uuid.NewString(), Name: name, Email: strings.ToLower(email), CreatedAt: &now}
	s.accounts[u.ID] = &account{user: u, password: password}
	tok := uuid.NewString()
	s.tokens[tok] = u.ID
	return u, tok
}

func (s *Server) findByEmailLocked(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return a
		}
	}
	return nil
}

func sortedCountries(items []models.Country) []models.Country {
	out := make([]models.Country, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CCA3 < out[j].CCA3 })
	return out
}

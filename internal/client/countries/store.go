// Package countries is the query store behind the country list: it turns
// user intents (load all, search, filter by region or language) into calls
// on a Source and keeps a consistent {items, loading, err} view.
//
// Every call takes a fresh sequence number before going to the network.
// When a response arrives after a newer call was issued it is dropped and
// the call returns ErrSuperseded; only the newest call may change items,
// err or loading.
package countries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrSuperseded = errors.New("superseded by a newer request")

// Regions accepted by ByRegion.
var Regions = []string{"Africa", "Americas", "Antarctic", "Asia", "Europe", "Oceania"}

type QueryKind string

const (
	QueryAll         QueryKind = "all"
	QueryName        QueryKind = "name"
	QueryRegion      QueryKind = "region"
	QueryLanguage    QueryKind = "language"
	QueryIndependent QueryKind = "independent"
)

type Query struct {
	Kind QueryKind
	Arg  string
}

func (q Query) String() string {
	if q.Arg == "" {
		return string(q.Kind)
	}
	return fmt.Sprintf("%s=%s", q.Kind, q.Arg)
}

// View is a snapshot of the store. Query is the most recently issued
// query; while it fails Items still hold the last successful result.
type View struct {
	Items   []models.Country
	Loading bool
	Err     error
	Query   Query
}

// Message is the banner text for Err, empty when there is no error.
func (v View) Message() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

type Store struct {
	src Source
	log logging.Logger

	mu      sync.Mutex
	seq     uint64
	items   []models.Country
	loading bool
	err     error
	query   Query

	subMu   sync.Mutex
	subs    map[int]func(View)
	nextSub int
}

func New(src Source, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{
		src:   src,
		log:   log.With("component", "countries"),
		items: []models.Country{},
		subs:  map[int]func(View){},
	}
}

func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Store) viewLocked() View {
	items := make([]models.Country, len(s.items))
	copy(items, s.items)
	return View{Items: items, Loading: s.loading, Err: s.err, Query: s.query}
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(View)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	v := s.View()

	s.subMu.Lock()
	fns := make([]func(View), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (s *Store) LoadAll(ctx context.Context) error {
	return s.run(ctx, Query{Kind: QueryAll}, s.src.All)
}

// Reload clears any filter by loading the full list again.
func (s *Store) Reload(ctx context.Context) error {
	return s.LoadAll(ctx)
}

// Search looks countries up by name fragment. A blank fragment loads all.
func (s *Store) Search(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.LoadAll(ctx)
	}
	return s.run(ctx, Query{Kind: QueryName, Arg: name}, func(ctx context.Context) ([]models.Country, error) {
		return s.src.ByName(ctx, name)
	})
}

// ByRegion filters by one of Regions, matched case-insensitively. A blank
// region loads all; an unknown one is rejected without a request.
func (s *Store) ByRegion(ctx context.Context, region string) error {
	region = strings.TrimSpace(region)
	if region == "" {
		return s.LoadAll(ctx)
	}
	canonical, ok := NormalizeRegion(region)
	if !ok {
		return gateway.NewValidationError("by_region", map[string]string{
			"region": fmt.Sprintf("Unknown region %q (choose one of %s)", region, strings.Join(Regions, ", ")),
		})
	}
	return s.run(ctx, Query{Kind: QueryRegion, Arg: canonical}, func(ctx context.Context) ([]models.Country, error) {
		items, err := s.src.ByRegion(ctx, canonical)
		if err != nil {
			return nil, err
		}
		out := make([]models.Country, 0, len(items))
		for _, c := range items {
			if strings.EqualFold(c.Region, canonical) {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

// ByLanguage filters by language name or code. A blank value loads all.
func (s *Store) ByLanguage(ctx context.Context, lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return s.LoadAll(ctx)
	}
	return s.run(ctx, Query{Kind: QueryLanguage, Arg: lang}, func(ctx context.Context) ([]models.Country, error) {
		return s.src.ByLanguage(ctx, lang)
	})
}

func (s *Store) Independent(ctx context.Context) error {
	return s.run(ctx, Query{Kind: QueryIndependent}, s.src.Independent)
}

// Country fetches a single country for the detail view. It does not touch
// the list state.
func (s *Store) Country(ctx context.Context, code string) (models.Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.Country{}, gateway.NewValidationError("by_code", map[string]string{"code": "Country code is required"})
	}
	return s.src.ByCode(ctx, code)
}

// NormalizeRegion maps user input such as "americas" or "EUROPE" onto the
// canonical region name.
func NormalizeRegion(region string) (string, bool) {
	title := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(region)))
	for _, r := range Regions {
		if r == title {
			return r, true
		}
	}
	return "", false
}

func (s *Store) run(ctx context.Context, q Query, fetch func(context.Context) ([]models.Country, error)) error {
	s.mu.Lock()
	s.seq++
	mine := s.seq
	s.loading = true
	s.query = q
	s.mu.Unlock()
	s.notify()

	defer func() {
		s.mu.Lock()
		if s.seq == mine {
			s.loading = false
		}
		s.mu.Unlock()
		s.notify()
	}()

	s.log.Debug(ctx, "query started", "query", q.String(), "seq", mine)
	items, err := fetch(ctx)

	// no match is an empty result, not a failure
	if err != nil && q.Kind != QueryAll && errors.Is(err, gateway.ErrNotFound) {
		items, err = []models.Country{}, nil
	}
	if items == nil {
		items = []models.Country{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != mine {
		s.log.Debug(ctx, "dropping stale response", "query", q.String(), "seq", mine, "current", s.seq)
		return ErrSuperseded
	}
	if err != nil {
		s.err = err
		s.log.Debug(ctx, "query failed, keeping previous items", "query", q.String(), "err", err)
		return err
	}
	s.items = items
	s.err = nil
	s.log.Debug(ctx, "query finished", "query", q.String(), "count", len(items))
	return nil
}

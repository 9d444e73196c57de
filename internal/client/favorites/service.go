// Package favorites manages the user's bookmarked countries on top of the
// session's authorised backend.
//
// The backend only offers "list all", so the status of a single country is
// answered by scanning the list. Callers that ask about many countries while
// handling one interaction should wrap their context with WithRequestCache:
// the list is then fetched at most once for that context, and concurrent
// fetches are collapsed into a single request.
package favorites

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/countrybook/internal/client/forms"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/logging"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidCode = errors.New("invalid country code")
	ErrNotFavorite = errors.New("country is not a favorite")
)

// Backend is the subset of *gateway.Backend the service needs.
type Backend interface {
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, countryCode string) (models.Favorite, error)
	RemoveFavorite(ctx context.Context, id string) (*models.Favorite, error)
}

type Service struct {
	api   Backend
	log   logging.Logger
	forms *forms.Validator
	group singleflight.Group
}

func New(api Backend, log logging.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{api: api, log: log.With("component", "favorites"), forms: forms.New()}
}

type cacheKey struct{}

type requestCache struct {
	mu   sync.Mutex
	favs []models.Favorite
	err  error
	ok   bool
}

// WithRequestCache returns a context under which List results, failures
// included, are memoised until a write through the service invalidates them.
func WithRequestCache(ctx context.Context) context.Context {
	if cacheFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, cacheKey{}, &requestCache{})
}

func cacheFrom(ctx context.Context) *requestCache {
	c, _ := ctx.Value(cacheKey{}).(*requestCache)
	return c
}

func (c *requestCache) get() ([]models.Favorite, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.favs), c.ok, c.err
}

func (c *requestCache) set(favs []models.Favorite, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.favs, c.err, c.ok = clone(favs), err, true
	c.mu.Unlock()
}

func (c *requestCache) invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.favs, c.err, c.ok = nil, nil, false
	c.mu.Unlock()
}

func clone(favs []models.Favorite) []models.Favorite {
	if favs == nil {
		return nil
	}
	out := make([]models.Favorite, len(favs))
	copy(out, favs)
	return out
}

// List returns every favorite record, soft-deleted ones included.
//
// Concurrent calls share one backend request. The shared request is detached
// from the caller's cancellation so one caller giving up does not fail the
// others; a cancelled caller returns ctx.Err() without waiting for it.
func (s *Service) List(ctx context.Context) ([]models.Favorite, error) {
	cache := cacheFrom(ctx)
	if favs, ok, err := cache.get(); ok {
		if err != nil {
			return nil, err
		}
		return favs, nil
	}

	ch := s.group.DoChan("list", func() (any, error) {
		return s.api.ListFavorites(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		cache.set(nil, res.Err)
		return nil, res.Err
	}
	if res.Shared {
		s.log.Debug(ctx, "favorites list shared with a concurrent caller")
	}

	favs := clone(res.Val.([]models.Favorite))
	if favs == nil {
		favs = []models.Favorite{}
	}
	cache.set(favs, nil)
	return favs, nil
}

// Active returns only the favorites currently in the user's list.
func (s *Service) Active(ctx context.Context) ([]models.Favorite, error) {
	favs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.ActiveFavorites(favs), nil
}

// Status reports whether code is an active favorite. Lookup failures are
// logged and reported as "not a favorite".
func (s *Service) Status(ctx context.Context, code string) (models.Favorite, bool) {
	code = normalize(code)
	favs, err := s.List(ctx)
	if err != nil {
		s.log.Warn(ctx, "favorite status unavailable", "code", code, "err", err)
		return models.Favorite{}, false
	}
	return findActive(favs, code)
}

func findActive(favs []models.Favorite, code string) (models.Favorite, bool) {
	for _, f := range favs {
		if f.Active() && strings.EqualFold(f.CountryCode, code) {
			return f, true
		}
	}
	return models.Favorite{}, false
}

// Add bookmarks code. When it is already an active favorite the existing
// record is returned and no request is made.
func (s *Service) Add(ctx context.Context, code string) (models.Favorite, error) {
	code = normalize(code)
	if err := s.validate(code); err != nil {
		return models.Favorite{}, err
	}

	if favs, err := s.List(ctx); err != nil {
		s.log.Warn(ctx, "could not check for an existing favorite", "code", code, "err", err)
	} else if f, ok := findActive(favs, code); ok {
		return f, nil
	}

	fav, err := s.api.AddFavorite(ctx, code)
	s.invalidate(ctx)
	if err != nil {
		return models.Favorite{}, err
	}
	s.log.Debug(ctx, "favorite added", "code", code, "id", fav.ID)
	return fav, nil
}

// Remove soft-deletes the favorite with the given id and returns the
// updated record (nil if the backend did not send one).
func (s *Service) Remove(ctx context.Context, id string) (*models.Favorite, error) {
	fav, err := s.api.RemoveFavorite(ctx, id)
	s.invalidate(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "favorite removed", "id", id)
	return fav, nil
}

// RemoveCode removes the active favorite for a country code.
func (s *Service) RemoveCode(ctx context.Context, code string) (*models.Favorite, error) {
	code = normalize(code)
	if err := s.validate(code); err != nil {
		return nil, err
	}
	favs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	f, ok := findActive(favs, code)
	if !ok {
		return nil, &gateway.Error{Kind: gateway.KindNotFound, Op: "remove_favorite",
			Message: code + " is not in your favorites", Err: ErrNotFavorite}
	}
	return s.Remove(ctx, f.ID)
}

// Toggle adds code when it is not a favorite and removes it otherwise. It
// reports whether the country is a favorite afterwards.
func (s *Service) Toggle(ctx context.Context, code string) (bool, error) {
	code = normalize(code)
	if err := s.validate(code); err != nil {
		return false, err
	}
	if f, ok := s.Status(ctx, code); ok {
		if _, err := s.Remove(ctx, f.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := s.Add(ctx, code); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) validate(code string) error {
	err := s.forms.Validate("add_favorite", forms.Favorite{CountryCode: code})
	var ge *gateway.Error
	if errors.As(err, &ge) {
		ge.Err = ErrInvalidCode
	}
	return err
}

func (s *Service) invalidate(ctx context.Context) {
	s.group.Forget("list")
	cacheFrom(ctx).invalidate()
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Package theme keeps the colour theme of the client and persists every
// change under storage.KeyTheme.
package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/client/storage"
	"github.com/dmitrijs2005/countrybook/internal/logging"
)

type Store struct {
	mu      sync.RWMutex
	current models.Theme
	storage storage.Store
	log     logging.Logger
}

// New reads the persisted theme. A missing or unreadable value falls back
// to fallback, and an invalid fallback to light.
func New(ctx context.Context, st storage.Store, fallback models.Theme, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	s := &Store{storage: st, log: log.With("component", "theme")}

	if _, err := models.ParseTheme(string(fallback)); err != nil {
		fallback = models.ThemeLight
	}
	s.current = fallback

	raw, err := st.Get(ctx, storage.KeyTheme)
	if err != nil {
		s.log.Warn(ctx, "read persisted theme", "err", err)
		return s
	}
	if raw == nil {
		return s
	}
	t, err := models.ParseTheme(string(raw))
	if err != nil {
		s.log.Warn(ctx, "ignoring persisted theme", "value", string(raw))
		return s
	}
	s.current = t
	return s
}

func (s *Store) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set persists t and then makes it current. On a storage failure the
// current theme is unchanged.
func (s *Store) Set(ctx context.Context, t models.Theme) error {
	t, err := models.ParseTheme(string(t))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, storage.KeyTheme, []byte(t)); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	s.current = t
	s.log.Debug(ctx, "theme changed", "theme", t)
	return nil
}

func (s *Store) Toggle(ctx context.Context) (models.Theme, error) {
	next := s.Theme().Toggle()
	if err := s.Set(ctx, next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}

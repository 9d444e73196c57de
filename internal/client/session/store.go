// Package session owns the authentication lifecycle of the client: login,
// signup and logout, rehydration from durable storage, and the one place
// where a bearer credential is attached to outbound requests.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/countrybook/internal/client/forms"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/client/storage"
	"github.com/dmitrijs2005/countrybook/internal/common"
	"github.com/dmitrijs2005/countrybook/internal/logging"
)

// Route targets used after session transitions.
const (
	PathHome  = "/"
	PathLogin = "/login"
)

// Navigator moves the rendering layer to another view.
type Navigator interface {
	Navigate(path string) error
}

type Store struct {
	// writeMu serialises commits so storage and memory change together.
	writeMu sync.Mutex
	mu      sync.RWMutex
	user    *models.User
	token   string

	storage storage.Store
	nav     Navigator
	log     logging.Logger
	backend *gateway.Backend
	forms   *forms.Validator
}

// New builds the session store and rehydrates it from st. The session is
// authenticated only when both the user record and the token are present
// and the user record parses; anything else starts logged out.
func New(ctx context.Context, client *gateway.Client, st storage.Store, nav Navigator, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	s := &Store{
		storage: st,
		nav:     nav,
		log:     log.With("component", "session"),
		forms:   forms.New(),
	}
	s.backend = gateway.NewBackend(client, s)
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	rawUser, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		s.log.Warn(ctx, "read persisted user", "err", err)
	}
	rawToken, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		s.log.Warn(ctx, "read persisted token", "err", err)
	}

	var user *models.User
	if len(rawUser) > 0 {
		var u models.User
		if err := json.Unmarshal(rawUser, &u); err != nil {
			s.log.Warn(ctx, "discarding unreadable persisted user", "err", err)
		} else {
			user = &u
		}
	}
	token := string(rawToken)

	if user == nil || token == "" {
		if user != nil || token != "" || len(rawUser) > 0 {
			s.log.Info(ctx, "persisted session incomplete, starting logged out",
				"has_user", user != nil, "has_token", token != "")
			if err := s.commit(ctx, nil, ""); err != nil {
				s.log.Warn(ctx, "clear incomplete session", "err", err)
			}
		}
		return
	}

	s.user, s.token = user, token
	s.log.Debug(ctx, "session rehydrated", "user_id", user.ID)
}

// commit is the only writer of session state. Storage is updated first, in
// one transaction; memory follows only if storage succeeded.
func (s *Store) commit(ctx context.Context, user *models.User, token string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.commitLocked(ctx, user, token)
}

// commitLocked requires writeMu.
func (s *Store) commitLocked(ctx context.Context, user *models.User, token string) error {
	var err error
	if user != nil && token != "" {
		var raw []byte
		raw, err = json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		err = s.storage.Update(ctx, func(ctx context.Context, tx storage.Store) error {
			if err := tx.Set(ctx, storage.KeyUser, raw); err != nil {
				return err
			}
			return tx.Set(ctx, storage.KeyToken, []byte(token))
		})
	} else {
		user, token = nil, ""
		err = s.storage.Update(ctx, func(ctx context.Context, tx storage.Store) error {
			if err := tx.Delete(ctx, storage.KeyUser); err != nil {
				return err
			}
			return tx.Delete(ctx, storage.KeyToken)
		})
	}
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.setMemory(user, token)
	return nil
}

func (s *Store) setMemory(user *models.User, token string) {
	s.mu.Lock()
	s.user, s.token = user, token
	s.mu.Unlock()
}

func (s *Store) navigate(ctx context.Context, path string) {
	if s.nav == nil {
		return
	}
	if err := s.nav.Navigate(path); err != nil {
		s.log.Warn(ctx, "navigation failed", "path", path, "err", err)
	}
}

// Authorize attaches the bearer credential of the current session to req.
func (s *Store) Authorize(req *http.Request) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return notAuthenticated("authorize")
	}
	req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	return nil
}

// Backend returns the account API bound to this session's credentials.
func (s *Store) Backend() *gateway.Backend {
	return s.backend
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// User returns a copy of the signed-in user.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login exchanges credentials for a session. On failure the previous
// session, if any, is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	if err := s.forms.Validate("login", forms.Login{Email: email, Password: password}); err != nil {
		return models.AuthResponse{}, opError(ErrLoginFailed, err, msgLoginFailed)
	}

	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return models.AuthResponse{}, opError(ErrLoginFailed, err, msgLoginFailed)
	}
	if err := s.establish(ctx, resp); err != nil {
		return models.AuthResponse{}, &OpError{Op: ErrLoginFailed, Message: msgLoginFailed, Err: err}
	}

	s.log.Info(ctx, "logged in", "user_id", resp.User.ID)
	s.navigate(ctx, PathHome)
	return resp, nil
}

// Signup registers a new account and signs it in. confirm must repeat
// password; nothing is sent when it does not.
func (s *Store) Signup(ctx context.Context, name, email, password, confirm string) (models.AuthResponse, error) {
	form := forms.Signup{Name: name, Email: email, Password: password, ConfirmPassword: confirm}
	if err := s.forms.Validate("signup", form); err != nil {
		return models.AuthResponse{}, opError(ErrRegistrationFailed, err, msgRegistrationFailed)
	}

	resp, err := s.backend.Register(ctx, name, email, password)
	if err != nil {
		return models.AuthResponse{}, opError(ErrRegistrationFailed, err, msgRegistrationFailed)
	}
	if err := s.establish(ctx, resp); err != nil {
		return models.AuthResponse{}, &OpError{Op: ErrRegistrationFailed, Message: msgRegistrationFailed, Err: err}
	}

	s.log.Info(ctx, "registered", "user_id", resp.User.ID)
	s.navigate(ctx, PathHome)
	return resp, nil
}

func (s *Store) establish(ctx context.Context, resp models.AuthResponse) error {
	if resp.Token == "" {
		return &gateway.Error{Kind: gateway.KindUnknown, Op: "establish", Message: "Server returned no token"}
	}
	user := resp.User
	return s.commit(ctx, &user, resp.Token)
}

// Logout clears the session in memory and in storage and returns to the
// login view. Calling it while logged out is a no-op apart from
// navigation. Memory is cleared even when storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	err := s.commitLocked(ctx, nil, "")
	if err != nil {
		s.setMemory(nil, "")
	}
	s.writeMu.Unlock()
	if err != nil {
		s.log.Error(ctx, "logout could not clear persisted session", "err", err)
	}
	s.navigate(ctx, PathLogin)
	return err
}

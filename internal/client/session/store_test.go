package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway/gatewaytest"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/client/storage"
	"github.com/dmitrijs2005/countrybook/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeNavigator struct {
	mu    sync.Mutex
	Paths []string
}

func (f *fakeNavigator) Navigate(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths = append(f.Paths, path)
	return nil
}

func (f *fakeNavigator) Last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Paths) == 0 {
		return ""
	}
	return f.Paths[len(f.Paths)-1]
}

// failingStore wraps a real store and fails Update while UpdateErr is set.
type failingStore struct {
	storage.Store
	UpdateErr error
}

func (f *failingStore) Update(ctx context.Context, fn func(ctx context.Context, tx storage.Store) error) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	return f.Store.Update(ctx, fn)
}

// overlapStore wraps a real store and records how many Update calls ran at
// the same time.
type overlapStore struct {
	storage.Store
	mu       sync.Mutex
	inFlight int
	MaxSeen  int
}

func (o *overlapStore) Update(ctx context.Context, fn func(ctx context.Context, tx storage.Store) error) error {
	o.mu.Lock()
	o.inFlight++
	if o.inFlight > o.MaxSeen {
		o.MaxSeen = o.inFlight
	}
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
	}()
	time.Sleep(2 * time.Millisecond)
	return o.Store.Update(ctx, fn)
}

// ---- helpers ----

type env struct {
	srv   *gatewaytest.Server
	store *storage.SQLiteStore
	path  string
	nav   *fakeNavigator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := storage.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return &env{srv: gatewaytest.New(t), store: st, path: path, nav: &fakeNavigator{}}
}

func (e *env) client(t *testing.T) *gateway.Client {
	t.Helper()
	c, err := gateway.NewClient(e.srv.APIURL())
	require.NoError(t, err)
	return c
}

func (e *env) session(t *testing.T) *Store {
	t.Helper()
	return New(context.Background(), e.client(t), e.store, e.nav, nil)
}

func persisted(t *testing.T, st storage.Store, key string) []byte {
	t.Helper()
	v, err := st.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

// ---- tests ----

func TestNew_EmptyStorageIsLoggedOut(t *testing.T) {
	e := newEnv(t)
	s := e.session(t)

	assert.False(t, s.IsAuthenticated())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Empty(t, s.Token())
}

func TestLogin_SuccessPersistsAndNavigates(t *testing.T) {
	e := newEnv(t)
	user, _ := e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	s := e.session(t)

	resp, err := s.Login(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, resp.Token, s.Token())
	got, _ := s.User()
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, PathHome, e.nav.Last())

	assert.Equal(t, []byte(resp.Token), persisted(t, e.store, storage.KeyToken))
	assert.Contains(t, string(persisted(t, e.store, storage.KeyUser)), user.ID)
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	e := newEnv(t)
	e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	s := e.session(t)

	_, err := s.Login(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)
	before := s.Token()
	navs := len(e.nav.Paths)

	_, err = s.Login(context.Background(), "ann@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, "Invalid credentials", err.Error())

	assert.Equal(t, before, s.Token())
	assert.Equal(t, []byte(before), persisted(t, e.store, storage.KeyToken))
	assert.Len(t, e.nav.Paths, navs, "failed login does not navigate")
}

func TestLogin_NetworkFailureUsesFallbackMessage(t *testing.T) {
	e := newEnv(t)
	e.srv.Fail("/api/auth/login", http.StatusServiceUnavailable, "")
	s := e.session(t)

	_, err := s.Login(context.Background(), "ann@example.com", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.Equal(t, "Login failed", err.Error())

	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, ErrLoginFailed, op.Op)
}

func TestLogin_ValidationHappensBeforeNetwork(t *testing.T) {
	e := newEnv(t)
	s := e.session(t)

	_, err := s.Login(context.Background(), "not-an-email", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, 0, e.srv.CallCount(http.MethodPost, "/api/auth/login"))
}

func TestLogin_StorageFailureKeepsMemoryUntouched(t *testing.T) {
	e := newEnv(t)
	e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	fs := &failingStore{Store: e.store, UpdateErr: errors.New("disk full")}
	s := New(context.Background(), e.client(t), fs, e.nav, nil)

	_, err := s.Login(context.Background(), "ann@example.com", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, "Login failed", err.Error())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, persisted(t, e.store, storage.KeyToken))
}

func TestSignup(t *testing.T) {
	e := newEnv(t)
	s := e.session(t)
	ctx := context.Background()

	resp, err := s.Signup(ctx, "Bob", "bob@example.com", "secret12", "secret12")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, PathHome, e.nav.Last())

	_, err = s.Signup(ctx, "Bob", "bob@example.com", "secret12", "secret12")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.NotErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, "User already exists", err.Error())

	e.srv.Fail("/api/auth/register", http.StatusInternalServerError, "")
	_, err = s.Signup(ctx, "Cy", "cy@example.com", "secret12", "secret12")
	assert.Equal(t, "Registration failed", err.Error())
}

func TestSignup_PasswordRulesCheckedBeforeNetwork(t *testing.T) {
	e := newEnv(t)
	s := e.session(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "Bob", "bob@example.com", "secret1", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, "Password must be at least 8 characters long", err.Error())

	_, err = s.Signup(ctx, "Bob", "bob@example.com", "secret12", "secret13")
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, "Passwords do not match", err.Error())

	assert.Equal(t, 0, e.srv.CallCount(http.MethodPost, "/api/auth/register"))
	assert.False(t, s.IsAuthenticated())
}

func TestCommit_ConcurrentWritersKeepMemoryAndStorageInStep(t *testing.T) {
	e := newEnv(t)
	ov := &overlapStore{Store: e.store}
	s := New(context.Background(), e.client(t), ov, e.nav, nil)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &models.User{ID: fmt.Sprintf("user-%d", i), Name: "U", Email: "u@example.com"}
			if i%3 == 0 {
				_ = s.Logout(context.Background())
				return
			}
			assert.NoError(t, s.commit(context.Background(), u, fmt.Sprintf("token-%d", i)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ov.MaxSeen, "commits must not overlap")

	token := s.Token()
	assert.Equal(t, token, string(persisted(t, e.store, storage.KeyToken)))
	if u, ok := s.User(); ok {
		assert.Contains(t, string(persisted(t, e.store, storage.KeyUser)), u.ID)
	} else {
		assert.Nil(t, persisted(t, e.store, storage.KeyUser))
	}
}

func TestLogout_ClearsEverythingAndIsIdempotent(t *testing.T) {
	e := newEnv(t)
	e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	s := e.session(t)
	ctx := context.Background()

	_, err := s.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, persisted(t, e.store, storage.KeyUser))
	assert.Nil(t, persisted(t, e.store, storage.KeyToken))
	assert.Equal(t, PathLogin, e.nav.Last())

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
}

func TestLogout_StorageFailureStillClearsMemory(t *testing.T) {
	e := newEnv(t)
	e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	fs := &failingStore{Store: e.store}
	s := New(context.Background(), e.client(t), fs, e.nav, nil)

	_, err := s.Login(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)

	fs.UpdateErr = errors.New("locked")
	require.Error(t, s.Logout(context.Background()))
	assert.False(t, s.IsAuthenticated())
}

func TestRehydration(t *testing.T) {
	e := newEnv(t)
	e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	first := e.session(t)
	resp, err := first.Login(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)

	second := e.session(t)
	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, resp.Token, second.Token())
	u, ok := second.User()
	require.True(t, ok)
	assert.Equal(t, resp.User.ID, u.ID)
}

func TestRehydration_IncompleteOrCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data map[string]string
	}{
		{"token only", map[string]string{storage.KeyToken: "tok"}},
		{"user only", map[string]string{storage.KeyUser: `{"id":"1","name":"A"}`}},
		{"corrupt user", map[string]string{storage.KeyUser: `{not json`, storage.KeyToken: "tok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()
			for k, v := range tt.data {
				require.NoError(t, e.store.Set(ctx, k, []byte(v)))
			}

			s := e.session(t)
			assert.False(t, s.IsAuthenticated())
			assert.Empty(t, s.Token())

			all, err := e.store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all, "leftover half of the session is removed")
		})
	}
}

func TestAuthorize(t *testing.T) {
	e := newEnv(t)
	e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	s := e.session(t)

	req, _ := http.NewRequest(http.MethodGet, "http://x/users", nil)
	err := s.Authorize(req)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.Empty(t, req.Header.Get(common.AuthorizationHeader))

	resp, err := s.Login(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, s.Authorize(req))
	assert.Equal(t, "Bearer "+resp.Token, req.Header.Get(common.AuthorizationHeader))
}

func TestBackend_UsesSessionCredentials(t *testing.T) {
	e := newEnv(t)
	e.srv.SeedUser("Ann", "ann@example.com", "secret1")
	s := e.session(t)
	ctx := context.Background()

	_, err := s.Backend().ListFavorites(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, e.srv.CallCount(http.MethodGet, "/api/favourites"), "no request without a token")

	_, err = s.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.Backend().ListFavorites(ctx)
	require.NoError(t, err)

	calls := e.srv.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "Bearer "+s.Token(), last.Authorization)
}

func TestClaims(t *testing.T) {
	e := newEnv(t)
	s := e.session(t)

	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	u := models.User{ID: "user-1", Name: "Ann"}
	require.NoError(t, s.commit(context.Background(), &u, tok))

	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
}

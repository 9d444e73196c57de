package gateway_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway/gatewaytest"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticToken authorises every request with a fixed bearer token.
type staticToken string

func (s staticToken) Authorize(req *http.Request) error {
	req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+string(s))
	return nil
}

func newBackend(t *testing.T, srv *gatewaytest.Server, token string) *gateway.Backend {
	t.Helper()
	c, err := gateway.NewClient(srv.APIURL())
	require.NoError(t, err)
	return gateway.NewBackend(c, staticToken(token))
}

func TestBackend_RegisterAndLogin(t *testing.T) {
	srv := gatewaytest.New(t)
	b := newBackend(t, srv, "")
	ctx := context.Background()

	reg, err := b.Register(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "Ann", reg.User.Name)
	assert.NotEmpty(t, reg.User.ID)

	_, err = b.Register(ctx, "Ann", "ann@example.com", "secret1")
	require.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, "User already exists", err.Error())

	login, err := b.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = b.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, "Invalid credentials", gateway.MessageOf(err, "Login failed"))

	for _, c := range srv.Calls() {
		assert.Empty(t, c.Authorization, "auth endpoints are public")
		assert.NotEmpty(t, c.RequestID)
	}
}

func TestBackend_ProfileRequiresToken(t *testing.T) {
	srv := gatewaytest.New(t)
	user, tok := srv.SeedUser("Bob", "bob@example.com", "pw1234")
	ctx := context.Background()

	_, err := newBackend(t, srv, "bogus").Profile(ctx)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)

	b := newBackend(t, srv, tok)
	got, err := b.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	upd, err := b.UpdateProfile(ctx, models.ProfileUpdate{Bio: "hello", Location: "Riga"})
	require.NoError(t, err)
	assert.Equal(t, "hello", upd.Bio)
	assert.Equal(t, "Bob", upd.Name)

	byID, err := b.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Riga", byID.Location)

	_, err = b.UserByID(ctx, "missing")
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	msg, err := b.DeleteAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "User deleted", msg)

	_, err = b.Profile(ctx)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
}

func TestBackend_PasswordReset(t *testing.T) {
	srv := gatewaytest.New(t)
	srv.SeedUser("Cy", "cy@example.com", "old-pass")
	b := newBackend(t, srv, "")
	ctx := context.Background()

	_, err := b.ForgotPassword(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	msg, err := b.ForgotPassword(ctx, "cy@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	token := srv.ResetToken("cy@example.com")
	require.NotEmpty(t, token)

	_, err = b.ResetPassword(ctx, "bad-token", "new-pass")
	assert.ErrorIs(t, err, gateway.ErrValidation)

	_, err = b.ResetPassword(ctx, token, "new-pass")
	require.NoError(t, err)

	_, err = b.Login(ctx, "cy@example.com", "new-pass")
	require.NoError(t, err)
}

func TestBackend_FavoritesSoftDelete(t *testing.T) {
	srv := gatewaytest.New(t)
	srv.SeedCountries(gatewaytest.SampleCountries()...)
	user, tok := srv.SeedUser("Dee", "dee@example.com", "pw1234")
	b := newBackend(t, srv, tok)
	ctx := context.Background()

	empty, err := b.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	fav, err := b.AddFavorite(ctx, "FRA")
	require.NoError(t, err)
	assert.True(t, fav.Active())
	assert.Equal(t, "France", fav.CountryName)

	removed, err := b.RemoveFavorite(ctx, fav.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.False(t, removed.Active())

	list, err := b.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "soft-deleted record stays in the list")
	assert.False(t, list[0].Active())
	assert.Len(t, srv.Favorites(user.ID), 1)

	_, err = b.RemoveFavorite(ctx, "nope")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestBackend_FailureInjection(t *testing.T) {
	srv := gatewaytest.New(t)
	srv.Fail("/api/auth/login", http.StatusServiceUnavailable, "maintenance")
	b := newBackend(t, srv, "")

	_, err := b.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.Equal(t, "Login failed", gateway.MessageOf(err, "Login failed"))

	srv.Recover("/api/auth/login")
	_, err = b.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, gateway.ErrValidation)
}

package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
)

// Backend is the account API: authentication, profile and favorites.
type Backend struct {
	c    *Client
	auth Authorizer
}

// NewBackend binds the account endpoints to c. Calls that need a bearer
// credential pass the request through auth first.
func NewBackend(c *Client, auth Authorizer) *Backend {
	return &Backend{c: c, auth: auth}
}

type messageResponse struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func (m messageResponse) text() string {
	if m.Msg != "" {
		return m.Msg
	}
	return m.Message
}

// userResponse accepts both a bare user object and {"user": {...}}.
type userResponse struct {
	models.User
}

func (u *userResponse) UnmarshalJSON(b []byte) error {
	var env struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(b, &env); err == nil && env.User != nil {
		u.User = *env.User
		return nil
	}
	return json.Unmarshal(b, &u.User)
}

func (b *Backend) Register(ctx context.Context, name, email, password string) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := b.c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "auth/register",
		body:   map[string]string{"name": name, "email": email, "password": password},
		out:    &out,
	})
	return out, err
}

func (b *Backend) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := b.c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "auth/login",
		body:   map[string]string{"email": email, "password": password},
		out:    &out,
	})
	return out, err
}

// ForgotPassword asks the backend to mail a reset link. The returned string
// is the acknowledgement message, if any.
func (b *Backend) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out messageResponse
	err := b.c.do(ctx, call{
		op:     "forgot_password",
		method: http.MethodPost,
		path:   "auth/forgot-password",
		body:   map[string]string{"email": email},
		out:    &out,
	})
	return out.text(), err
}

func (b *Backend) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var out messageResponse
	err := b.c.do(ctx, call{
		op:     "reset_password",
		method: http.MethodPut,
		path:   "auth/reset-password/" + segment(token),
		body:   map[string]string{"password": password},
		out:    &out,
	})
	return out.text(), err
}

func (b *Backend) Profile(ctx context.Context) (models.User, error) {
	var out userResponse
	err := b.c.do(ctx, call{
		op:     "profile",
		method: http.MethodGet,
		path:   "users",
		auth:   b.auth,
		out:    &out,
	})
	return out.User, err
}

func (b *Backend) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	var out userResponse
	err := b.c.do(ctx, call{
		op:     "update_profile",
		method: http.MethodPut,
		path:   "users",
		body:   upd,
		auth:   b.auth,
		out:    &out,
	})
	return out.User, err
}

func (b *Backend) DeleteAccount(ctx context.Context) (string, error) {
	var out messageResponse
	err := b.c.do(ctx, call{
		op:     "delete_account",
		method: http.MethodDelete,
		path:   "users",
		auth:   b.auth,
		out:    &out,
	})
	return out.text(), err
}

func (b *Backend) UserByID(ctx context.Context, id string) (models.User, error) {
	var out userResponse
	err := b.c.do(ctx, call{
		op:     "user_by_id",
		method: http.MethodGet,
		path:   "users/" + segment(id),
		auth:   b.auth,
		out:    &out,
	})
	return out.User, err
}

// ListFavorites returns every favorite record of the user, including the
// soft-deleted ones.
func (b *Backend) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	var out []models.Favorite
	err := b.c.do(ctx, call{
		op:     "list_favorites",
		method: http.MethodGet,
		path:   "favourites",
		auth:   b.auth,
		out:    &out,
	})
	if out == nil {
		out = []models.Favorite{}
	}
	return out, err
}

func (b *Backend) AddFavorite(ctx context.Context, countryCode string) (models.Favorite, error) {
	var out models.Favorite
	err := b.c.do(ctx, call{
		op:     "add_favorite",
		method: http.MethodPost,
		path:   "favourites",
		body:   map[string]string{"countryCode": countryCode},
		auth:   b.auth,
		out:    &out,
	})
	return out, err
}

// RemoveFavorite soft-deletes a favorite and returns the updated record,
// or nil when the backend answers {"favorite": null}.
func (b *Backend) RemoveFavorite(ctx context.Context, id string) (*models.Favorite, error) {
	var out struct {
		Favorite *models.Favorite `json:"favorite"`
	}
	err := b.c.do(ctx, call{
		op:     "remove_favorite",
		method: http.MethodDelete,
		path:   "favourites/" + segment(id),
		auth:   b.auth,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Favorite, nil
}

package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/countrybook/internal/client/forms"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// DeleteConfirmation must be typed verbatim to delete an account.
const DeleteConfirmation = "DELETE"

// RequestPasswordReset asks the backend to send a reset link to email.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := s.forms.Validate("forgot_password", forms.ForgotPassword{Email: email}); err != nil {
		return "", opError(ErrPasswordResetFailed, err, msgForgotFailed)
	}
	msg, err := s.backend.ForgotPassword(ctx, email)
	if err != nil {
		return "", opError(ErrPasswordResetFailed, err, msgForgotFailed)
	}
	return msg, nil
}

// ConfirmPasswordReset sets a new password using the emailed token and
// moves to the login view.
func (s *Store) ConfirmPasswordReset(ctx context.Context, token, password, confirm string) (string, error) {
	form := forms.ResetPassword{Token: token, Password: password, ConfirmPassword: confirm}
	if err := s.forms.Validate("reset_password", form); err != nil {
		return "", opError(ErrPasswordResetFailed, err, msgResetFailed)
	}
	msg, err := s.backend.ResetPassword(ctx, token, password)
	if err != nil {
		return "", opError(ErrPasswordResetFailed, err, msgResetFailed)
	}
	s.navigate(ctx, PathLogin)
	return msg, nil
}

// RefreshProfile reloads the user from the backend and persists the merged
// record. A rejected token ends the session.
func (s *Store) RefreshProfile(ctx context.Context) (models.User, error) {
	current, ok := s.User()
	if !ok {
		return models.User{}, opError(ErrProfileFailed, notAuthenticated("profile"), msgProfileLoadFailed)
	}

	fetched, err := s.backend.Profile(ctx)
	if err != nil {
		s.expireOnAuthError(ctx, err)
		return models.User{}, opError(ErrProfileFailed, err, msgProfileLoadFailed)
	}
	return s.storeUser(ctx, current.Merge(fetched), msgProfileLoadFailed)
}

// UpdateProfile sends the edited fields and persists the merged record.
func (s *Store) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	current, ok := s.User()
	if !ok {
		return models.User{}, opError(ErrProfileFailed, notAuthenticated("update_profile"), msgProfileSaveFailed)
	}
	if err := s.forms.Validate("update_profile", forms.Profile(upd)); err != nil {
		return models.User{}, opError(ErrProfileFailed, err, msgProfileSaveFailed)
	}

	updated, err := s.backend.UpdateProfile(ctx, upd)
	if err != nil {
		s.expireOnAuthError(ctx, err)
		return models.User{}, opError(ErrProfileFailed, err, msgProfileSaveFailed)
	}
	merged := current.Merge(models.User{
		Name: upd.Name, Email: upd.Email, Bio: upd.Bio, Location: upd.Location, Website: upd.Website,
	}).Merge(updated)
	return s.storeUser(ctx, merged, msgProfileSaveFailed)
}

func (s *Store) storeUser(ctx context.Context, u models.User, fallback string) (models.User, error) {
	token := s.Token()
	if token == "" {
		return models.User{}, opError(ErrProfileFailed, notAuthenticated("profile"), fallback)
	}
	if err := s.commit(ctx, &u, token); err != nil {
		return models.User{}, &OpError{Op: ErrProfileFailed, Message: fallback, Err: err}
	}
	return u, nil
}

// DeleteAccount removes the account after the user typed
// DeleteConfirmation, then logs out.
func (s *Store) DeleteAccount(ctx context.Context, confirmation string) error {
	if confirmation != DeleteConfirmation {
		return &OpError{Op: ErrDeleteAccountFailed, Message: msgConfirmDelete, Err: ErrConfirmationMismatch}
	}
	if !s.IsAuthenticated() {
		return opError(ErrDeleteAccountFailed, notAuthenticated("delete_account"), msgDeleteFailed)
	}
	if _, err := s.backend.DeleteAccount(ctx); err != nil {
		return opError(ErrDeleteAccountFailed, err, msgDeleteFailed)
	}
	s.log.Info(ctx, "account deleted")
	return s.Logout(ctx)
}

// UserByID looks up another user's public profile.
func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	return s.backend.UserByID(ctx, id)
}

func (s *Store) expireOnAuthError(ctx context.Context, err error) {
	if !errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, ErrNotAuthenticated) {
		return
	}
	s.log.Info(ctx, "token rejected by backend, ending session")
	_ = s.Logout(ctx)
}

// Claims decodes the registered claims of the session token without
// verifying its signature. The result is for display only.
func (s *Store) Claims() (*jwt.RegisteredClaims, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/countrybook/internal/client/session"
	"github.com/dmitrijs2005/countrybook/internal/common"
)

// getSimpleText, getOptionalText and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getOptionalText = GetOptionalText
	getPassword     = GetPassword
)

// Signup prompts for name, email, password and its confirmation and
// registers a new account. The new session is persisted and the client
// moves to the country list.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	resp, err := a.session.Signup(ctx, name, email, string(password), string(confirm))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", resp.User.Name)
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
// On failure the previous session state is left as it was.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", resp.User.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return err
}

func (a *App) Whoami(ctx context.Context) error {
	u, ok := a.session.User()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(a.out, "Token: %s\n", common.MaskToken(a.session.Token()))
	if claims, err := a.session.Claims(); err == nil && claims.ExpiresAt != nil {
		fmt.Fprintf(a.out, "Expires: %s\n", claims.ExpiresAt.Format(time.RFC1123))
	}
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.session.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Reset sets a new password using the token from the reset email.
func (a *App) Reset(ctx context.Context, token string) error {
	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	msg, err := a.session.ConfirmPasswordReset(ctx, token, string(password), string(confirm))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) DeleteAccount(ctx context.Context) error {
	typed, err := getSimpleText(a.reader, fmt.Sprintf("Type %q to delete your account", session.DeleteConfirmation), a.out)
	if err != nil {
		return err
	}
	if err := a.session.DeleteAccount(ctx, typed); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

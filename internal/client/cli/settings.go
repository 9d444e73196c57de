package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/client/routes"
)

// Theme handles "theme [toggle|light|dark]".
func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "Theme: %s\n", a.theme.Theme())
		return nil
	}
	if args[0] == "toggle" {
		t, err := a.theme.Toggle(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Theme: %s\n", t)
		return nil
	}
	if err := a.theme.Set(ctx, models.Theme(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Theme: %s\n", a.theme.Theme())
	return nil
}

// Go navigates to path and renders the view it lands on.
func (a *App) Go(ctx context.Context, path string) error {
	if err := a.router.Navigate(path); err != nil {
		return err
	}
	m := a.router.Current()
	fmt.Fprintf(a.out, "At %s\n", m.Path)

	switch m.Route.Name {
	case routes.Countries:
		return a.List(ctx)
	case routes.CountryDetail:
		return a.showCountry(ctx, m.Param("code"))
	case routes.Profile:
		return a.Profile(ctx, nil)
	case routes.Settings:
		return a.Theme(ctx, nil)
	case routes.Login:
		fmt.Fprintln(a.out, "Type 'login' to sign in")
	case routes.Signup:
		fmt.Fprintln(a.out, "Type 'signup' to create an account")
	case routes.ForgotPassword:
		fmt.Fprintln(a.out, "Type 'forgot' to request a reset link")
	case routes.ResetPassword:
		if tok := m.Query.Get("token"); tok != "" {
			return a.Reset(ctx, tok)
		}
		fmt.Fprintln(a.out, "Invalid or expired password reset link")
	}
	return nil
}

// Export handles "export <countries|favorites> <dest>".
func (a *App) Export(ctx context.Context, args []string) error {
	var doc any
	switch args[0] {
	case "countries":
		doc = a.countries.View().Items
	case "favorites", "favourites":
		favs, err := a.favorites.Active(ctx)
		if err != nil {
			return err
		}
		doc = favs
	default:
		printlnFn("Usage: export <countries|favorites> <file|s3://bucket/key>")
		return nil
	}

	n, err := a.exporter.Export(ctx, args[1], doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d bytes to %s\n", n, args[1])
	return nil
}

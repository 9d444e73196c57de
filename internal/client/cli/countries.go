package cli

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/dmitrijs2005/countrybook/internal/client/countries"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/client/routes"
)

// Results up to this size are printed right after a query; larger ones
// only report their count.
const previewLimit = 25

func (a *App) Reload(ctx context.Context) error {
	return a.afterQuery(ctx, a.countries.Reload(ctx))
}

func (a *App) Search(ctx context.Context, name string) error {
	return a.afterQuery(ctx, a.countries.Search(ctx, name))
}

func (a *App) Region(ctx context.Context, region string) error {
	return a.afterQuery(ctx, a.countries.ByRegion(ctx, region))
}

func (a *App) Language(ctx context.Context, lang string) error {
	return a.afterQuery(ctx, a.countries.ByLanguage(ctx, lang))
}

func (a *App) Independent(ctx context.Context) error {
	return a.afterQuery(ctx, a.countries.Independent(ctx))
}

// afterQuery prints the outcome of a list query. A failed request keeps the
// previous items, so the banner is followed by the stale count.
func (a *App) afterQuery(ctx context.Context, err error) error {
	if errors.Is(err, countries.ErrSuperseded) {
		return nil
	}
	v := a.countries.View()
	if err != nil && v.Err != err {
		return err
	}
	if v.Err != nil {
		fmt.Fprintln(a.out, "Error:", v.Message())
	}
	fmt.Fprintf(a.out, "Showing %d countries\n", len(v.Items))
	if v.Err == nil && len(v.Items) > 0 && len(v.Items) <= previewLimit {
		a.renderList(ctx, v.Items)
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	v := a.countries.View()
	if v.Err != nil {
		fmt.Fprintln(a.out, "Error:", v.Message())
	}
	a.renderList(ctx, v.Items)
	fmt.Fprintf(a.out, "Showing %d countries (%s)\n", len(v.Items), v.Query)
	return nil
}

// Sorted lists the current result set ordered by name.
func (a *App) Sorted(ctx context.Context) error {
	v := a.countries.View()
	a.renderList(ctx, models.SortCountriesByName(v.Items, language.English))
	fmt.Fprintf(a.out, "Showing %d countries (%s, sorted)\n", len(v.Items), v.Query)
	return nil
}

// Show opens the guarded country detail route. Without a session the
// router lands on the login route and nothing is fetched.
func (a *App) Show(ctx context.Context, code string) error {
	if err := a.router.Navigate("/country/" + code); err != nil {
		return err
	}
	m := a.router.Current()
	if m.Route.Name != routes.CountryDetail {
		fmt.Fprintln(a.out, "Please log in to view country details")
		return nil
	}
	return a.showCountry(ctx, m.Param("code"))
}

func (a *App) showCountry(ctx context.Context, code string) error {
	c, err := a.countries.Country(ctx, code)
	if err != nil {
		return err
	}
	_, fav := a.favorites.Status(ctx, c.CCA3)
	renderCountry(a.out, c, fav)
	return nil
}

// renderList prints items, marking favorites when a session exists.
func (a *App) renderList(ctx context.Context, items []models.Country) {
	var isFav func(string) bool
	if a.isLoggedIn() {
		isFav = func(code string) bool {
			_, ok := a.favorites.Status(ctx, code)
			return ok
		}
	}
	renderCountries(a.out, items, isFav)
}

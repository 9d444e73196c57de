package cli

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
)

// Profile shows, edits or refreshes the signed-in user's profile.
func (a *App) Profile(ctx context.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "", "show", "refresh":
		return a.showProfile(ctx)
	case "edit":
		return a.editProfile(ctx)
	default:
		printlnFn("Usage: profile [edit|refresh]")
		return nil
	}
}

// showProfile loads the profile and the active favorites concurrently.
func (a *App) showProfile(ctx context.Context) error {
	var (
		user models.User
		favs []models.Favorite
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := a.session.RefreshProfile(gctx)
		user = u
		return err
	})
	g.Go(func() error {
		f, err := a.favorites.Active(gctx)
		if err != nil {
			a.log.Warn(gctx, "favorites unavailable for profile", "err", err)
			return nil
		}
		favs = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	renderProfile(a.out, user, favs)
	return nil
}

func (a *App) editProfile(ctx context.Context) error {
	current, ok := a.session.User()
	if !ok {
		_, err := a.session.RefreshProfile(ctx)
		return err
	}

	var upd models.ProfileUpdate
	fields := []struct {
		prompt string
		cur    string
		dst    *string
	}{
		{"Name", current.Name, &upd.Name},
		{"Email", current.Email, &upd.Email},
		{"Bio", current.Bio, &upd.Bio},
		{"Location", current.Location, &upd.Location},
		{"Website", current.Website, &upd.Website},
	}
	for _, f := range fields {
		v, err := getOptionalText(a.reader, f.prompt, f.cur, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	u, err := a.session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s <%s>\n", u.Name, u.Email)
	return nil
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

package cli

import (
	"context"
	"fmt"
)

// Favorites handles "fav [list|add <code>|rm <code>|status <code>]".
func (a *App) Favorites(ctx context.Context, args []string) error {
	sub, code := "list", ""
	if len(args) > 0 {
		sub = args[0]
	}
	if len(args) > 1 {
		code = args[1]
	}
	if sub != "list" && code == "" {
		printlnFn("Usage: fav [list|add <code>|rm <code>|status <code>]")
		return nil
	}

	switch sub {
	case "list":
		favs, err := a.favorites.Active(ctx)
		if err != nil {
			return err
		}
		renderFavorites(a.out, favs)
	case "add":
		f, err := a.favorites.Add(ctx, code)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Added %s to favorites\n", f.DisplayName())
	case "rm":
		if _, err := a.favorites.RemoveCode(ctx, code); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Removed %s from favorites\n", code)
	case "status":
		if _, ok := a.favorites.Status(ctx, code); ok {
			fmt.Fprintf(a.out, "%s is a favorite\n", code)
		} else {
			fmt.Fprintf(a.out, "%s is not a favorite\n", code)
		}
	default:
		printlnFn("Usage: fav [list|add <code>|rm <code>|status <code>]")
	}
	return nil
}

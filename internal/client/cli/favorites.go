package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/client/models"
)

// Fav toggles a listed story in the favorites.
func (a *App) Fav(ctx context.Context, ref string) error {
	s, err := a.findStory(ref)
	if err != nil {
		return err
	}
	on, err := a.favoriteService.Toggle(ctx, s)
	if err != nil {
		return err
	}
	if on {
		fmt.Fprintf(a.out, "Saved %s to favorites.\n", s.ID)
	} else {
		fmt.Fprintf(a.out, "Removed %s from favorites.\n", s.ID)
	}
	return nil
}

// Favs lists favorites. Arguments that name a sort field or direction set
// the order; the remaining words form the search query.
func (a *App) Favs(ctx context.Context, args []string) error {
	query, field, dir := parseFavArgs(args)

	items, err := a.favoriteService.Query(ctx, query, field, dir)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No favorites.")
		return nil
	}
	for i, f := range items {
		fmt.Fprintf(a.out, "%3d. %s (%s) %s\n", i+1, f.Name, f.CreatedAt.Local().Format(timeLayout), f.ID)
		if f.Description != "" {
			fmt.Fprintf(a.out, "      %s\n", oneLine(f.Description))
		}
	}
	return nil
}

func parseFavArgs(args []string) (string, models.SortField, models.SortDirection) {
	field, dir := models.SortByFavoritedAt, models.Descending
	var words []string
	for _, arg := range args {
		if f, err := models.ParseSortField(arg); err == nil {
			field = f
			continue
		}
		if d, err := models.ParseSortDirection(arg); err == nil {
			dir = d
			continue
		}
		words = append(words, arg)
	}
	return strings.Join(words, " "), field, dir
}

func (a *App) Unfav(ctx context.Context, id string) error {
	if err := a.favoriteService.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s from favorites.\n", id)
	return nil
}

func (a *App) ClearFavs(ctx context.Context) error {
	if err := a.favoriteService.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Favorites cleared.")
	return nil
}

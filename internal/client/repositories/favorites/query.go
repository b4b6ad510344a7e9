package favorites

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/client/models"
)

// Filter returns the stories whose name or description contains query,
// ignoring case. An empty query matches everything.
func Filter(items []models.FavoriteStory, query string) []models.FavoriteStory {
	q := strings.ToLower(query)
	out := make([]models.FavoriteStory, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Description), q) {
			out = append(out, it)
		}
	}
	return out
}

// SortStories orders items in place. Dates compare as instants and names
// case-insensitively; equal keys keep their relative order.
func SortStories(items []models.FavoriteStory, field models.SortField, dir models.SortDirection) error {
	var less func(a, b *models.FavoriteStory) bool

	switch field {
	case models.SortByFavoritedAt:
		less = func(a, b *models.FavoriteStory) bool { return a.FavoritedAt.Before(b.FavoritedAt) }
	case models.SortByCreatedAt:
		less = func(a, b *models.FavoriteStory) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case models.SortByName:
		less = func(a, b *models.FavoriteStory) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		return fmt.Errorf("unknown sort field %q", field)
	}

	switch dir {
	case models.Ascending:
		sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
	case models.Descending:
		sort.SliceStable(items, func(i, j int) bool { return less(&items[j], &items[i]) })
	default:
		return fmt.Errorf("unknown sort direction %q", dir)
	}
	return nil
}

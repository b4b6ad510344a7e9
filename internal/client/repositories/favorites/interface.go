package favorites

import (
	"context"

	"github.com/dmitrijs2005/storysync/internal/client/models"
)

type Repository interface {
	// Add stores story stamped with the current time. A duplicate id fails
	// with storage.ErrConstraint.
	Add(ctx context.Context, story models.Story) (*models.FavoriteStory, error)

	// Remove deletes by id; removing an absent id is not an error.
	Remove(ctx context.Context, id string) error

	// Get returns storage.ErrNotFound when id is not a favorite.
	Get(ctx context.Context, id string) (*models.FavoriteStory, error)
	Exists(ctx context.Context, id string) (bool, error)

	List(ctx context.Context) ([]models.FavoriteStory, error)

	// Search matches query case-insensitively against name and description.
	Search(ctx context.Context, query string) ([]models.FavoriteStory, error)

	Sort(ctx context.Context, field models.SortField, dir models.SortDirection) ([]models.FavoriteStory, error)

	// Clear removes every favorite.
	Clear(ctx context.Context) error
}

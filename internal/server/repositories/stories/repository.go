package stories

import (
	"context"

	"github.com/dmitrijs2005/storysync/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorAlreadyExists when the user already has
	// a story with the same idempotency key.
	Create(ctx context.Context, story *models.Story) (*models.Story, error)
	// FindByIdempotencyKey returns common.ErrorNotFound when no story matches.
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Story, error)
	// List returns the newest stories first.
	List(ctx context.Context, limit int) ([]*models.Story, error)
}

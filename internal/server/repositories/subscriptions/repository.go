package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/storysync/internal/server/models"
)

type Repository interface {
	// Upsert registers the endpoint, moving it to sub.UserID if another user
	// held it before.
	Upsert(ctx context.Context, sub *models.Subscription) error
	// Delete returns common.ErrorNotFound when the user holds no such endpoint.
	Delete(ctx context.Context, userID, endpoint string) error
	ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error)
}

package submissions

import (
	"context"

	"github.com/dmitrijs2005/storysync/internal/client/models"
)

type Repository interface {
	// Add queues s and returns the assigned id.
	Add(ctx context.Context, s models.NewSubmission) (int64, error)

	// Get returns storage.ErrNotFound for an unknown id.
	Get(ctx context.Context, id int64) (*models.PendingSubmission, error)

	// List returns every queued submission in creation order.
	List(ctx context.Context) ([]models.PendingSubmission, error)
	// ListUnsynced returns only submissions with synced=false.
	ListUnsynced(ctx context.Context) ([]models.PendingSubmission, error)
	Count(ctx context.Context) (int, error)

	// MarkSynced flips synced to true and stamps synced-at. Unknown ids
	// and already synced records are left alone.
	MarkSynced(ctx context.Context, id int64) error

	// Delete removes the record; deleting an absent id is not an error.
	Delete(ctx context.Context, id int64) error
}

package client

import (
	"context"

	"github.com/dmitrijs2005/storysync/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	GetStories(ctx context.Context, token string) ([]models.Story, error)
	AddStory(ctx context.Context, token string, story models.NewStory) error
	Subscribe(ctx context.Context, token string, sub models.PushSubscription) error
	Unsubscribe(ctx context.Context, token string, endpoint string) error
	// Ping reports whether the API host answers at all.
	Ping(ctx context.Context) error
}

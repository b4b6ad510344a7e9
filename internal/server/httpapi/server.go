// Package httpapi exposes the Story API over HTTP with gin.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/storysync/internal/logging"
	"github.com/dmitrijs2005/storysync/internal/server/models"
	"github.com/dmitrijs2005/storysync/internal/server/services"
)

type Authenticator interface {
	Authenticate(token string) (string, error)
}

type UserAPI interface {
	Authenticator
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

type StoryAPI interface {
	Create(ctx context.Context, userID string, in services.NewStory) (*models.Story, bool, error)
	List(ctx context.Context, limit int) ([]services.StoryView, error)
}

type SubscriptionAPI interface {
	Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, userID, endpoint string) error
}

type Handler struct {
	users         UserAPI
	stories       StoryAPI
	subscriptions SubscriptionAPI
	logger        logging.Logger
}

func NewHandler(u UserAPI, s StoryAPI, sub SubscriptionAPI, logger logging.Logger) *Handler {
	return &Handler{users: u, stories: s, subscriptions: sub, logger: logger}
}

// NewRouter mounts every route under /v1.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	v1 := r.Group("/v1")
	v1.HEAD("/", h.Ping)
	v1.GET("/", h.Ping)
	v1.POST("/register", h.Register)
	v1.POST("/login", h.Login)

	authed := v1.Group("")
	authed.Use(requireAuth(h.users))
	{
		authed.GET("/stories", h.ListStories)
		authed.POST("/stories", h.AddStory)
		authed.POST("/notifications/subscribe", h.Subscribe)
		authed.DELETE("/notifications/subscribe", h.Unsubscribe)
	}
	return r
}

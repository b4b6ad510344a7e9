package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/server/models"
	"github.com/dmitrijs2005/storysync/internal/server/repositories/repomanager"
)

type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager) *SubscriptionService {
	return &SubscriptionService{db: db, repomanager: m}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, userID, endpoint, p256dh, authKey string) (*models.Subscription, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p256dh) == "" || strings.TrimSpace(authKey) == "" {
		return nil, fmt.Errorf("%w: keys.p256dh and keys.auth are required", common.ErrorValidation)
	}

	sub := &models.Subscription{Endpoint: endpoint, UserID: userID, P256dh: p256dh, Auth: authKey}
	if err := s.repomanager.Subscriptions(s.db).Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("error saving subscription: %w", err)
	}
	return sub, nil
}

// Unsubscribe returns common.ErrorNotFound when the user holds no such
// endpoint.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", common.ErrorValidation)
	}
	return s.repomanager.Subscriptions(s.db).Delete(ctx, userID, endpoint)
}

func (s *SubscriptionService) List(ctx context.Context, userID string) ([]*models.Subscription, error) {
	return s.repomanager.Subscriptions(s.db).ListByUser(ctx, userID)
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: endpoint must be an absolute http(s) URL", common.ErrorValidation)
	}
	return nil
}

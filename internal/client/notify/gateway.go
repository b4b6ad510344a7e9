package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/storysync/internal/client/client"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storysync/internal/logging"
)

var ErrInvalidSubscription = errors.New("invalid push subscription")

// SubscriptionAPI is the server side of push registration.
type SubscriptionAPI interface {
	Subscribe(ctx context.Context, token string, sub models.PushSubscription) error
	Unsubscribe(ctx context.Context, token string, endpoint string) error
}

// CredentialProvider returns the current bearer credential ("" when logged out).
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// Displayer shows a notification to the user.
type Displayer interface {
	Show(ctx context.Context, n models.Notification) error
}

type Gateway struct {
	api    SubscriptionAPI
	creds  CredentialProvider
	meta   metadata.Repository
	logger logging.Logger
}

func NewGateway(api SubscriptionAPI, creds CredentialProvider, meta metadata.Repository, logger logging.Logger) *Gateway {
	return &Gateway{api: api, creds: creds, meta: meta, logger: logger}
}

func (g *Gateway) token(ctx context.Context) (string, error) {
	token, err := g.creds.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", client.ErrNoCredential
	}
	return token, nil
}

// Subscribe registers sub with the server and remembers its endpoint.
func (g *Gateway) Subscribe(ctx context.Context, sub models.PushSubscription) error {
	if err := validate(sub); err != nil {
		return err
	}
	token, err := g.token(ctx)
	if err != nil {
		return err
	}

	if err := g.api.Subscribe(ctx, token, sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if err := g.meta.Set(ctx, metadata.KeyPushEndpoint, []byte(sub.Endpoint)); err != nil {
		return err
	}

	g.logger.Info(ctx, "push subscription registered", "endpoint", sub.Endpoint)
	return nil
}

// Unsubscribe removes endpoint from the server. An empty endpoint means the
// one remembered by Subscribe.
func (g *Gateway) Unsubscribe(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		stored, err := g.Endpoint(ctx)
		if err != nil {
			return err
		}
		if stored == "" {
			return fmt.Errorf("%w: not subscribed", ErrInvalidSubscription)
		}
		endpoint = stored
	}

	token, err := g.token(ctx)
	if err != nil {
		return err
	}
	if err := g.api.Unsubscribe(ctx, token, endpoint); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}

	stored, err := g.Endpoint(ctx)
	if err != nil {
		return err
	}
	if stored == endpoint {
		if err := g.meta.Delete(ctx, metadata.KeyPushEndpoint); err != nil {
			return err
		}
	}

	g.logger.Info(ctx, "push subscription removed", "endpoint", endpoint)
	return nil
}

// Endpoint returns the registered endpoint, or "" when there is none.
func (g *Gateway) Endpoint(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, g.meta, metadata.KeyPushEndpoint)
}

// Build turns a push payload into a notification. Decode failures are
// logged and the default notification is returned.
func (g *Gateway) Build(ctx context.Context, data []byte) models.Notification {
	n, err := Decode(data)
	if err != nil {
		g.logger.Warn(ctx, "cannot decode push payload, showing default notification", "error", err)
	}
	return n
}

// Deliver builds the notification for data and hands it to d.
func (g *Gateway) Deliver(ctx context.Context, data []byte, d Displayer) error {
	return d.Show(ctx, g.Build(ctx, data))
}

func validate(sub models.PushSubscription) error {
	u, err := url.Parse(sub.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("%w: endpoint must be an absolute http(s) url", ErrInvalidSubscription)
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return fmt.Errorf("%w: p256dh and auth keys are required", ErrInvalidSubscription)
	}
	return nil
}

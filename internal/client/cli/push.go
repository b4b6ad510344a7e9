package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/notify"
)

func (a *App) Subscribe(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: subscribe <endpoint> <p256dh> <auth>", errUsage)
	}
	sub := models.PushSubscription{
		Endpoint: args[0],
		Keys:     models.PushKeys{P256dh: args[1], Auth: args[2]},
	}
	if err := a.gateway.Subscribe(ctx, sub); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Subscribed to notifications.")
	return nil
}

func (a *App) Unsubscribe(ctx context.Context, args []string) error {
	endpoint := ""
	if len(args) > 0 {
		endpoint = args[0]
	}
	if err := a.gateway.Unsubscribe(ctx, endpoint); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Unsubscribed from notifications.")
	return nil
}

// Push shows the notification a push message with the given payload
// would produce.
func (a *App) Push(ctx context.Context, payload string) error {
	return a.gateway.Deliver(ctx, []byte(payload), consoleDisplayer{w: a.out})
}

// consoleDisplayer prints notifications as text.
type consoleDisplayer struct {
	w io.Writer
}

func (d consoleDisplayer) Show(_ context.Context, n models.Notification) error {
	fmt.Fprintf(d.w, "[%s] %s\n", n.Title, n.Body)
	if n.Image != "" {
		fmt.Fprintf(d.w, "  image: %s\n", n.Image)
	}
	if len(n.Actions) > 0 {
		titles := make([]string, 0, len(n.Actions))
		for _, act := range n.Actions {
			titles = append(titles, act.Title)
		}
		fmt.Fprintf(d.w, "  actions: %s\n", strings.Join(titles, " | "))
	}
	if url, open := notify.ResolveClick(n, notify.ActionOpen); open {
		fmt.Fprintf(d.w, "  opens: %s\n", url)
	}
	return nil
}

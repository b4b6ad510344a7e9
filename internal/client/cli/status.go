package cli

import (
	"context"
	"fmt"
)

func (a *App) Status(ctx context.Context) error {
	user := a.userName
	if user == "" {
		user = "(not logged in)"
	}
	conn := "offline"
	if a.watcher != nil && a.watcher.Online() {
		conn = "online"
	}

	pending, err := a.storyService.PendingCount(ctx)
	if err != nil {
		return err
	}
	endpoint, err := a.gateway.Endpoint(ctx)
	if err != nil {
		return err
	}
	if endpoint == "" {
		endpoint = "(none)"
	}

	fmt.Fprintf(a.out, "user:       %s\n", user)
	fmt.Fprintf(a.out, "connection: %s\n", conn)
	fmt.Fprintf(a.out, "pending:    %d\n", pending)
	fmt.Fprintf(a.out, "cache:      %s\n", a.cacheVersion)
	fmt.Fprintf(a.out, "push:       %s\n", endpoint)
	return nil
}

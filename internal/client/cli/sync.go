package cli

import (
	"context"
	"fmt"
)

// Pending prints the stories waiting for delivery.
func (a *App) Pending(ctx context.Context) error {
	items, err := a.storyService.Pending(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Nothing waiting to be sent.")
		return nil
	}
	for _, p := range items {
		state := "waiting"
		if p.Synced {
			state = "sent"
		}
		fmt.Fprintf(a.out, "#%d %s [%s] %s\n", p.ID, p.CreatedAt.Local().Format(timeLayout), state, oneLine(p.Description))
	}
	return nil
}

// Sync runs a replay pass right away.
func (a *App) Sync(ctx context.Context) error {
	res, err := a.replayer.Replay(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sent %d of %d, %d failed.\n", res.Delivered, res.Attempted, res.Failed)
	return nil
}

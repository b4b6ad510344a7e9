package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Stories(ctx context.Context) error
	Add(ctx context.Context) error
	Photo(ctx context.Context, ref string) error
	Fav(ctx context.Context, ref string) error
	Favs(ctx context.Context, args []string) error
	Unfav(ctx context.Context, id string) error
	ClearFavs(ctx context.Context) error
	Pending(ctx context.Context) error
	Sync(ctx context.Context) error
	Subscribe(ctx context.Context, args []string) error
	Unsubscribe(ctx context.Context, args []string) error
	Push(ctx context.Context, payload string) error
	Status(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, favs, unfav, clearfavs, pending, status, push, exit"
	helpLoggedIn  = "Available commands: stories, add, photo <n|id>, fav <n|id>, favs [query] [name|createdAt|favoritedAt] [asc|desc], " +
		"unfav <id>, clearfavs, pending, sync, subscribe <endpoint> <p256dh> <auth>, unsubscribe [endpoint], push [json], status, logout, exit"
)

var errUsage = errors.New("usage")

// runREPL starts a simple read–eval–print loop for the story CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when the user types
// "exit" or "quit", or when ctx is cancelled.
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "story %s> ", statusFn())
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpLoggedIn)
			} else {
				fmt.Fprintln(out, helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)

		case "l", "stories":
			cmdErr = a.Stories(ctx)
		case "add":
			cmdErr = a.Add(ctx)
		case "photo":
			if len(args) != 1 {
				cmdErr = fmt.Errorf("%w: photo <n|id>", errUsage)
				break
			}
			cmdErr = a.Photo(ctx, args[0])

		case "fav":
			if len(args) != 1 {
				cmdErr = fmt.Errorf("%w: fav <n|id>", errUsage)
				break
			}
			cmdErr = a.Fav(ctx, args[0])
		case "favs":
			cmdErr = a.Favs(ctx, args)
		case "unfav":
			if len(args) != 1 {
				cmdErr = fmt.Errorf("%w: unfav <id>", errUsage)
				break
			}
			cmdErr = a.Unfav(ctx, args[0])
		case "clearfavs":
			cmdErr = a.ClearFavs(ctx)

		case "pending":
			cmdErr = a.Pending(ctx)
		case "sync":
			cmdErr = a.Sync(ctx)

		case "subscribe":
			cmdErr = a.Subscribe(ctx, args)
		case "unsubscribe":
			cmdErr = a.Unsubscribe(ctx, args)
		case "push":
			cmdErr = a.Push(ctx, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd)))

		case "status":
			cmdErr = a.Status(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}

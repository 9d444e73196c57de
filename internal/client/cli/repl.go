package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/countrybook/internal/client/favorites"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context) error
	Profile(ctx context.Context, args []string) error

	Reload(ctx context.Context) error
	Search(ctx context.Context, name string) error
	Region(ctx context.Context, region string) error
	Language(ctx context.Context, lang string) error
	Independent(ctx context.Context) error
	List(ctx context.Context) error
	Sorted(ctx context.Context) error
	Show(ctx context.Context, code string) error

	Favorites(ctx context.Context, args []string) error
	Theme(ctx context.Context, args []string) error
	Go(ctx context.Context, path string) error
	Export(ctx context.Context, args []string) error
}

const (
	helpGuest  = "Available commands: signup, login, forgot, reset <token>, all, search [name], region <r>, lang <l>, independent, list, sorted, show <code>, theme, go <path>, export, exit"
	helpMember = "Available commands: whoami, logout, profile [edit|refresh], delete-account, all, search [name], region <r>, lang <l>, independent, list, sorted, show <code>, fav [list|add|rm|status], theme, go <path>, export, exit"
)

// runREPL starts a simple read–eval–print loop for the countrybook CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Prompts issued by the commands read from the
// same reader. The loop exits on EOF or when the user types "exit" or "quit".
//
// Each line runs with its own favorites request cache, so a command that
// checks the favorite status of many countries lists favorites once.
//
// Errors returned by command handlers are printed with their display
// message; the loop itself keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("cb %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		rest := strings.Join(args, " ")

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(favorites.WithRequestCache(ctx), a, cmd, args, rest); err != nil {
			report(err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string, rest string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpMember)
		} else {
			printlnFn(helpGuest)
		}

	case "signup":
		return a.Signup(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "forgot":
		return a.Forgot(ctx)
	case "reset":
		if len(args) == 0 {
			printlnFn("Usage: reset <token>")
			return nil
		}
		return a.Reset(ctx, args[0])
	case "delete-account":
		return a.DeleteAccount(ctx)
	case "profile":
		return a.Profile(ctx, args)

	case "all", "reload":
		return a.Reload(ctx)
	case "search":
		return a.Search(ctx, rest)
	case "region":
		if rest == "" {
			printlnFn("Usage: region <name>")
			return nil
		}
		return a.Region(ctx, rest)
	case "lang":
		if rest == "" {
			printlnFn("Usage: lang <language>")
			return nil
		}
		return a.Language(ctx, rest)
	case "independent":
		return a.Independent(ctx)
	case "l", "list":
		return a.List(ctx)
	case "sorted":
		return a.Sorted(ctx)
	case "show":
		if len(args) == 0 {
			printlnFn("Usage: show <code>")
			return nil
		}
		return a.Show(ctx, args[0])

	case "fav":
		return a.Favorites(ctx, args)
	case "theme":
		return a.Theme(ctx, args)
	case "go":
		if len(args) == 0 {
			printlnFn("Usage: go <path>")
			return nil
		}
		return a.Go(ctx, args[0])
	case "export":
		if len(args) != 2 {
			printlnFn("Usage: export <countries|favorites> <file|s3://bucket/key>")
			return nil
		}
		return a.Export(ctx, args)

	default:
		printlnFn("Unknown command:", cmd)
	}
	return nil
}

func report(err error) {
	printlnFn("Error:", gateway.MessageOf(err, err.Error()))
}

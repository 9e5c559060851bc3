package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	status() string
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	UpdateBio(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Suggest(ctx context.Context, args []string) error
	Trending(ctx context.Context, args []string) error
	History(ctx context.Context) error
}

func (a *App) repl(ctx context.Context) {
	printlnFn("Welcome to the StuVerFlow client (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(os.Stdin))
}

// runREPL reads a line, parses the first token as the command, and dispatches
// to methods on a. The loop exits on scanner EOF or "exit"/"quit". Command
// handler errors are ignored here; handlers report their own failures, which
// keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("svf %s> ", a.status()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: search, suggest, trending, history, whoami, update, logout, exit")
			} else {
				printlnFn("Available commands: login, signup, search, suggest, trending, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "update":
			_ = a.UpdateBio(ctx)

		case "s", "search":
			_ = a.Search(ctx, args)

		case "suggest":
			_ = a.Suggest(ctx, args)

		case "trending":
			_ = a.Trending(ctx, args)

		case "history":
			_ = a.History(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

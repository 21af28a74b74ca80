package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Ping(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the Fitly CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// The command set follows the auth state. Commands outside the current set
// are refused with a hint rather than dispatched:
//
//	Signed out:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Signed in:
//	  - help           — show available commands
//	  - add            — add a clothing item (optionally with a photo)
//	  - list           — list the wardrobe, newest first
//	  - whoami         — show the signed-in account
//	  - ping           — check backend connectivity
//	  - logout         — sign out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fitly%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist, whoami, ping, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			if a.isLoggedIn() {
				printlnFn("Already signed in; logout first.")
				continue
			}
			_ = a.Register(ctx)

		case "login":
			if a.isLoggedIn() {
				printlnFn("Already signed in; logout first.")
				continue
			}
			_ = a.Login(ctx)

		case "add":
			if !a.isLoggedIn() {
				printlnFn("Sign in first.")
				continue
			}
			_ = a.Add(ctx)

		case "l", "list":
			if !a.isLoggedIn() {
				printlnFn("Sign in first.")
				continue
			}
			_ = a.List(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "ping":
			if !a.isLoggedIn() {
				printlnFn("Sign in first.")
				continue
			}
			_ = a.Ping(ctx)

		case "logout":
			if !a.isLoggedIn() {
				printlnFn("Sign in first.")
				continue
			}
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

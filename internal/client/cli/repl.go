package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs; *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	SetEndpoint(ctx context.Context, raw string, strict bool) error
	ShowEndpoint(ctx context.Context) error
	Login(ctx context.Context, identifier string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Register(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyReset(ctx context.Context, otp string) error
	ConfirmReset(ctx context.Context) error
	ShowProfile(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until EOF or
// "exit"/"quit". Command errors are printed and the loop continues.
//
//	Not logged in:  endpoint <ip|url>, register, login [id], forgot <email>,
//	                verify <otp>, reset, status, stats, exit
//	Logged in:      whoami, profile, logout, endpoint, status, stats, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, logout, endpoint, status, stats, exit")
			} else {
				printlnFn("Available commands: endpoint <ip|url>, register, login [id], forgot <email>, verify <otp>, reset, status, stats, exit")
			}

		case "endpoint":
			if arg == "" {
				err = a.ShowEndpoint(ctx)
			} else {
				err = a.SetEndpoint(ctx, arg, false)
			}

		case "login":
			err = a.Login(ctx, arg)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "status":
			err = a.Status(ctx)

		case "register":
			err = a.Register(ctx)

		case "forgot":
			if arg == "" {
				printlnFn("Usage: forgot <email>")
				continue
			}
			err = a.ForgotPassword(ctx, arg)

		case "verify":
			if arg == "" {
				printlnFn("Usage: verify <otp>")
				continue
			}
			err = a.VerifyReset(ctx, arg)

		case "reset":
			err = a.ConfirmReset(ctx)

		case "profile":
			err = a.ShowProfile(ctx)

		case "stats":
			err = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", Describe(err))
		}
	}
}

// Shell runs the REPL on the app's input with re-authentication prompts
// enabled.
func (a *App) Shell(ctx context.Context) error {
	a.interact = true
	defer func() { a.interact = false }()

	fmt.Fprintln(a.out, "Welcome to farmkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

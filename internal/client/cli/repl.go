package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	SetProfile(ctx context.Context, args []string) error
	Ingredients(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from in and dispatches them to a.
// Command errors are printed and the loop goes on. It returns on EOF, on
// "exit" or "quit", or when ctx is done.
//
//	Not logged in: help, register, login, whoami, exit
//	Logged in:     help, whoami, profile, setprofile, ingredients, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "skinkeeper %s> ", statusFn())

		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
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
				fmt.Fprintln(out, "Available commands: whoami, profile, setprofile, ingredients, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, whoami, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "setprofile":
			cmdErr = a.SetProfile(ctx, args)
		case "ingredients":
			cmdErr = a.Ingredients(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", describe(cmdErr))
		}
	}
}

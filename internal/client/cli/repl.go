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
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Departments(ctx context.Context) error
	Types(ctx context.Context, department string) error
	Reload(ctx context.Context) error
	History(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Scan(ctx context.Context, code string) error
	Select(ctx context.Context, ref string) error
	New(ctx context.Context) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Upload(ctx context.Context, ref string) error
	Reupload(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
	Purge(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = "Available commands: departments, types <code>, reload, history, search <text>, scan <code>, " +
		"select <n>, new, (l)ist, refresh, upload [n|id], reupload <n|id>, delete <n|id>, purge, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the scansync CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Commands other than help, login and exit need a session. Errors returned
// by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("scan %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := strings.Join(args, " ")

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if cmd == "help" {
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		}

		if cmd != "login" && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		if err := dispatchCommand(ctx, a, cmd, arg); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatchCommand(ctx context.Context, a execIface, cmd, arg string) error {
	needArg := func(usage string, fn func() error) error {
		if arg == "" {
			printlnFn("Usage:", usage)
			return nil
		}
		return fn()
	}

	switch cmd {
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "departments":
		return a.Departments(ctx)
	case "types":
		return needArg("types <department code>", func() error { return a.Types(ctx, arg) })
	case "reload":
		return a.Reload(ctx)
	case "history":
		return a.History(ctx)
	case "search":
		return needArg("search <text>", func() error { return a.Search(ctx, arg) })
	case "scan":
		return needArg("scan <code>", func() error { return a.Scan(ctx, arg) })
	case "select":
		return needArg("select <n>", func() error { return a.Select(ctx, arg) })
	case "new":
		return a.New(ctx)
	case "l", "list":
		return a.List(ctx)
	case "refresh":
		return a.Refresh(ctx)
	case "upload":
		return a.Upload(ctx, arg)
	case "reupload":
		return needArg("reupload <n|id>", func() error { return a.Reupload(ctx, arg) })
	case "delete":
		return needArg("delete <n|id>", func() error { return a.Delete(ctx, arg) })
	case "purge":
		return a.Purge(ctx)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

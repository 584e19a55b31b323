package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Upload(ctx context.Context) error
	Access(ctx context.Context) error
	Show(ctx context.Context) error
	ReuseCheck(ctx context.Context) error
	List(ctx context.Context) error
	Audit(ctx context.Context) error
	Stats(ctx context.Context) error
	Archive(ctx context.Context) error
}

const helpText = `Commands:
  register       create an account
  login          authenticate
  upload         store a document
  access         record a document access
  show           print a document you own
  reuse          check text against the stored corpus
  list           list stored documents
  audit          print the audit trail
  stats          print usage counters
  archive        push a sealed payload to object storage
  exit           quit`

func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	printlnFn("TraceGuard console. Type 'help' for commands.")

	for {
		status := "not logged in"
		if a.isLoggedIn() {
			status = "logged in"
		}
		fmt.Printf("[%s] > ", status)

		if !scanner.Scan() {
			return
		}
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))

		var err error
		switch cmd {
		case "":
			continue
		case "help":
			printlnFn(helpText)
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "upload":
			err = a.Upload(ctx)
		case "access":
			err = a.Access(ctx)
		case "show":
			err = a.Show(ctx)
		case "reuse":
			err = a.ReuseCheck(ctx)
		case "list":
			err = a.List(ctx)
		case "audit":
			err = a.Audit(ctx)
		case "stats":
			err = a.Stats(ctx)
		case "archive":
			err = a.Archive(ctx)
		case "exit", "quit":
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

// Run starts the console loop over stdin.
func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, bufio.NewScanner(a.reader))
}

// Package cli selects and runs one of the client's three modes: web UI,
// inline evaluation, or file evaluation.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/rchain-community/rnode-client/internal/logging"
	"github.com/rchain-community/rnode-client/internal/web"
)

// Repl is the node's REPL service as the dispatcher consumes it.
type Repl interface {
	Run(ctx context.Context, line string) (string, error)
	Eval(ctx context.Context, fileName string) (string, error)
}

// Diagnostics is the node's Diagnostics service as the dispatcher
// consumes it.
type Diagnostics interface {
	ListPeers(ctx context.Context) ([]string, error)
}

// UsageError marks an invocation the dispatcher could not interpret.
// No RPC has been issued when it is returned.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// Options parameterizes a dispatch run.
type Options struct {
	// WebPort is the port the UI binds to in web mode.
	WebPort int

	// NodeURL is the node endpoint, shown in the web-mode summary.
	NodeURL string

	// Summary receives the endpoint table printed when entering web
	// mode. Nil suppresses it. It must not be the same sink as stdout;
	// stdout carries exactly the URL line in web mode.
	Summary io.Writer

	// Log is the logger handed to the web server. Nil means no logging.
	Log *slog.Logger

	// Serve runs the UI's serve loop. Nil means the real one; tests
	// substitute a stub to observe web-mode entry without binding a port.
	Serve func(ctx context.Context, srv *web.Server, addr string) error
}

// Run inspects argv and executes exactly one mode. argv is the raw
// argument vector including the program name, and the original quirks are
// contractual: "-w" anywhere wins over "-c", "-c" takes the last argument
// as the code regardless of position, and anything else treats argv[1] as
// a file path.
//
// Eval modes write one line to stdout and return. Web mode writes one URL
// line and then blocks in the serve loop until ctx is cancelled.
func Run(ctx context.Context, argv []string, stdout io.Writer, repl Repl, diag Diagnostics, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}

	switch {
	case contains(argv, "-w"):
		srv := web.New(diag, repl, log)
		addr := fmt.Sprintf("0.0.0.0:%d", opts.WebPort)
		printSummary(opts.Summary, opts.NodeURL, addr)
		fmt.Fprintf(stdout, "rnode web UI at http://%s\n", addr)

		serve := opts.Serve
		if serve == nil {
			serve = func(ctx context.Context, srv *web.Server, addr string) error {
				return srv.Serve(ctx, addr)
			}
		}
		return serve(ctx, srv, addr)

	case contains(argv, "-c"):
		line := argv[len(argv)-1]
		output, err := repl.Run(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, output)
		return nil

	default:
		if len(argv) < 2 {
			return &UsageError{Reason: "file evaluation needs a path argument"}
		}
		output, err := repl.Eval(ctx, argv[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, output)
		return nil
	}
}

func contains(argv []string, flag string) bool {
	for _, arg := range argv {
		if arg == flag {
			return true
		}
	}
	return false
}

// printSummary writes a small endpoint table to w before the UI starts.
func printSummary(w io.Writer, nodeURL, webAddr string) {
	if w == nil {
		return
	}
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Endpoint", "Address").
		WithHeaderFormatter(headerFmt).
		WithWriter(w)
	tbl.AddRow("node", nodeURL)
	tbl.AddRow("web UI", "http://"+webAddr)
	tbl.Print()
}

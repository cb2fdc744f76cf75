// rnode-client forwards code to a running rnode node for execution and
// prints the textual result, or serves a small diagnostic web UI.
//
// Usage:
//
//	rnode-client -w
//	rnode-client contract1.rho
//	rnode-client -c 'new x in { x!(1 + 1) }'
//
// The node is expected on 127.0.0.1:50000 unless rnode.yaml or RNODE_*
// environment variables say otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rchain-community/rnode-client/internal/cli"
	"github.com/rchain-community/rnode-client/internal/config"
	"github.com/rchain-community/rnode-client/internal/env"
	"github.com/rchain-community/rnode-client/internal/logging"
	"github.com/rchain-community/rnode-client/internal/rnode"
)

const usageLine = "usage: rnode-client [-w] [-c CODE] [FILE]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%s: %s\n%s\n", color.RedString("error"), usageErr.Reason, usageLine)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("error"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rnode-client [-w] [-c CODE] [FILE]",
		Short: "Remote control client for a running rnode node",
		Long: `rnode-client submits code to a running rnode node over its RPC
interface and prints the node's textual output. With -w it instead serves
a single-page diagnostic web UI showing the node's peers and letting you
submit code from the browser.`,
		// The argument contract predates this port: -w anywhere selects
		// web mode, -c takes the last argument as the code, and any
		// other first argument is a file path. Flag parsing stays off so
		// the raw vector reaches the dispatcher untouched.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	env.Load()

	cfg, err := config.Load(os.Getenv("RNODE_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	conn := rnode.Dial(cfg.Host, cfg.Port, cfg.Timeout)
	repl := rnode.NewReplClient(conn)
	diag := rnode.NewDiagnosticsClient(conn)

	return cli.Run(ctx, os.Args, stdout, repl, diag, cli.Options{
		WebPort: cfg.WebPort,
		NodeURL: conn.URL(),
		Summary: os.Stderr,
		Log:     logging.New(slog.LevelInfo),
	})
}

// Package main is the entry point for the hsmv CLI.
//
// hsmv registers Mullvad WireGuard relays as WireGuard-only peers in a
// Headscale coordinator and connects tailnet nodes to them, so that every
// relay can be used as an exit node.
//
// Commands: relay list|add|delete, node list|add|delete, version, completion.
//
// For detailed usage information, run:
//
//	hsmv --help
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/hsmv/cmd/hsmv/commands"
	"github.com/imamik/hsmv/internal/ui"
)

// Version information, set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitInterrupted is the conventional status for termination by SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	code := exitCode(ctx, err)
	switch code {
	case 0:
		return
	case exitInterrupted:
		fmt.Fprintln(os.Stderr, ui.WarnMsg("interrupted"))
	default:
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("%v", err))
	}
	stop()
	os.Exit(code)
}

// exitCode maps the command outcome to a process status. An interrupt wins
// even when the command itself returned cleanly.
func exitCode(ctx context.Context, err error) int {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return exitInterrupted
	case err != nil:
		return 1
	}
	return 0
}

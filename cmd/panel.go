package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portal/assistant"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

type panelCmd struct{}

func (*panelCmd) Name() string     { return "panel" }
func (*panelCmd) Synopsis() string { return "display an AI assistant panel" }
func (*panelCmd) Usage() string {
	return `pmp [-user <id>] panel <analysis|risk|market|goals|monitoring>

  Displays one panel of the AI assistant: portfolio analysis, risk alerts,
  market intelligence, goals or monitoring alerts.
`
}

func (*panelCmd) SetFlags(f *flag.FlagSet) {}

func (*panelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: panel requires exactly one panel name")
		return subcommands.ExitUsageError
	}
	p, err := assistant.ParsePanel(f.Arg(0))
	if err != nil || p == assistant.ChatPanel {
		fmt.Fprintf(os.Stderr, "Error: %q is not a panel, use assist to chat\n", f.Arg(0))
		return subcommands.ExitUsageError
	}

	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()

	board := assistant.NewBoard(e.client, e.cfg.User, e.log)
	board.Switch(ctx, p)
	v := board.View(p)
	printMarkdown(renderer.RenderPanel(v))
	if v.Err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

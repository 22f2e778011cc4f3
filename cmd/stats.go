package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portal"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "display the record counts of the portal tables" }
func (*statsCmd) Usage() string {
	return `pmp stats

  Displays the welcome screen: the number of records of each table.
`
}

func (*statsCmd) SetFlags(f *flag.FlagSet) {}

func (*statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()

	screen, err := e.controller().Welcome(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading stats: %v\n", portal.Message(err))
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderScreen(screen))
	if screen.Error != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

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

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display the portfolio dashboard of a user" }
func (*dashboardCmd) Usage() string {
	return `pmp [-user <id>] dashboard

  Displays the allocation of the user against its targets, the investor
  profile and the recommendations for every asset class that drifted.
`
}

func (*dashboardCmd) SetFlags(f *flag.FlagSet) {}

func (*dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()

	d, err := e.controller().LoadDashboard(ctx, e.cfg.User)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dashboard of %s: %v\n", e.cfg.User, portal.Message(err))
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderDashboard(d))
	return subcommands.ExitSuccess
}

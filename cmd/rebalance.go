package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/portal"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

// rebalanceCmd holds the flags for the 'rebalance' subcommand.
type rebalanceCmd struct {
	asset    string
	scenario int
	execute  bool
	report   string
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "review and execute a rebalancing scenario" }
func (*rebalanceCmd) Usage() string {
	return `pmp [-user <id>] rebalance [-asset <class>] [-scenario <id> [-execute] [-report <file>|auto|-]]

  Displays the holdings of an asset class and the rebalancing scenarios the
  server proposes for it. Without -asset, the first asset class that drifted
  from its target is used.

  -scenario selects a scenario, -execute executes it and -report writes the
  plain text report of the executed scenario.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset class: equities, bonds, cash or alternatives")
	f.IntVar(&c.scenario, "scenario", 0, "ID of the scenario to select")
	f.BoolVar(&c.execute, "execute", false, "Execute the selected scenario")
	f.StringVar(&c.report, "report", "", "Write the report of the executed scenario to this file")
}

func (c *rebalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.execute || c.report != "") && c.scenario == 0 {
		fmt.Fprintln(os.Stderr, "Error: -execute and -report require -scenario")
		return subcommands.ExitUsageError
	}
	if c.report != "" && !c.execute {
		fmt.Fprintln(os.Stderr, "Error: -report requires -execute")
		return subcommands.ExitUsageError
	}

	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()
	ctrl := e.controller()

	asset := c.asset
	if asset == "" {
		d, err := ctrl.LoadDashboard(ctx, e.cfg.User)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading dashboard of %s: %v\n", e.cfg.User, portal.Message(err))
			return subcommands.ExitFailure
		}
		var ok bool
		if asset, ok = d.QuickRebalance(); !ok {
			fmt.Println("Your portfolio is within its targets: no rebalancing needed.")
			return subcommands.ExitSuccess
		}
	}

	g, err := ctrl.OpenRebalancing(ctx, e.cfg.User, asset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rebalancing of %s: %v\n", asset, err)
		return subcommands.ExitFailure
	}
	if c.scenario != 0 {
		if err := g.Select(c.scenario); err != nil {
			printMarkdown(renderer.RenderGuided(g))
			fmt.Fprintf(os.Stderr, "Error selecting scenario: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	var execErr error
	if c.execute {
		execErr = ctrl.ExecuteScenario(ctx, g)
	}
	printMarkdown(renderer.RenderGuided(g))
	if execErr != nil {
		return subcommands.ExitFailure
	}

	if c.report != "" {
		sc, _ := g.Selected()
		path := e.filename(c.report, portal.ReportFilename)
		err := writeFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, renderer.RenderReport(renderer.NewReport(sc, g.ExecutedAt)))
			return err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

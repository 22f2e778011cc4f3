package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portal"
	"github.com/etnz/portal/assistant"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

// customersCmd holds the flags for the 'customers' subcommand.
type customersCmd struct {
	selected string
	library  bool
}

func (*customersCmd) Name() string     { return "customers" }
func (*customersCmd) Synopsis() string { return "browse the customers and their AI scenarios" }
func (*customersCmd) Usage() string {
	return `pmp customers [-select <id>] [-library]

  Lists the customers of the advisor. With -select, displays the personalized
  and general scenarios of one customer and keeps them as the selected
  customer. With -library, displays the scenario library instead.
`
}

func (c *customersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.selected, "select", "", "ID of the customer to select")
	f.BoolVar(&c.library, "library", false, "Display the scenario library")
}

func (c *customersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()
	board := assistant.NewBoard(e.client, e.cfg.User, e.log)

	switch {
	case c.library:
		lib, err := e.client.ScenarioLibrary(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scenarios: %v\n", portal.Message(err))
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderLibrary(lib))

	case c.selected != "":
		cs, err := board.SelectCustomer(ctx, e.store, c.selected)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", portal.Message(err))
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderCustomerScenarios(cs))

	default:
		customers, err := board.Customers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading customers: %v\n", portal.Message(err))
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderCustomers(customers))
	}
	return subcommands.ExitSuccess
}

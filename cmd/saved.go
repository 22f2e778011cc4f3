package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

type savedCmd struct{}

func (*savedCmd) Name() string     { return "saved" }
func (*savedCmd) Synopsis() string { return "inspect the locally saved snapshots" }
func (*savedCmd) Usage() string {
	return `pmp saved [key]

  Lists the snapshots kept in the local store: coach recommendations,
  rebalancing executions and the selected customer. With a key, prints the
  saved JSON.
`
}

func (*savedCmd) SetFlags(f *flag.FlagSet) {}

func (*savedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()
	if e.db == nil {
		fmt.Fprintln(os.Stderr, "Error: the snapshot store is disabled, set store in the configuration")
		return subcommands.ExitFailure
	}

	if f.NArg() == 0 {
		entries, err := e.db.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing snapshots: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderSaved(entries))
		return subcommands.ExitSuccess
	}

	raw, err := e.db.Get(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		out.Reset()
		out.Write(raw)
	}
	fmt.Println(out.String())
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/portal"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

// tableCmd holds the flags for the 'table' subcommand.
type tableCmd struct {
	query  string
	export string
}

func (*tableCmd) Name() string     { return "table" }
func (*tableCmd) Synopsis() string { return "display a portal table with its summary" }
func (*tableCmd) Usage() string {
	return `pmp table [-q <term>] [-export <file>|auto|-] <name>

  Displays a table, optionally filtered by a case-insensitive search term.
  Known tables: ` + strings.Join(portal.TableNames(), ", ") + `

  With -export, the visible rows are also written as CSV. "auto" names the
  file after the table and today's date, "-" writes to stdout.
`
}

func (c *tableCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Search term matched against every cell")
	f.StringVar(&c.export, "export", "", "Write the visible rows as CSV to this file")
}

func (c *tableCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: table requires exactly one table name")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)

	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()

	ctrl := e.controller()
	screen, err := ctrl.LoadTable(ctx, name)
	if err == nil && screen.Table != nil && strings.TrimSpace(c.query) != "" {
		screen, err = ctrl.Search(c.query)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading table %q: %v\n", name, err)
		return subcommands.ExitFailure
	}

	if c.export != "-" {
		printMarkdown(renderer.RenderScreen(screen))
	}
	if screen.Error != nil {
		if c.export == "-" {
			fmt.Fprintln(os.Stderr, screen.Error.Message)
		}
		return subcommands.ExitFailure
	}
	if c.export == "" {
		return subcommands.ExitSuccess
	}

	ds := ctrl.Dataset()
	path := e.filename(c.export, ds.ExportFilename)
	if err := writeFile(path, ds.WriteCSV); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting %q: %v\n", name, err)
		return subcommands.ExitFailure
	}
	if path != "-" {
		fmt.Fprintf(os.Stderr, "Exported %s to %s\n", ds.RecordCount(), path)
	}
	return subcommands.ExitSuccess
}

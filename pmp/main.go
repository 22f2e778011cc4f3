// Command pmp is the portfolio management portal in the terminal.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/portal/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Answers the shell and exits when invoked for completion.
	cmd.Completion().Complete("pmp")

	commander := subcommands.NewCommander(flag.CommandLine, "pmp")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if flag.NArg() > 0 && !cmd.IsCommand(flag.Arg(0)) {
		if found, code := cmd.RunExtension(flag.Arg(0), flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

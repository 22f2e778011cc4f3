package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portal"
	"github.com/etnz/portal/assistant"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the pmp command line for shell completion: the
// global flags, every subcommand with its flags, and the values the portal
// knows (tables, asset classes, panels and implementation cadences).
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{},
	}
	flag.CommandLine.VisitAll(func(fl *flag.Flag) {
		root.Flags[fl.Name] = predictorOf(fl.Name)
	})

	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(fl *flag.Flag) {
			sub.Flags[fl.Name] = predictorOf(fl.Name)
		})
		switch c.Name() {
		case "table":
			sub.Args = predict.Set(portal.TableNames())
		case "panel":
			var names []string
			for _, p := range assistant.Panels {
				if p != assistant.ChatPanel {
					names = append(names, string(p))
				}
			}
			sub.Args = predict.Set(names)
		}
		root.Sub[c.Name()] = sub
	}
	return root
}

func predictorOf(flagName string) complete.Predictor {
	switch flagName {
	case "config":
		return predict.Files("*.yaml")
	case "asset":
		return predict.Set(portal.AssetClasses)
	case "implement":
		var tags []string
		for _, i := range portal.Implementations() {
			tags = append(tags, i.Tag)
		}
		return predict.Set(tags)
	case "export", "report":
		return predict.Files("*")
	case "execute", "history", "library", "plain":
		return predict.Nothing
	}
	return predict.Something
}

type completeCmd struct{}

func (*completeCmd) Name() string     { return "complete" }
func (*completeCmd) Synopsis() string { return "print the shell completion setup" }
func (*completeCmd) Usage() string {
	return `pmp complete

  Prints the bash line that enables the completion of pmp. Add it to your
  ~/.bashrc, or run "COMP_INSTALL=1 pmp" to install it for you.
`
}

func (*completeCmd) SetFlags(f *flag.FlagSet) {}

func (*completeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating pmp: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("complete -C %s pmp\n", exe)
	return subcommands.ExitSuccess
}

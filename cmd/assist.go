package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/portal/assistant"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	plain bool
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `pmp [-user <id>] assist [-plain] [prompt...]

  Starts a chat with the portfolio assistant. Arguments are sent as the first
  message. Type ":panel <name>" to show a panel (analysis, risk, market,
  goals, monitoring) and "bye" to exit.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "Print replies without terminal formatting")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()

	board := assistant.NewBoard(e.client, e.cfg.User, e.log)
	chat := assistant.NewChat(e.client, e.cfg.User, e.log)
	fmt.Println(renderer.RenderStatus(board.Status(ctx)))
	if _, err := chat.LoadLibrary(ctx); err != nil {
		e.log.Debug("starting without suggestions", "err", err)
	}

	repl := assistant.NewREPL(os.Stdout, os.Stdin, chat)
	repl.Board, repl.Panel = board, renderer.RenderPanel
	if !c.plain {
		repl.Markdown = renderMarkdown
	}

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := repl.Run(ctx, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

package assistant

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const prompt = "assist> "

// REPL is the terminal front of the chat panel.
type REPL struct {
	w    io.Writer
	r    *bufio.Reader
	Chat *Chat

	// Board, when set, enables ":panel NAME" to show a panel.
	Board *Board
	// Markdown turns a reply or a panel into terminal text. Nil prints as is.
	Markdown func(string) string
	// Panel formats a panel view as markdown. Required with Board.
	Panel func(*PanelView) string
}

// NewREPL reads user input from r and writes the session to w.
func NewREPL(w io.Writer, r io.Reader, chat *Chat) *REPL {
	return &REPL{w: w, r: bufio.NewReader(r), Chat: chat}
}

func (a *REPL) print(md string) {
	if a.Markdown != nil {
		md = a.Markdown(md)
	}
	fmt.Fprintln(a.w, md)
}

// Run starts the session. prompts are sent first, as if typed. It returns
// on "bye" or at the end of the input.
func (a *REPL) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(a.w, "Welcome to the portfolio assistant. Type 'bye' to exit.")
	if s := a.Chat.Suggestions(); len(s) > 0 {
		fmt.Fprintln(a.w, "Try: "+strings.Join(s, " | "))
	}

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil && !(err == io.EOF && strings.TrimSpace(input) != "") {
				if err == io.EOF {
					fmt.Fprintln(a.w)
					return nil // Ctrl+D
				}
				return err
			}
		}
		input = strings.TrimSpace(input)

		switch {
		case input == "bye":
			return nil
		case input == "":
			continue
		case strings.HasPrefix(input, ":panel"):
			a.showPanel(ctx, strings.TrimSpace(strings.TrimPrefix(input, ":panel")))
			continue
		}

		reply, err := a.Chat.Send(ctx, input)
		if errors.Is(err, ErrEmptyMessage) {
			continue
		}
		// failures are already turned into a reply
		a.print(reply.Content)
	}
}

func (a *REPL) showPanel(ctx context.Context, name string) {
	if a.Board == nil || a.Panel == nil {
		fmt.Fprintln(a.w, "panels are not available")
		return
	}
	p, err := ParsePanel(name)
	if err != nil {
		fmt.Fprintln(a.w, err)
		return
	}
	a.Board.Switch(ctx, p)
	if v := a.Board.View(p); v != nil {
		a.print(a.Panel(v))
	}
}

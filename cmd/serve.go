package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/etnz/portal/web"
	"github.com/google/subcommands"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	listen string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the portal as a web application" }
func (*serveCmd) Usage() string {
	return `pmp serve [-listen <addr>]

  Serves the portal pages over HTTP until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.listen, "listen", "", "Address to listen on, overrides the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()
	addr := e.cfg.Listen
	if c.listen != "" {
		addr = c.listen
	}

	srv, err := web.New(e.client, e.client, web.WithStore(e.store), web.WithLogger(e.log), web.WithUser(e.cfg.User))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing pages: %v\n", err)
		return subcommands.ExitFailure
	}
	hs := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hs.Shutdown(shutdown)
	}()

	e.log.Info("serving portal", "addr", addr, "backend", e.client.BaseURL())
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

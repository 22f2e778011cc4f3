// Package cmd implements the pmp subcommands: the terminal front of the
// portfolio management portal.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/portal"
	"github.com/etnz/portal/api"
	"github.com/etnz/portal/config"
	"github.com/etnz/portal/store"
	"github.com/google/subcommands"
)

// Commands lists every pmp subcommand, in help order.
var Commands = []subcommands.Command{
	&statsCmd{},
	&tableCmd{},
	&dashboardCmd{},
	&rebalanceCmd{},
	&customCmd{},
	&coachCmd{},
	&assistCmd{},
	&panelCmd{},
	&customersCmd{},
	&savedCmd{},
	&serveCmd{},
	&completeCmd{},
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, groupOf(cmd.Name()))
	}
}

func groupOf(name string) string {
	switch name {
	case "stats", "table":
		return "tables"
	case "dashboard", "rebalance", "custom", "coach":
		return "portfolio"
	case "assist", "panel", "customers":
		return "assistant"
	}
	return ""
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configPath = flag.String("config", config.DefaultPath, "Path to the YAML configuration file")
	baseURL    = flag.String("base-url", "", "Backend address, overrides the configuration")
	userID     = flag.String("user", "", "User ID, overrides the configuration")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn or error")
)

// env is what every subcommand runs against.
type env struct {
	cfg    *config.Config
	log    *slog.Logger
	client *api.Client
	store  portal.Store
	db     *store.SQLite // nil when the store is disabled
	now    func() time.Time
}

// loadConfig loads the configuration and applies the global flags.
// logOutput receives the logs of every command.
var logOutput io.Writer = os.Stderr

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration: %w", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *userID != "" {
		cfg.User = *userID
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	return cfg, nil
}

// setup loads the configuration and opens the backend client and the
// snapshot store.
func setup() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: config.NewLogger(logOutput, cfg.LogLevel), now: time.Now}
	e.client, err = api.New(cfg.BaseURL, api.WithLogger(e.log), api.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	e.store = store.Noop{}
	if cfg.Store != "" {
		db, err := store.Open(cfg.Store)
		if err != nil {
			e.log.Warn("snapshot store disabled", "path", cfg.Store, "err", err)
		} else {
			e.db, e.store = db, db
		}
	}
	return e, nil
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
}

// controller returns a fresh portal controller over the backend.
func (e *env) controller() *portal.Controller {
	return portal.NewController(e.client, nil, portal.WithStore(e.store), portal.WithLogger(e.log), portal.WithClock(e.now))
}

// open runs setup and reports its failure the way every command does.
func open() (*env, subcommands.ExitStatus) {
	e, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return e, subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}

func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// writeFile writes with fn to path, or to stdout when path is "-".
func writeFile(path string, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// filename returns path, or the download name made by def when path is "auto".
func (e *env) filename(path string, def func(time.Time) string) string {
	if strings.EqualFold(path, "auto") {
		return def(e.now())
	}
	return path
}

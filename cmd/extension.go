package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/etnz/portal/config"
)

// Environment variables handed to extensions. They are the ones config.Load
// reads, so an extension built on this module sees the same settings.
const (
	EnvBaseURL  = "PMP_BASE_URL"
	EnvUser     = "PMP_USER"
	EnvStore    = "PMP_STORE"
	EnvLogLevel = "PMP_LOG_LEVEL"
)

// IsCommand reports whether name is a built-in subcommand.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range Commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// extensionEnv is the environment of an extension run with cfg.
func extensionEnv(cfg *config.Config) []string {
	return append(os.Environ(),
		EnvBaseURL+"="+cfg.BaseURL,
		EnvUser+"="+cfg.User,
		EnvStore+"="+cfg.Store,
		EnvLogLevel+"="+cfg.LogLevel,
	)
}

// RunExtension attempts to find and execute an external pmp-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "pmp-" + subcommand

	cfg, cfgErr := loadConfig()
	lp, err := exec.LookPath(name)
	if err != nil {
		level := "info"
		if cfgErr == nil {
			level = cfg.LogLevel
		}
		config.NewLogger(logOutput, level).Debug("no extension in PATH", "command", name, "err", err)
		return false, 0
	}
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cfgErr)
		return true, 1
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv(cfg)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/mpetstudy/internal/app"
)

// DefaultDBPath is the provenance database used when --db is not given.
const DefaultDBPath = "mpetstudy.db"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("mpetstudy", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
mpetstudy - Prepares an mpet battery simulation and runs a dakota parameter
study over its anode rate constant.

Usage:
  mpetstudy [options] [PROFILE_PATH]

Arguments:
  PROFILE_PATH
    Path to a single .hcl profile or a directory containing .hcl files.
    Declares computers, codes, job settings, overrides and the sweep.

Options:
`)
		flagSet.PrintDefaults()
	}

	profileFlag := flagSet.String("profile", "", "Path to the profile file or directory.")
	pFlag := flagSet.String("p", "", "Path to the profile file or directory (shorthand).")
	dbFlag := flagSet.String("db", DefaultDBPath, "Path to the SQLite provenance database.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Prepare both calculations without running either.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	switch {
	case *profileFlag != "":
		path = *profileFlag
	case *pFlag != "":
		path = *pFlag
	case flagSet.NArg() > 0:
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[1:], " "))}
	}
	slog.Debug("Profile path determined.", "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		ProfilePath:     path,
		DBPath:          *dbFlag,
		DryRun:          *dryRunFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/YspCoder/chatshape/config"
	"github.com/YspCoder/chatshape/utils"
)

const usage = `chatshape sends chat completion requests with structured-output support.

Usage:
  chatshape <command> [flags]

Commands:
  call     Run one completion and print the result as JSON
  serve    Start the HTTP server
  models   List model capability rules

Flags:
  -h, --help  Show this help message`

// Execute runs the CLI dispatcher with the provided arguments. Results are
// written to stdout; diagnostics go to the logger on stderr.
func Execute(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return printUsage(stdout)
	}

	switch args[0] {
	case "call":
		return call(ctx, args[1:], stdout)
	case "serve":
		return serve(ctx, args[1:])
	case "models":
		return models(args[1:], stdout)
	case "help", "-h", "--help":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, strings.TrimSpace(usage))
	return nil
}

func newLogger(cfg *config.ClientConfig) (utils.Logger, error) {
	level, err := utils.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return utils.NewLogger(level, cfg.LogFormat)
}

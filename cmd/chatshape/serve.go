package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/YspCoder/chatshape/config"
	"github.com/YspCoder/chatshape/server"
)

const serveUsage = `Usage:
  chatshape serve [--addr <host:port>]

Flags:
  --addr  string  Listen address (default ":8080")

Credentials are read from OPENAI_API_KEY, OPENAI_ORGANIZATION and OPENAI_API_URL;
each request may override them in its options.`

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "listen address")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}
	if addr == "" {
		return errors.New("serve command requires a non-empty --addr")
	}

	clientCfg, err := config.LoadClientConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(clientCfg)
	if err != nil {
		return err
	}

	srv, err := server.New(clientCfg, logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx, addr)
}

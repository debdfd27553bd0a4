package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/YspCoder/chatshape/adapter"
)

func models(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	var model string
	fs.StringVar(&model, "classify", "", "print the tier of one model name")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse models flags: %w", err)
	}

	registry := adapter.GetDefaultRegistry()
	if model != "" {
		_, err := fmt.Fprintf(stdout, "%s\t%s\n", model, registry.Classify(model))
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PREFIX\tTIER")
	for _, rule := range registry.Rules() {
		fmt.Fprintf(tw, "%s\t%s\n", rule.Prefix, rule.Tier)
	}
	fmt.Fprintln(tw, "(other)\tnative")
	return tw.Flush()
}

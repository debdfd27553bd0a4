package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/YspCoder/chatshape/config"
	"github.com/YspCoder/chatshape/llm"
)

const callUsage = `Usage:
  chatshape call (--prompt <text> | --messages <json>) [flags]

Flags:
  --prompt        string  Prompt text, sent as a single user message
  --messages      string  JSON array of {role, content} messages
  --options       string  JSON options: {api_key, organization, base_url, config:{...}}
  --options-file  string  YAML or JSON options file; --options values take precedence
  --context       string  JSON object describing the calling context (logged only)
  --log-level     string  Override CHATSHAPE_LOG_LEVEL`

func call(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, callUsage)
	}

	var promptText, messages, optionsJSON, optionsFile, contextJSON, logLevel string
	fs.StringVar(&promptText, "prompt", "", "prompt text")
	fs.StringVar(&messages, "messages", "", "JSON message array")
	fs.StringVar(&optionsJSON, "options", "", "JSON options")
	fs.StringVar(&optionsFile, "options-file", "", "path to options file")
	fs.StringVar(&contextJSON, "context", "", "JSON calling context")
	fs.StringVar(&logLevel, "log-level", "", "log level override")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse call flags: %w", err)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["prompt"] == set["messages"] {
		return errors.New("call command requires exactly one of --prompt or --messages")
	}
	if contextJSON != "" && !json.Valid([]byte(contextJSON)) {
		return errors.New("--context must be valid JSON")
	}

	opts, err := loadOptions(optionsFile, optionsJSON)
	if err != nil {
		return err
	}
	if err := opts.Config.Validate(); err != nil {
		return err
	}

	clientOpts := opts.ClientOptions()
	if logLevel != "" {
		clientOpts = append(clientOpts, config.SetLogLevel(logLevel))
	}
	clientCfg, err := config.LoadClientConfig(clientOpts...)
	if err != nil {
		return err
	}
	logger, err := newLogger(clientCfg)
	if err != nil {
		return err
	}
	if contextJSON != "" {
		logger.Debug("Call context", "context", json.RawMessage(contextJSON))
	}

	var input interface{} = promptText
	if set["messages"] {
		input = json.RawMessage(messages)
	}

	result, err := llm.Call(ctx, clientCfg, input, opts.Config, nil, logger)
	if err != nil {
		return err
	}
	return json.NewEncoder(stdout).Encode(result)
}

// loadOptions reads the options file, if any, then overlays inline JSON.
func loadOptions(path, inline string) (config.Options, error) {
	var opts config.Options
	if path != "" {
		fileOpts, err := config.LoadOptionsFile(path)
		if err != nil {
			return config.Options{}, err
		}
		opts = fileOpts
	}
	if inline != "" {
		inlineOpts, err := config.ParseOptions([]byte(inline))
		if err != nil {
			return config.Options{}, err
		}
		opts = opts.Merge(inlineOpts)
	}
	return opts, nil
}

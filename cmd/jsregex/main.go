// Package main provides the jsregex command line tool.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/chosenoffset/jsregex/pkg/jsregex"
	"github.com/chosenoffset/jsregex/pkg/jsregex/config"
	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	"github.com/chosenoffset/jsregex/pkg/jsregex/metrics"
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	verbose    bool
	quiet      bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "jsregex",
		Short: "Convert Ruby regular expression trees to JavaScript",
		Long: `jsregex converts parsed Ruby (Onigmo) regular expressions into
JavaScript RegExp source and flags.

Commands:
  convert   Convert tree documents
  validate  Check tree documents against the schema
  serve     Run the HTTP and WebSocket conversion server`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./jsregex.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(a.convertCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jsregex %s\n", version)
		},
	}
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	logging := cfg.Logging
	switch {
	case a.verbose:
		logging.Level = "debug"
	case a.quiet:
		logging.Level = "error"
	}
	logger, err := config.NewLogger(logging, stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

func (a *app) newEngine(opts converter.Options, reg prometheus.Registerer) (*jsregex.Engine, error) {
	engineOpts := []jsregex.EngineOption{
		jsregex.WithOptions(opts),
		jsregex.WithLimits(a.cfg.EngineLimits()),
		jsregex.WithLogger(a.logger),
	}
	if reg != nil {
		recorder, err := metrics.NewRecorder(reg)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, jsregex.WithRecorder(recorder))
	}
	return jsregex.NewEngine(engineOpts...), nil
}

type input struct {
	label  string
	data   []byte
	format syntax.Format
}

// readInputs reads every named file, "-" being stdin. A format of "auto"
// is chosen per file from its extension.
func readInputs(args []string, stdin io.Reader, format string) ([]input, error) {
	var fixed syntax.Format
	if format != "auto" {
		f, err := syntax.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		fixed = f
	}

	inputs := make([]input, 0, len(args))
	for _, arg := range args {
		in := input{label: arg, format: fixed}
		if in.format == "" {
			in.format = syntax.DetectFormat(arg)
		}

		var err error
		if arg == "-" {
			in.label = "stdin"
			in.data, err = io.ReadAll(stdin)
		} else {
			in.data, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", in.label, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

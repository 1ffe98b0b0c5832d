package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chosenoffset/jsregex/pkg/jsregex"
	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	"github.com/chosenoffset/jsregex/pkg/jsregex/handlers"
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

var errUnsupported = errors.New("pattern uses constructs JavaScript cannot express")

type convertOptions struct {
	inputFormat       string
	output            string
	target            string
	extraFlags        string
	emulatePossessive bool
	strict            bool
}

func (a *app) convertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <file.json|file.yaml|->...",
		Short: "Convert tree documents to JavaScript patterns",
		Long: `Convert one or more tree documents to JavaScript RegExp source and flags.

Examples:
  jsregex convert tree.json
  jsregex convert --target ES2018 --output table a.yaml b.yaml
  jsregex convert --format yaml - < tree.yaml
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputFormat, "format", "auto", "input format: auto, json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json, yaml or table")
	cmd.Flags().StringVar(&opts.target, "target", "", "ECMAScript target: ES2009, ES2015 or ES2018")
	cmd.Flags().StringVar(&opts.extraFlags, "flags", "", "extra JavaScript flags (d, g, y)")
	cmd.Flags().BoolVar(&opts.emulatePossessive, "emulate-possessive", false, "emulate possessive quantifiers")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a construct is unsupported")

	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, args []string, opts convertOptions) error {
	convOpts := a.cfg.Options()
	if cmd.Flags().Changed("target") {
		target, err := converter.ParseTarget(opts.target)
		if err != nil {
			return err
		}
		convOpts.Target = target
	}
	if cmd.Flags().Changed("flags") {
		convOpts.ExtraFlags = opts.extraFlags
	}
	if cmd.Flags().Changed("emulate-possessive") {
		convOpts.EmulatePossessive = opts.emulatePossessive
	}

	inputs, err := readInputs(args, cmd.InOrStdin(), opts.inputFormat)
	if err != nil {
		return err
	}
	trees := make([]*syntax.Tree, len(inputs))
	for i, in := range inputs {
		tree, err := syntax.Decode(in.data, in.format)
		if err != nil {
			return fmt.Errorf("%s: %w", in.label, err)
		}
		trees[i] = tree
	}

	engine, err := a.newEngine(convOpts, nil)
	if err != nil {
		return err
	}
	if !a.quiet && (opts.output == "text" || opts.output == "table") {
		engine.RegisterHandler(handlers.WarningEvent, &handlers.ConsoleHandler{Out: cmd.ErrOrStderr()})
	}

	convs, err := engine.ConvertBatch(cmd.Context(), trees)
	if err != nil {
		return err
	}

	if err := writeConversions(cmd.OutOrStdout(), opts.output, inputs, convs); err != nil {
		return err
	}

	if opts.strict {
		for i, conv := range convs {
			for _, w := range conv.Warnings {
				if w.Kind == converter.WarningUnsupported {
					return fmt.Errorf("%s: %w: %s", inputs[i].label, errUnsupported, w.Detail)
				}
			}
		}
	}
	return nil
}

func writeConversions(out io.Writer, format string, inputs []input, convs []*jsregex.Conversion) error {
	switch format {
	case "text":
		for i, conv := range convs {
			if len(convs) > 1 {
				fmt.Fprintf(out, "%s: ", inputs[i].label)
			}
			fmt.Fprintf(out, "/%s/%s\n", conv.Source, conv.Flags)
		}
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(convs)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(convs)
	case "table":
		fmt.Fprintln(out, renderTable(inputs, convs))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(inputs []input, convs []*jsregex.Conversion) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Input", "Pattern", "JavaScript", "Groups", "Synthetic", "Warnings"})

	warnings := 0
	for i, conv := range convs {
		tbl.AppendRow(table.Row{
			inputs[i].label,
			conv.Pattern,
			"/" + conv.Source + "/" + conv.Flags,
			conv.CapturingGroups,
			conv.SyntheticGroups,
			len(conv.Warnings),
		})
		warnings += len(conv.Warnings)
	}
	tbl.AppendFooter(table.Row{"Total: " + strconv.Itoa(len(convs)), "", "", "", "", warnings})

	return tbl.Render()
}

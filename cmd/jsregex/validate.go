package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

var errInvalidDocuments = errors.New("invalid tree documents")

func (a *app) validateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <file.json|file.yaml|->...",
		Short: "Validate tree documents against the tree schema",
		Long: `Validate tree documents against the embedded JSON schema and check that
they decode into a tree.

Examples:
  jsregex validate tree.json
  jsregex validate --format yaml - < tree.yaml
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, args, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "input format: auto, json or yaml")

	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, args []string, format string) error {
	inputs, err := readInputs(args, cmd.InOrStdin(), format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, in := range inputs {
		violations, err := syntax.ValidateDocument(in.data, in.format)
		if err == nil && len(violations) == 0 {
			_, err = syntax.Decode(in.data, in.format)
		}

		switch {
		case err != nil:
			invalid++
			color.New(color.FgRed).Fprintf(out, "%s: %v\n", in.label, err)
		case len(violations) > 0:
			invalid++
			color.New(color.FgRed).Fprintf(out, "%s: %d schema violations\n", in.label, len(violations))
			for _, v := range violations {
				color.New(color.FgRed).Fprintf(out, "  - %s\n", v)
			}
		case !a.quiet:
			color.New(color.FgGreen).Fprintf(out, "%s: valid\n", in.label)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidDocuments, invalid, len(inputs))
	}
	return nil
}

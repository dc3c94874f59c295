package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/compdiff/pkg/config"
	"github.com/ormasoftchile/compdiff/pkg/failure"
)

// --- list ---

func newListCmd(sel *selection, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the fixtures the selected mode would compare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sel.loadConfig(stderr)
			if err != nil {
				return err
			}
			m, chunks, err := sel.resolve(cfg, cmd)
			if err != nil {
				return err
			}
			total := 0
			for _, c := range chunks {
				fmt.Fprintf(stdout, "%s (%d)\n", c.Name, len(c.Fixtures))
				for _, f := range c.Fixtures {
					fmt.Fprintf(stdout, "  %-12s %s\n", f.Category, f.Path)
				}
				total += len(c.Fixtures)
			}
			fmt.Fprintf(stdout, "\n%d fixtures for %s\n", total, m.Label())
			return nil
		},
	}
}

// --- schema ---

func newSchemaCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateJSONSchema()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}
			var out json.RawMessage = data
			formatted, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				fmt.Fprintln(stdout, string(data))
				return nil
			}
			fmt.Fprintln(stdout, string(formatted))
			return nil
		},
	}
}

// --- validate ---

func newValidateCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [compdiff.yaml]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			_, errs := config.ValidateFile(path)
			if printValidation(stderr, errs) {
				return failure.Wrap(failure.Config, "", "validation failed", errReported)
			}
			fmt.Fprintf(stdout, "✓ %s is valid\n", path)
			return nil
		},
	}
}

// --- version ---

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "compdiff %s (build: %s)\n", version, commit)
		},
	}
}

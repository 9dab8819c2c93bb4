package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/outline/internal/notes"
	"github.com/cognicore/outline/pkg/outline"
	"github.com/cognicore/outline/pkg/outline/htmlnote"
	"github.com/cognicore/outline/pkg/outline/internalerr"
	"github.com/cognicore/outline/pkg/outline/templates"
	"github.com/cognicore/outline/pkg/outline/validate"
)

func newConvertCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert a note or every note under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			var results []outline.Result
			if info.IsDir() {
				results, err = a.engine.ConvertDir(cmd.Context(), path, outPath)
				if err != nil {
					return err
				}
			} else {
				results = []outline.Result{a.engine.ConvertFile(cmd.Context(), path, outPath)}
			}

			w := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				printConvertResult(w, r)
				if !r.Success {
					failed++
				}
			}
			printConvertSummary(w, len(results), failed)
			if failed > 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "Output file or directory (default: convert in place)")
	return cmd
}

func newDryRunCmd(a *app) *cobra.Command {
	var showEntities bool
	cmd := &cobra.Command{
		Use:   "dry-run <file>",
		Short: "Print the converted note without writing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			converted, err := a.engine.DryRun(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, converted)

			if showEntities {
				printEntities(w, a.engine.Entities(converted))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showEntities, "entities", false, "List the linked entities after the note")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a note or every note under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			var results []validate.Result
			if info.IsDir() {
				results, err = a.engine.ValidateDir(cmd.Context(), path)
				if err != nil {
					return err
				}
			} else {
				results = []validate.Result{a.engine.ValidateFile(path)}
			}

			w := cmd.OutOrStdout()
			for _, r := range results {
				printValidation(w, r)
			}
			summary := validate.Summarize(results)
			printValidationSummary(w, summary)
			if !summary.Valid {
				return errFailed
			}
			return nil
		},
	}
}

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available note templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.templates.Available()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			return nil
		},
	}
}

func newNewCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "new <template> <output>",
		Short: "Create a note from a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, out := args[0], args[1]
			data, err := parseSets(sets)
			if err != nil {
				return err
			}
			if data["name"] == "" {
				data["name"] = strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
			}

			if err := a.templates.Create(name, out, data); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "✓ Created %s from %s\n", out, name)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Template value as key=value (repeatable)")
	return cmd
}

// parseSets turns key=value pairs into template data
func parseSets(sets []string) (templates.Data, error) {
	data := templates.Data{}
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --set %q must be key=value", internalerr.ErrInvalidInput, kv)
		}
		data[key] = value
	}
	return data, nil
}

func newImportHTMLCmd(a *app) *cobra.Command {
	var (
		outPath string
		convert bool
	)
	cmd := &cobra.Command{
		Use:   "import-html <file.html>",
		Short: "Turn an HTML note export into a markdown note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := htmlnote.ConvertFile(args[0])
			if err != nil {
				return err
			}
			if convert {
				text = a.engine.Transform(text)
			}

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), text)
				if text != "" && !strings.HasSuffix(text, "\n") {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			}
			if err := notes.Write(outPath, text); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "✓ Imported %s → %s\n", args[0], outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "Write the note here instead of stdout")
	cmd.Flags().BoolVar(&convert, "convert", false, "Also run the outline conversion")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded conversion and validation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := a.engine.Runs(cmd.Context(), limit)
			if err != nil {
				return historyError(err)
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum runs to list (0 for all)")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Show the file results of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, results, err := a.engine.Run(cmd.Context(), args[0])
			if err != nil {
				return historyError(err)
			}
			printRun(cmd.OutOrStdout(), run, results)
			return nil
		},
	}
}

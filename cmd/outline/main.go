package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cognicore/outline/pkg/outline"
	"github.com/cognicore/outline/pkg/outline/config"
	"github.com/cognicore/outline/pkg/outline/store"
	"github.com/cognicore/outline/pkg/outline/store/sqlite"
	"github.com/cognicore/outline/pkg/outline/templates"
)

// errFailed marks a command whose documents failed; the details were
// already printed.
var errFailed = errors.New("one or more documents failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errFailed) {
			log.Printf("outline: %v", err)
		}
		stop()
		os.Exit(1)
	}
}

// run executes the command line and releases what the command opened
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app holds what the subcommands share once settings are loaded
type app struct {
	engine    *outline.Outline
	templates *templates.Engine
	cleanup   func()
}

func newRootCmd(a *app) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "outline",
		Short: "Convert markdown notes into outliner bullet notes",
		Long: `outline rewrites markdown notes as tab-indented bullet outlines,
turns YAML front matter into key:: value properties, links known entity
names as [[wikilinks]] and validates the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(configPath)
			if err != nil {
				return err
			}
			if !settings.Color {
				color.NoColor = true
			}
			engine, tmpl, cleanup, err := buildOutline(cmd.Context(), settings)
			if err != nil {
				return err
			}
			a.engine, a.templates, a.cleanup = engine, tmpl, cleanup
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (YAML)")

	root.AddCommand(
		newConvertCmd(a),
		newDryRunCmd(a),
		newValidateCmd(a),
		newTemplatesCmd(a),
		newNewCmd(a),
		newImportHTMLCmd(a),
		newRunsCmd(a),
		newRunCmd(a),
	)
	return root
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

// buildOutline wires the pipeline components, the optional run history and
// the template engine from settings
func buildOutline(ctx context.Context, settings *config.Settings) (*outline.Outline, *templates.Engine, func(), error) {
	loader := &config.Loader{VocabularyPath: settings.Vocabulary}
	comp, err := loader.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	var st store.Store
	if settings.ReportDB != "" {
		st, err = sqlite.OpenSQLite(ctx, settings.ReportDB)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	engine := outline.New(outline.Options{
		Formatter: comp.Formatter,
		Annotator: comp.Annotator,
		Validator: comp.Validator,
		Store:     st,
		Workers:   settings.Workers,
	})

	tmpl := templates.New(nil)
	if settings.TemplatesDir != "" {
		tmpl = templates.Dir(settings.TemplatesDir)
	}

	cleanup := func() {
		if err := engine.Close(); err != nil {
			log.Printf("Warning: closing run store: %v", err)
		}
	}
	return engine, tmpl, cleanup, nil
}

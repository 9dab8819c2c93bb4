package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/cognicore/outline/pkg/outline"
	"github.com/cognicore/outline/pkg/outline/annotate"
	"github.com/cognicore/outline/pkg/outline/internalerr"
	"github.com/cognicore/outline/pkg/outline/store"
	"github.com/cognicore/outline/pkg/outline/validate"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	infoColor = color.New(color.FgCyan)
)

func printConvertResult(w io.Writer, r outline.Result) {
	if r.Success {
		if r.Output == r.File {
			okColor.Fprintf(w, "✓ %s\n", r.File)
		} else {
			okColor.Fprintf(w, "✓ %s → %s\n", r.File, r.Output)
		}
		return
	}
	failColor.Fprintf(w, "✗ %s\n", r.File)
	errColor.Fprintf(w, "  error: %s\n", r.Error)
}

func printConvertSummary(w io.Writer, total, failed int) {
	fmt.Fprintln(w)
	if failed == 0 {
		okColor.Fprintf(w, "Converted %d of %d notes\n", total, total)
		return
	}
	failColor.Fprintf(w, "Converted %d of %d notes, %d failed\n", total-failed, total, failed)
}

func printValidation(w io.Writer, r validate.Result) {
	if r.Valid {
		okColor.Fprintf(w, "✓ %s\n", r.File)
	} else {
		failColor.Fprintf(w, "✗ %s\n", r.File)
	}
	for _, e := range r.Errors {
		errColor.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range r.Warnings {
		warnColor.Fprintf(w, "  warning: %s\n", warn)
	}
}

func printValidationSummary(w io.Writer, s validate.Summary) {
	fmt.Fprintln(w)
	line := fmt.Sprintf("%d of %d notes valid, %d errors, %d warnings", s.ValidFiles, s.Files, s.Errors, s.Warnings)
	if s.Valid {
		okColor.Fprintln(w, line)
		return
	}
	failColor.Fprintln(w, line)
}

func printEntities(w io.Writer, entities []annotate.Entity) {
	fmt.Fprintln(w)
	if len(entities) == 0 {
		infoColor.Fprintln(w, "No entities linked")
		return
	}
	infoColor.Fprintln(w, "Entities:")
	for _, e := range entities {
		fmt.Fprintf(w, "  %-10s %s (%d)\n", e.Category, e.Name, e.Count)
	}
}

func printRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}
	for _, r := range runs {
		status := okColor
		if r.Failed > 0 {
			status = failColor
		}
		status.Fprintf(w, "%s", r.ID)
		fmt.Fprintf(w, "  %-8s %3d files %3d failed  %s  %s\n",
			r.Kind, r.Files, r.Failed, r.StartedAt.Local().Format(time.DateTime), r.Root)
	}
}

func printRun(w io.Writer, run store.Run, results []store.FileResult) {
	infoColor.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  kind:     %s\n", run.Kind)
	fmt.Fprintf(w, "  root:     %s\n", run.Root)
	fmt.Fprintf(w, "  started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.Finished() {
		fmt.Fprintf(w, "  duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "  files:    %d (%d failed)\n\n", run.Files, run.Failed)

	for _, r := range results {
		if r.Success {
			okColor.Fprintf(w, "✓ %s\n", r.Path)
		} else {
			failColor.Fprintf(w, "✗ %s\n", r.Path)
		}
		if r.Error != "" {
			errColor.Fprintf(w, "  error: %s\n", r.Error)
		}
		for _, e := range r.Errors {
			errColor.Fprintf(w, "  error: %s\n", e)
		}
		for _, warn := range r.Warnings {
			warnColor.Fprintf(w, "  warning: %s\n", warn)
		}
	}
}

func historyError(err error) error {
	if errors.Is(err, internalerr.ErrStoreUnavailable) {
		return fmt.Errorf("%w: set report_db in the settings file or OUTLINE_REPORT_DB", err)
	}
	return err
}

// Package outline converts markdown notes into outliner-style bullet notes.
//
// A conversion runs three stages: the formatter rebuilds the hierarchy as
// tab-indented bullets, the annotator links known entity names and the
// validator reports what still breaks the target dialect.
package outline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cognicore/outline/internal/notes"
	"github.com/cognicore/outline/pkg/outline/annotate"
	"github.com/cognicore/outline/pkg/outline/format"
	"github.com/cognicore/outline/pkg/outline/internalerr"
	"github.com/cognicore/outline/pkg/outline/store"
	"github.com/cognicore/outline/pkg/outline/validate"
)

// Outline is the conversion facade
type Outline struct {
	formatter *format.Formatter
	annotator *annotate.Annotator
	validator *validate.Validator
	store     store.Store
	workers   int
}

// Options configures an Outline instance. Nil stages get their defaults;
// a nil Store disables run history.
type Options struct {
	Formatter *format.Formatter
	Annotator *annotate.Annotator
	Validator *validate.Validator
	Store     store.Store
	Workers   int
}

// New creates an Outline instance with the given dependencies
func New(opts Options) *Outline {
	o := &Outline{
		formatter: opts.Formatter,
		annotator: opts.Annotator,
		validator: opts.Validator,
		store:     opts.Store,
		workers:   opts.Workers,
	}
	if o.formatter == nil {
		o.formatter = format.New(nil)
	}
	if o.annotator == nil {
		o.annotator = annotate.Default()
	}
	if o.validator == nil {
		o.validator = validate.New()
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

// Close releases the run store, if any
func (o *Outline) Close() error {
	if o.store == nil {
		return nil
	}
	return o.store.Close()
}

// Result is the outcome of converting one document
type Result struct {
	File    string
	Output  string
	Success bool
	Error   string
}

// Transform formats and annotates a document
func (o *Outline) Transform(text string) string {
	return o.annotator.Annotate(o.formatter.FormatText(text))
}

// Entities lists the entity names the annotator recognizes in text
func (o *Outline) Entities(text string) []annotate.Entity {
	return o.annotator.Matches(text)
}

// Validate checks a document held in memory
func (o *Outline) Validate(text string) validate.Result {
	return o.validator.Validate(text)
}

// DryRun returns the converted text of a file without writing anything
func (o *Outline) DryRun(path string) (string, error) {
	text, err := notes.Read(path)
	if err != nil {
		return "", err
	}
	return o.Transform(text), nil
}

// ConvertFile converts in and writes the result to out. An empty out
// converts in place. Failures are reported in the Result.
func (o *Outline) ConvertFile(ctx context.Context, in, out string) Result {
	if out == "" {
		out = in
	}
	res := Result{File: in, Output: out}

	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	text, err := notes.Read(in)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if err := notes.Write(out, o.Transform(text)); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	return res
}

// ConvertDir converts every note under dir. Outputs mirror the relative
// layout under outDir, which defaults to dir. The error is non-nil only when
// dir itself cannot be read; per-file failures are in the results.
func (o *Outline) ConvertDir(ctx context.Context, dir, outDir string) ([]Result, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: directory is required", internalerr.ErrInvalidInput)
	}
	paths, err := notes.Discover(dir)
	if err != nil {
		return nil, err
	}
	if outDir == "" {
		outDir = dir
	}

	results := runPool(ctx, o.workers, len(paths),
		func(i int) Result {
			out, err := notes.Mirror(dir, paths[i], outDir)
			if err != nil {
				return Result{File: paths[i], Error: err.Error()}
			}
			return o.ConvertFile(ctx, paths[i], out)
		},
		func(i int, err error) Result {
			return Result{File: paths[i], Error: err.Error()}
		},
	)

	records := make([]store.FileResult, len(results))
	for i, r := range results {
		records[i] = store.FileResult{Path: r.File, Output: r.Output, Success: r.Success, Error: r.Error}
	}
	o.record(ctx, store.KindConvert, dir, records)

	return results, nil
}

// ValidateFile validates a file. A read failure becomes an invalid result.
func (o *Outline) ValidateFile(path string) validate.Result {
	text, err := notes.Read(path)
	if err != nil {
		return validate.Result{
			File:     path,
			Errors:   []string{"Failed to read file: " + err.Error()},
			Warnings: []string{},
		}
	}
	res := o.validator.Validate(text)
	res.File = path
	return res
}

// ValidateDir validates every note under dir
func (o *Outline) ValidateDir(ctx context.Context, dir string) ([]validate.Result, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: directory is required", internalerr.ErrInvalidInput)
	}
	paths, err := notes.Discover(dir)
	if err != nil {
		return nil, err
	}

	results := runPool(ctx, o.workers, len(paths),
		func(i int) validate.Result {
			return o.ValidateFile(paths[i])
		},
		func(i int, err error) validate.Result {
			return validate.Result{File: paths[i], Errors: []string{err.Error()}, Warnings: []string{}}
		},
	)

	records := make([]store.FileResult, len(results))
	for i, r := range results {
		records[i] = store.FileResult{Path: r.File, Success: r.Valid, Errors: r.Errors, Warnings: r.Warnings}
	}
	o.record(ctx, store.KindValidate, dir, records)

	return results, nil
}

// Runs lists recorded runs, newest first
func (o *Outline) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if o.store == nil {
		return nil, internalerr.ErrStoreUnavailable
	}
	return o.store.ListRuns(ctx, limit)
}

// Run returns a recorded run with its file results
func (o *Outline) Run(ctx context.Context, id string) (store.Run, []store.FileResult, error) {
	if o.store == nil {
		return store.Run{}, nil, internalerr.ErrStoreUnavailable
	}
	run, err := o.store.GetRun(ctx, id)
	if err != nil {
		return store.Run{}, nil, err
	}
	results, err := o.store.Results(ctx, id)
	if err != nil {
		return store.Run{}, nil, err
	}
	return run, results, nil
}

// record stores a finished batch. History is best effort: failures are
// logged and the batch results stand.
func (o *Outline) record(ctx context.Context, kind, root string, records []store.FileResult) {
	if o.store == nil {
		return
	}
	// The batch may have been cancelled; its history is still written.
	ctx = context.WithoutCancel(ctx)

	run, err := o.store.CreateRun(ctx, kind, root)
	if err != nil {
		log.Printf("Warning: recording %s run for %s: %v", kind, root, err)
		return
	}
	for _, r := range records {
		if err := o.store.RecordResult(ctx, run.ID, r); err != nil {
			log.Printf("Warning: recording result for %s: %v", r.Path, err)
		}
	}
	if _, err := o.store.FinishRun(ctx, run.ID); err != nil {
		log.Printf("Warning: finishing run %s: %v", run.ID, err)
	}
}

// runPool calls fn for indices 0..n-1 on at most workers goroutines and
// returns the results in index order. Once ctx is done no new index is
// scheduled; unscheduled indices get cancelled(i, ctx.Err()).
func runPool[T any](ctx context.Context, workers, n int, fn func(int) T, cancelled func(int, error) T) []T {
	results := make([]T, n)
	if n == 0 {
		return results
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fn(i)
			}
		}()
	}

	next := 0
feed:
	for ; next < n; next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < n; i++ {
		results[i] = cancelled(i, ctx.Err())
	}
	return results
}

// Package fileproc runs per-file work across a bounded worker pool.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/jspahr/pylens/pkg/parser"
)

// ProcessingError records a failure for a single file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects per-file failures from a parallel run.
type ProcessingErrors struct {
	mu     sync.Mutex
	Errors []ProcessingError
}

// Add appends an error. Safe for concurrent use.
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors reports whether any file failed.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
	}
}

// DefaultWorkerMultiplier scales NumCPU to the worker count. Parsing
// mixes I/O with CGO calls, so 2x keeps the pool busy.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called once per completed file.
type ProgressFunc func()

// MapFiles runs fn for every file with a dedicated parser per call and
// returns the successful results in input order. Failed files are
// dropped; use MapFilesCollectErrors to observe failures.
func MapFiles[T any](files []string, fn func(*parser.Parser, string) (T, error)) []T {
	results, _ := run(context.Background(), files, 0, fn, nil)
	return results
}

// MapFilesWithProgress is MapFiles with a per-file progress callback.
func MapFilesWithProgress[T any](files []string, fn func(*parser.Parser, string) (T, error), onProgress ProgressFunc) []T {
	results, _ := run(context.Background(), files, 0, fn, onProgress)
	return results
}

// MapFilesCollectErrors runs fn for every file and returns results in
// input order plus any per-file errors.
func MapFilesCollectErrors[T any](files []string, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	return run(context.Background(), files, 0, fn, nil)
}

// MapFilesWithContext is MapFilesCollectErrors with cancellation:
// files not started before ctx is done are reported as context errors.
func MapFilesWithContext[T any](ctx context.Context, files []string, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	return run(ctx, files, 0, fn, nil)
}

// MapFilesN bounds the worker count explicitly. maxWorkers <= 0 means
// the default.
func MapFilesN[T any](files []string, maxWorkers int, fn func(*parser.Parser, string) (T, error), onProgress ProgressFunc) []T {
	results, _ := run(context.Background(), files, maxWorkers, fn, onProgress)
	return results
}

func run[T any](ctx context.Context, files []string, maxWorkers int, fn func(*parser.Parser, string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	slots := make([]*T, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, path := range files {
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				if onProgress != nil {
					onProgress()
				}
				return
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, path)
			if err != nil {
				errs.Add(path, err)
			} else {
				slots[i] = &result
			}
			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	// Compact while preserving input order.
	results := make([]T, 0, len(files))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// ForEachFile runs fn for every file without a parser, for work that
// does not need a syntax tree. Results keep input order.
func ForEachFile[T any](files []string, fn func(string) (T, error)) []T {
	results, _ := ForEachFileCollectErrors(files, fn)
	return results
}

// ForEachFileCollectErrors is ForEachFile plus the per-file errors.
func ForEachFileCollectErrors[T any](files []string, fn func(string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	slots := make([]*T, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, path := range files {
		p.Go(func() {
			result, err := fn(path)
			if err != nil {
				errs.Add(path, err)
				return
			}
			slots[i] = &result
		})
	}
	p.Wait()

	results := make([]T, 0, len(files))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

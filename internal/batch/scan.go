package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

// Item pairs a snapshot with the file generated from it.
type Item struct {
	Input  string
	Output string
}

// Failure records why one item could not be processed.
type Failure struct {
	Item
	Err error
}

// Report summarizes a directory scan.
type Report struct {
	Converted []Item
	Failed    []Failure
}

// Err returns nil when every item converted, and otherwise an error joining
// every failure.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f.Err
	}
	return errors.Wrapf(errors.Join(errs...), "%d of %d conversions failed",
		len(r.Failed), len(r.Failed)+len(r.Converted))
}

// Items lists the snapshots directly inside inDir, in name order, paired
// with their outputs in outDir. Snapshots mapping onto an output already
// claimed by an earlier snapshot are returned as failures.
func (r *Runner) Items(inDir, outDir string) ([]Item, []Failure, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, nil, errors.Mark(errors.Wrapf(err, "read input directory %s", inDir), errors.ErrEnvironment)
	}
	var items []Item
	var collisions []Failure
	claimed := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := ifc.FormatOf(e.Name()); !ok {
			continue
		}
		item := Item{
			Input:  filepath.Join(inDir, e.Name()),
			Output: filepath.Join(outDir, r.OutputName(e.Name())),
		}
		if prev, ok := claimed[item.Output]; ok {
			collisions = append(collisions, Failure{Item: item, Err: errors.Mark(
				errors.Newf("%s and %s both generate %s", prev, item.Input, item.Output), errors.ErrEnvironment)})
			continue
		}
		claimed[item.Output] = item.Input
		items = append(items, item)
	}
	return items, collisions, nil
}

// Scan converts every snapshot in inDir into outDir. Items are converted in
// parallel and independently: a failed item never stops the others. The
// returned error covers environment failures of the scan itself; per-item
// failures are in the report.
func (r *Runner) Scan(ctx context.Context, inDir, outDir string) (*Report, error) {
	items, failed, err := r.Items(inDir, outDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "create output directory %s", outDir), errors.ErrEnvironment)
	}

	errs := r.forEach(ctx, items, func(_ int, it Item) error {
		return r.Convert(it.Input, it.Output)
	})

	report := &Report{Failed: failed}
	for i, it := range items {
		if errs[i] != nil {
			r.log.Errorw("Conversion failed", "input", it.Input, "error", errors.Describe(errs[i]))
			report.Failed = append(report.Failed, Failure{Item: it, Err: errs[i]})
			continue
		}
		report.Converted = append(report.Converted, it)
	}
	for _, f := range failed {
		r.log.Errorw("Conversion failed", "input", f.Input, "error", f.Err.Error())
	}
	r.log.Infow("Scan finished", "input_dir", inDir, "converted", len(report.Converted), "failed", len(report.Failed))
	return report, nil
}

// forEach runs fn over items with at most r.workers in flight and returns
// the per-item errors. Items not started before ctx ends fail with the
// context error.
func (r *Runner) forEach(ctx context.Context, items []Item, fn func(int, Item) error) []error {
	errs := make([]error, len(items))
	var eg errgroup.Group
	eg.SetLimit(r.workers)
	for i, it := range items {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(i, it)
			return nil
		})
	}
	_ = eg.Wait()
	return errs
}

// CheckResult lists the generated files that do not match a fresh
// generation.
type CheckResult struct {
	Missing []Item
	Stale   []Item
	Failed  []Failure
}

// UpToDate reports whether every output exists and matches.
func (c *CheckResult) UpToDate() bool {
	return len(c.Missing) == 0 && len(c.Stale) == 0 && len(c.Failed) == 0
}

// Check regenerates every snapshot in inDir in memory and compares the result
// with the files in outDir. Nothing is written.
func (r *Runner) Check(ctx context.Context, inDir, outDir string) (*CheckResult, error) {
	items, failed, err := r.Items(inDir, outDir)
	if err != nil {
		return nil, err
	}

	const (
		matches = iota
		missing
		stale
	)
	states := make([]int, len(items))
	errs := r.forEach(ctx, items, func(i int, it Item) error {
		want, err := r.generate(it.Input)
		if err != nil {
			return err
		}
		got, err := os.ReadFile(it.Output)
		switch {
		case os.IsNotExist(err):
			states[i] = missing
		case err != nil:
			return errors.Mark(errors.Wrapf(err, "read %s", it.Output), errors.ErrEnvironment)
		case !bytes.Equal(got, want):
			states[i] = stale
		}
		return nil
	})

	result := &CheckResult{Failed: failed}
	for i, it := range items {
		switch {
		case errs[i] != nil:
			result.Failed = append(result.Failed, Failure{Item: it, Err: errs[i]})
		case states[i] == missing:
			r.log.Warnw("Generated file is missing", "input", it.Input, "output", it.Output)
			result.Missing = append(result.Missing, it)
		case states[i] == stale:
			r.log.Warnw("Generated file is out of date", "input", it.Input, "output", it.Output)
			result.Stale = append(result.Stale, it)
		}
	}
	return result, nil
}

// Package batch drives conversions over files: a single snapshot, every
// snapshot of a directory, an up-to-date check and a watch loop.
package batch

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/generator"
	"github.com/calumari/neatgen/internal/ifc"
	"github.com/calumari/neatgen/internal/logger"
)

// DefaultExtension is the suffix of generated files.
const DefaultExtension = ".cpp"

// Options configures a Runner.
type Options struct {
	Generator generator.Config
	Extension string // output suffix, DefaultExtension when empty
	Workers   int    // parallel conversions, GOMAXPROCS when zero
	Logger    *zap.SugaredLogger
}

// Runner converts snapshots into generated source files.
type Runner struct {
	gen       generator.Config
	extension string
	workers   int
	log       *zap.SugaredLogger
}

// New creates a Runner.
func New(opts Options) *Runner {
	r := &Runner{
		gen:       opts.Generator,
		extension: opts.Extension,
		workers:   opts.Workers,
		log:       opts.Logger,
	}
	if r.extension == "" {
		r.extension = DefaultExtension
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.log == nil {
		r.log = logger.Logger
	}
	if r.gen.Logger == nil {
		r.gen.Logger = r.log
	}
	return r
}

// OutputName returns the generated file name for a snapshot name, so
// "game.ifc.yaml" becomes "game.cpp".
func (r *Runner) OutputName(snapshot string) string {
	return ifc.TrimSuffix(filepath.Base(snapshot)) + r.extension
}

// Convert generates the source file out from the snapshot in. The output is
// left untouched when generation fails.
func (r *Runner) Convert(in, out string) error {
	if err := r.checkPaths(in, out); err != nil {
		return err
	}
	data, err := r.generate(in)
	if err != nil {
		return err
	}
	if err := writeFile(out, data); err != nil {
		return err
	}
	r.log.Infow("Converted", "input", in, "output", out, "bytes", len(data))
	return nil
}

func (r *Runner) checkPaths(in, out string) error {
	if _, ok := ifc.FormatOf(in); !ok {
		return errors.WithHint(
			errors.Mark(errors.Newf("input %s is not a graph snapshot", in), errors.ErrEnvironment),
			"input files end in .ifc.yaml, .ifc.yml or .ifc.msgpack")
	}
	if !strings.HasSuffix(strings.ToLower(out), strings.ToLower(r.extension)) {
		return errors.Mark(errors.Newf("output %s does not end in %s", out, r.extension), errors.ErrEnvironment)
	}
	info, err := os.Stat(in)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "input %s", in), errors.ErrEnvironment)
	}
	if info.IsDir() {
		return errors.Mark(errors.Newf("input %s is a directory", in), errors.ErrEnvironment)
	}
	return nil
}

// generate loads one snapshot and returns the generated document.
func (r *Runner) generate(in string) ([]byte, error) {
	graph, err := ifc.Load(in)
	if err != nil {
		return nil, err
	}
	data, err := generator.Generate(graph, r.gen)
	if err != nil {
		return nil, errors.Wrapf(err, "convert %s", in)
	}
	return data, nil
}

// Snapshot re-encodes the snapshot in into out, picking both formats from
// the file suffixes.
func Snapshot(in, out string) error {
	if _, ok := ifc.FormatOf(out); !ok {
		return errors.WithHint(
			errors.Mark(errors.Newf("output %s is not a graph snapshot name", out), errors.ErrEnvironment),
			"name the output *.ifc.yaml, *.ifc.yml or *.ifc.msgpack")
	}
	graph, err := ifc.Load(in)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return errors.Mark(errors.Wrapf(err, "create directory for %s", out), errors.ErrEnvironment)
	}
	return ifc.Save(out, graph)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Mark(errors.Wrapf(err, "create directory for %s", path), errors.ErrEnvironment)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Mark(errors.Wrapf(err, "write %s", path), errors.ErrEnvironment)
	}
	return nil
}

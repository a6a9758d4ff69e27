package batch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/ifc"
)

// DefaultDebounce is the quiet period Watch waits for after the last change
// to a snapshot before converting it.
const DefaultDebounce = 250 * time.Millisecond

// watcher converts snapshots of one directory as they change.
type watcher struct {
	r        *Runner
	outDir   string
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closed  bool
	running sync.WaitGroup
}

// Watch converts every snapshot in inDir, then keeps converting snapshots
// that are written or created until ctx ends. Conversion failures are logged
// and never stop the loop. A non-positive debounce selects DefaultDebounce.
func (r *Runner) Watch(ctx context.Context, inDir, outDir string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fw.Close()
	if err := fw.Add(inDir); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to watch %s", inDir), errors.ErrEnvironment)
	}

	report, err := r.Scan(ctx, inDir, outDir)
	if err != nil {
		return err
	}
	if err := report.Err(); err != nil {
		r.log.Warnw("Initial scan had failures", "failed", len(report.Failed))
	}
	r.log.Infow("Watching for snapshot changes", "input_dir", inDir, "output_dir", outDir)

	w := &watcher{r: r, outDir: outDir, debounce: debounce, timers: map[string]*time.Timer{}}
	defer w.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, ok := ifc.FormatOf(event.Name); !ok {
				continue
			}
			r.log.Debugw("Snapshot changed", "file", event.Name, "op", event.Op.String())
			w.schedule(event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			r.log.Warnw("Watcher error", "error", err)
		}
	}
}

// schedule converts path once no further change arrived for the debounce
// period.
func (w *watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.convert(path) })
}

func (w *watcher) convert(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.timers, path)
	w.running.Add(1)
	w.mu.Unlock()
	defer w.running.Done()

	out := filepath.Join(w.outDir, w.r.OutputName(path))
	if err := w.r.Convert(path, out); err != nil {
		w.r.log.Errorw("Conversion failed", "input", path, "error", errors.Describe(err))
	}
}

// shutdown cancels pending conversions and waits for running ones.
func (w *watcher) shutdown() {
	w.mu.Lock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	w.running.Wait()
}

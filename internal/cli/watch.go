package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	fio "github.com/matzehuels/facetlayout/pkg/io"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/pipeline"
)

// watchDebounce coalesces the bursts of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// watchFile calls fn after every change to path until ctx is done.
//
// The parent directory is watched rather than the file itself, since many
// editors save by renaming a temporary file over the original.
func watchFile(ctx context.Context, path string, debounce time.Duration, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			loggerFromContext(ctx).Warn("watch error", "err", err)
		case <-timer:
			timer = nil
			fn()
		}
	}
}

// watcher keeps the routed model of a watched document between changes.
type watcher struct {
	input, output string
	opts          pipeline.Options
	model         *layout.Model
}

// watchLayout routes input once, then again on every change, until ctx is
// cancelled. Watch mode always computes and never uses the cache.
func (c *CLI) watchLayout(ctx context.Context, input, output string, opts pipeline.Options) error {
	ctx = withLogger(ctx, c.Logger)
	w := &watcher{input: input, output: output, opts: opts}

	if err := w.update(ctx); err != nil {
		return err
	}
	printInfo("Watching %s (Ctrl+C to stop)", input)

	err := watchFile(ctx, input, watchDebounce, func() {
		if err := w.update(ctx); err != nil {
			printError("%s", apperrors.UserMessage(err))
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// update reloads the document and re-routes it. A structurally unchanged
// document reuses the current model with its new boxes.
func (w *watcher) update(ctx context.Context) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	doc, err := fio.ImportDocument(w.input)
	if err != nil {
		return err
	}

	var warn error
	reused := false
	if w.model != nil {
		set, setWarn := doc.Set()
		if set != nil && w.model.Resync(set) == nil {
			if err := doc.ApplyBoxes(w.model); err != nil {
				return err
			}
			warn, reused = setWarn, true
		}
	}
	if !reused {
		m, buildWarn := doc.Build()
		if m == nil {
			return buildWarn
		}
		w.model, warn = m, buildWarn
	}

	stats, err := pipeline.Layout(ctx, w.model, w.opts, logger)
	if err != nil && !apperrors.IsCapacityExceeded(err) {
		return err
	}
	warn = apperrors.Join(warn, err)

	if err := fio.ExportLayout(fio.NewLayout(w.model), w.output); err != nil {
		return fmt.Errorf("write output %s: %w", w.output, err)
	}

	p.done(fmt.Sprintf("Routed %d relationships, %d drawn", stats.Relationships, stats.Drawn))
	logger.Debug("watch update", "reused_model", reused, "output", w.output)
	if warn != nil {
		printWarning("%s", apperrors.UserMessage(warn))
	}
	return nil
}

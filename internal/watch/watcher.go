package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Inputs lists what a watcher observes.
type Inputs struct {
	Dirs       []string // watched recursively
	ConfigFile string   // watched through its parent directory
	IgnoreDir  string   // events below this directory never trigger (the build output)
}

// Watcher turns filesystem events on the inputs into debounced rebuilds.
type Watcher struct {
	inputs    Inputs
	rebuilder *Rebuilder
}

// NewWatcher returns a Watcher that triggers rb.
func NewWatcher(inputs Inputs, rb *Rebuilder) *Watcher {
	return &Watcher{inputs: inputs, rebuilder: rb}
}

// Run watches until ctx is canceled. The rebuild worker runs for the same lifetime.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return sberrors.WatchError("", err)
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.inputs.Dirs {
		if err := fsutil.AddRecursive(fw, dir); err != nil {
			return sberrors.WatchError(dir, err)
		}
	}
	if w.inputs.ConfigFile != "" {
		dir := filepath.Dir(w.inputs.ConfigFile)
		if err := fw.Add(dir); err != nil {
			return sberrors.WatchError(dir, err)
		}
	}

	go w.rebuilder.Run(ctx)
	slog.Info("Watching for changes, press CTRL+C to stop", slog.Any("dirs", w.inputs.Dirs))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopped watching for changes")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if !w.Relevant(ev) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = fsutil.AddRecursive(fw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	w.rebuilder.Trigger()
}

// Relevant reports whether ev should cause a rebuild.
func (w *Watcher) Relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || fsutil.Ignored(ev.Name) {
		return false
	}
	path := filepath.Clean(ev.Name)
	if w.inputs.IgnoreDir != "" && within(w.inputs.IgnoreDir, path) {
		return false
	}
	for _, dir := range w.inputs.Dirs {
		if within(dir, path) {
			return true
		}
	}
	return w.inputs.ConfigFile != "" && path == filepath.Clean(w.inputs.ConfigFile)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

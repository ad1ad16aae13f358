// Package syncer copies in-place edits of static files in the built site back to the content directory.
//
// It lets a user tweak CSS or images against the rendered output and keep the change.
// Rendered pages are template output and are never written back.
package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
)

// DefaultDelay is the default per-path buffer delay.
const DefaultDelay = time.Second

// ErrNotBuilt is returned when the watch or result directory is missing.
var ErrNotBuilt = errors.New("the static site has not been built yet")

// Action is the outcome of handling one filesystem event.
type Action string

const (
	ActionSynced      Action = "synced"
	ActionBuffered    Action = "buffered"
	ActionMoved       Action = "moved"
	ActionOutside     Action = "outside"
	ActionMissingPair Action = "missing_pair"
	ActionRendered    Action = "rendered"
	ActionUnchanged   Action = "unchanged"
	ActionIgnored     Action = "ignored"
)

// Syncer watches WatchDir and mirrors modified files into ResultDir.
type Syncer struct {
	watchDir  string
	resultDir string
	delay     time.Duration
	now       func() time.Time
	logger    *slog.Logger
	retry     retry.Policy
	sleep     func(time.Duration)
	copyFile  func(src, dst string) error

	// last accepted event per path; owned by the event loop goroutine.
	last map[string]time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Syncer) { s.now = now } }

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option { return func(s *Syncer) { s.logger = l } }

// WithRetry replaces the copy retry policy. sleep may be nil.
func WithRetry(p retry.Policy, sleep func(time.Duration)) Option {
	return func(s *Syncer) { s.retry, s.sleep = p, sleep }
}

// New returns a Syncer copying changes under watchDir back into resultDir.
func New(watchDir, resultDir string, delay time.Duration, opts ...Option) (*Syncer, error) {
	absWatch, err := filepath.Abs(watchDir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}
	absResult, err := filepath.Abs(resultDir)
	if err != nil {
		return nil, fmt.Errorf("resolve result dir: %w", err)
	}
	if delay < 0 {
		return nil, sberrors.ValidationFailed("delay", "must not be negative")
	}
	s := &Syncer{
		watchDir:  absWatch,
		resultDir: absResult,
		delay:     delay,
		now:       time.Now,
		logger:    slog.Default(),
		retry:     retry.DefaultPolicy(),
		copyFile:  fsutil.CopyFile,
		last:      map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.retry.Validate(); err != nil {
		return nil, sberrors.ValidationFailed("retry", err.Error())
	}
	return s, nil
}

// CheckDirs verifies that both directories exist.
func (s *Syncer) CheckDirs() error {
	for _, dir := range []string{s.watchDir, s.resultDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s is missing or not a directory", ErrNotBuilt, dir)
		}
	}
	return nil
}

// Run watches until ctx is canceled.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.CheckDirs(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sberrors.WatchError(s.watchDir, err)
	}
	defer func() { _ = watcher.Close() }()

	if err := fsutil.AddRecursive(watcher, s.watchDir); err != nil {
		return sberrors.WatchError(s.watchDir, err)
	}

	s.logger.Info("Waiting for static file changes, press CTRL+C to stop",
		logfields.Source(s.watchDir), logfields.Output(s.resultDir))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopped watching for static file changes")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fsutil.AddRecursive(watcher, ev.Name)
				}
			}
			if _, err := s.HandleEvent(ev); err != nil {
				s.logger.Warn("Sync failed", logfields.Path(ev.Name), logfields.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

// HandleEvent applies one filesystem event and reports what was done.
func (s *Syncer) HandleEvent(ev fsnotify.Event) (Action, error) {
	src, err := filepath.Abs(ev.Name)
	if err != nil {
		return ActionIgnored, err
	}
	if fsutil.Ignored(src) {
		return ActionIgnored, nil
	}

	if ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
		s.logger.Warn("File was moved, renamed or removed in the build output. Make the change in your source directory and rebuild the site. Ignoring change",
			logfields.Path(src))
		return ActionMoved, nil
	}
	if !ev.Has(fsnotify.Write) {
		return ActionIgnored, nil
	}

	now := s.now()
	if last, ok := s.last[src]; ok && now.Sub(last) < s.delay {
		return ActionBuffered, nil
	}
	s.last[src] = now

	rel, err := filepath.Rel(s.watchDir, src)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		s.logger.Warn("Received a change for a file outside the watch directory. Ignoring change", logfields.Path(src))
		return ActionOutside, nil
	}

	if !strings.ContainsRune(rel, filepath.Separator) && strings.EqualFold(filepath.Ext(rel), ".html") {
		s.logger.Info("Rendered page changed in the build output. Edit the page in your source directory instead. Ignoring change",
			logfields.Path(src))
		return ActionRendered, nil
	}

	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return ActionIgnored, nil
	}

	paired := filepath.Join(s.resultDir, rel)
	pairedInfo, err := os.Stat(paired)
	if err != nil || !pairedInfo.Mode().IsRegular() {
		s.logger.Warn("Paired file does not exist in the source directory. Verify the file exists there and rebuild the site. Ignoring change",
			logfields.Path(src))
		return ActionMissingPair, nil
	}
	// A rebuild rewrites the output with identical bytes; copying those back would only touch the source.
	if same, err := sameContent(src, paired, info, pairedInfo); err == nil && same {
		return ActionUnchanged, nil
	}

	// Editors save in several steps, so a copy can race a partial write.
	err = s.retry.Do(s.sleep, func() error {
		if err := s.copyFile(src, paired); err != nil {
			return sberrors.WrapRetryable(err, sberrors.CategoryFileSystem, sberrors.SeverityError, "filesystem operation failed").
				WithContext("operation", "copy").
				WithContext("path", paired)
		}
		return nil
	})
	if err != nil {
		return ActionIgnored, err
	}
	shown := paired
	if r, err := filepath.Rel(filepath.Dir(s.resultDir), paired); err == nil {
		shown = r
	}
	s.logger.Info("Synchronized: "+shown, logfields.Path(paired))
	return ActionSynced, nil
}

func sameContent(a, b string, ai, bi os.FileInfo) (bool, error) {
	if ai.Size() != bi.Size() {
		return false, nil
	}
	da, err := os.ReadFile(filepath.Clean(a))
	if err != nil {
		return false, err
	}
	db, err := os.ReadFile(filepath.Clean(b))
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

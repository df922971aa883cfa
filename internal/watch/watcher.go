// Package watch standardizes export files as they land in a directory.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"cadnorm/internal/ingest"
	"cadnorm/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is handled.
const DefaultSettle = 500 * time.Millisecond

// Handler processes one settled file. Errors are logged and do not stop
// the watcher.
type Handler func(ctx context.Context, path string) error

// Watcher monitors one directory.
type Watcher struct {
	dir    string
	handle Handler
	settle time.Duration
	filter func(string) bool
	log    *logger.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithFilter replaces the file filter. The default accepts every format
// ingest can read.
func WithFilter(fn func(path string) bool) Option {
	return func(w *Watcher) { w.filter = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// New creates a Watcher for dir.
func New(dir string, handle Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:    dir,
		handle: handle,
		settle: DefaultSettle,
		filter: ingest.Supported,
		log:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.log = w.log.WithComponent("watch")

	return w
}

// Backfill handles the files already present, in name order.
func (w *Watcher) Backfill(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if !e.IsDir() && w.filter(e.Name()) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		w.run(ctx, filepath.Join(w.dir, name))
	}

	return nil
}

// Run watches until ctx is done. Files are handled one at a time once
// they have seen no writes for the settle period.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}

	ready := make(chan string, 16)
	timers := map[string]*time.Timer{}

	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher closed")
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || !w.filter(ev.Name) {
				continue
			}

			path := ev.Name
			if t, ok := timers[path]; ok {
				t.Reset(w.settle)
				continue
			}

			timers[path] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})
		case path := <-ready:
			delete(timers, path)

			if info, err := os.Stat(path); err != nil || info.IsDir() {
				continue
			}

			w.run(ctx, path)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}

			w.log.Warnw("watcher error", "error", err)
		}
	}
}

func (w *Watcher) run(ctx context.Context, path string) {
	if err := w.handle(ctx, path); err != nil {
		w.log.Errorw("file failed", "path", path, "error", err)
		return
	}

	w.log.Debugw("file handled", "path", path)
}

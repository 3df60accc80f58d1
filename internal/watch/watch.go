// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch converts HEIC files as they appear in a directory. File
// system events are debounced per path so a file is handed over only once
// its writer has gone quiet, and handlers run one at a time.
package watch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/karrick/godirwalk"

	"github.com/pdiddy/photoix/internal/enumerate"
)

// DefaultDebounce is how long a path must stay quiet before it is handled.
const DefaultDebounce = 2 * time.Second

// Handler is called with each settled HEIC path.
type Handler func(ctx context.Context, path string)

// Options configures a Watcher.
type Options struct {
	// Recursive watches subdirectories, including ones created later.
	Recursive bool
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
	// Extensions overrides enumerate.DefaultExtensions.
	Extensions []string
}

// Watcher monitors a directory tree for new HEIC files.
type Watcher struct {
	dir      string
	opts     Options
	match    enumerate.Options
	watcher  *fsnotify.Watcher
	logger   hclog.Logger
	debounce time.Duration
}

// New starts watching dir. Events that happen after New returns are
// observed by Run.
func New(dir string, opts Options, logger hclog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		dir:      dir,
		opts:     opts,
		match:    enumerate.Options{Extensions: opts.Extensions},
		watcher:  fw,
		logger:   logger.Named("watch"),
		debounce: opts.Debounce,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if err := w.addTree(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	if !w.opts.Recursive {
		return w.add(root)
	}
	return godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			return w.add(path)
		},
		ErrorCallback: func(string, error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
}

func (w *Watcher) add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Debug("watching directory", "dir", dir)
	return nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers settled paths to handle until ctx is done or the watcher is
// closed. Paths that settle in the same tick are handled in lexical order.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	pending := make(map[string]time.Time)
	tick := time.NewTicker(w.debounce / 4)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.observe(ev, pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case now := <-tick.C:
			var ready []string
			for path, last := range pending {
				if now.Sub(last) >= w.debounce {
					ready = append(ready, path)
				}
			}
			sort.Strings(ready)
			for _, path := range ready {
				delete(pending, path)
				if _, err := os.Stat(path); err != nil {
					continue
				}
				if ctx.Err() != nil {
					return nil
				}
				handle(ctx, path)
			}
		}
	}
}

func (w *Watcher) observe(ev fsnotify.Event, pending map[string]time.Time) {
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		delete(pending, ev.Name)
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if ev.Has(fsnotify.Create) && w.opts.Recursive {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := w.addTree(ev.Name); err != nil {
					w.logger.Warn("cannot watch new directory", "dir", ev.Name, "error", err)
				}
				return
			}
		}
		if w.match.Match(ev.Name) {
			pending[ev.Name] = time.Now()
		}
	}
}

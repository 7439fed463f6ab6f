package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/radovskyb/watcher"
)

// reloadDebounce coalesces bursts of writes (editors often write twice).
const reloadDebounce = 300 * time.Millisecond

// EventReload is a custom tcell event posted by the file watcher to trigger
// a document reload on the main goroutine (avoids data races).
type EventReload struct {
	t time.Time
}

func (e *EventReload) When() time.Time { return e.t }

// docWatcher follows a single document through its parent directory, so the
// watch outlives the file being removed, renamed over or recreated.
type docWatcher struct {
	w    *watcher.Watcher
	path string
	log  *Logger
}

func newDocWatcher(path string, log *Logger) (*docWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := watcher.New()
	w.FilterOps(watcher.Write, watcher.Create, watcher.Remove, watcher.Rename, watcher.Move)
	w.AddFilterHook(func(_ os.FileInfo, fullPath string) error {
		if fullPath != abs {
			return watcher.ErrSkip
		}
		return nil
	})
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return nil, err
	}
	return &docWatcher{w: w, path: abs, log: log}, nil
}

// touches reports whether ev concerns the watched document. Directory
// events and siblings that slip past the hook are dropped here.
func (d *docWatcher) touches(ev watcher.Event) bool {
	return ev.Path == d.path || ev.OldPath == d.path
}

// Run sends on updateCh for every change to the document and blocks until
// the watcher is closed. Errors from a single poll are logged and the watch
// carries on.
func (d *docWatcher) Run(updateCh chan<- struct{}, interval time.Duration) error {
	go func() {
		for {
			select {
			case ev := <-d.w.Event:
				if !d.touches(ev) {
					continue
				}
				select {
				case updateCh <- struct{}{}:
				default:
				}
			case err := <-d.w.Error:
				d.log.Warn("watcher error", "path", d.path, "err", err)
			case <-d.w.Closed:
				return
			}
		}
	}()

	d.log.Info("watching document", "path", d.path)
	return d.w.Start(interval)
}

func (d *docWatcher) Close() { d.w.Close() }

// watchAndReload forwards debounced file changes to the event loop.
func watchAndReload(screen tcell.Screen, path string, log *Logger) {
	dw, err := newDocWatcher(path, log)
	if err != nil {
		log.Warn("watch disabled", "path", path, "err", err)
		return
	}
	updates := make(chan struct{}, 1)
	go func() {
		if err := dw.Run(updates, 100*time.Millisecond); err != nil {
			log.Error("watcher stopped", "err", err)
		}
	}()

	var pending *time.Timer
	for range updates {
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(reloadDebounce, func() {
			_ = screen.PostEvent(&EventReload{t: time.Now()})
		})
	}
}

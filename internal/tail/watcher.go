package tail

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// writeWatcher watches the history file for growth and signals a channel
// whenever a write or create event lands on it. The directory is watched
// rather than the file itself so the signal also fires when the file is
// created after the poller started.
type writeWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	ch      chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// newWriteWatcher starts watching the directory containing path.
func newWriteWatcher(path string) (*writeWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &writeWatcher{
		watcher: watcher,
		target:  abs,
		ch:      make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// C returns the wake channel. The channel carries at most one pending
// signal; coalescing bursts of writes into a single wake is fine because
// the poller drains everything new on each pass.
func (w *writeWatcher) C() <-chan struct{} {
	return w.ch
}

// loop forwards relevant fsnotify events to the wake channel.
func (w *writeWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != w.target {
				continue
			}
			select {
			case w.ch <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			// Watcher errors are non-fatal: the poller's tick remains the
			// correctness mechanism.
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher.
func (w *writeWatcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
}

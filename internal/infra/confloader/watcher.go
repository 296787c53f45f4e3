package confloader

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
)

// DefaultDebounce is how long a burst of writes must stay quiet before the
// change callback runs.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a single configuration file. It watches the
// parent directory so that editors which save by renaming are seen too.
type Watcher struct {
	fs       *fsnotify.Watcher
	path     string
	onChange func(path string)
	debounce time.Duration
	logger   logger.Logger

	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets the quiet period. Zero runs the callback on every event.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// Watch starts watching path and calls onChange from a background goroutine
// after the file is written or replaced. The parent directory must exist.
func Watch(path string, onChange func(path string), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:       fsw,
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger.Default(),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "confwatch", "file", w.path)

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, err
	}
	go w.loop()
	w.logger.Debug("watching configuration")
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Close stops watching and waits for the event loop to exit. A pending
// debounced change is dropped. Close may be called more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.fs.Close()
		<-w.exited
	})
	return w.closeErr
}

func (w *Watcher) loop() {
	defer close(w.exited)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.logger.Debug("configuration changed", "op", ev.Op.String())
			if w.debounce <= 0 {
				w.onChange(w.path)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.onChange(w.path)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("configuration watch error", "error", err)
		}
	}
}

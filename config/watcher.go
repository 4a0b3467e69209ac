package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/editkit/editkit/logging"
)

// Watcher reloads a config file when it changes on disk and notifies a
// callback with the new configuration.
type Watcher struct {
	path     string
	onChange func(Config)
	log      *logging.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewWatcher creates a watcher for path. onChange is invoked on the
// watcher's goroutine after each successful reload.
func NewWatcher(path string, onChange func(Config), log *logging.Logger) *Watcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		log:      log.WithComponent("config.watcher"),
	}
}

// Start begins watching. Watching the parent directory instead of the
// file itself survives editors that replace the file via rename.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return fmt.Errorf("config watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.started = true

	w.wg.Add(1)
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("reload failed: %v", err)
				continue
			}
			w.log.Info("config reloaded from %s", w.path)
			w.onChange(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// Stop ends watching and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	close(w.done)
	w.fsw.Close()
	w.wg.Wait()
	w.started = false
}

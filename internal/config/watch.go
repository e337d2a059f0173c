package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the config file and triggers a reload on changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce *time.Timer
	mu       sync.Mutex
	onChange func(Config)
	done     chan struct{}
}

// Watch creates a file watcher that calls onChange with the freshly
// loaded config whenever the file at path is written
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		path:     path,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	// Watch the directory rather than the file itself; editors that
	// replace-on-save would otherwise drop the watch.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			// Only care about writes and creates
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.scheduleReload()
			}

		case <-w.watcher.Errors:
			// Ignore errors, keep watching

		case <-w.done:
			return
		}
	}
}

// scheduleReload debounces rapid file changes
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(150*time.Millisecond, func() {
		cfg, err := LoadFrom(w.path)
		if err != nil {
			// Broken edit; keep running on the previous config
			return
		}
		if w.onChange != nil {
			w.onChange(cfg)
		}
	})
}

// Stop closes the watcher
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
}

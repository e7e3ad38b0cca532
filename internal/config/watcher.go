package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/transgate/gatewaycore/internal/obslog"
)

// ReloadFunc is invoked with the freshly parsed Config whenever the watched
// file changes. It must apply the handle-refcount-gated swap of spec §4.8 —
// Watcher itself does not know about the registry.
type ReloadFunc func(*Config)

// Watcher observes a config file for writes/renames (the common save
// patterns of both direct edits and atomic-rename editors) and calls
// onReload with the newly parsed Config. Parse errors are logged and do not
// call onReload, so a transient malformed write never tears down a working
// configuration.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	onReload ReloadFunc
}

// NewWatcher starts watching path's containing directory (so atomic-rename
// saves, which replace the inode, are still observed) and returns a Watcher
// the caller must Close when done.
func NewWatcher(path string, onReload ReloadFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{watcher: fsw, path: filepath.Clean(path), onReload: onReload}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	log := obslog.For("config-watcher")
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				log.WithError(err).Warn("config reload failed, keeping previous configuration")
				continue
			}
			w.onReload(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config watcher error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.watcher.Close() }

package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleTime is how long a file must stay quiet before its change is
// reported. Editors often write a mesh in several chunks.
const settleTime = 100 * time.Millisecond

// Watcher reports changed mesh definitions, binary meshes and scripts in the
// watched directories on Events, once per burst of writes and only after the
// file has settled. Scenarios are read once at startup and are not watched.
type Watcher struct {
	fs      *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fw,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops watching. Events and Errors are closed once the run loop has
// exited, so a pending receive sees the close.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	pending := make(map[string]time.Time)
	tick := time.NewTicker(settleTime / 2)
	defer tick.Stop()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 && watched(ev.Name) {
				pending[ev.Name] = time.Now()
			}
		case now := <-tick.C:
			for name, at := range pending {
				if now.Sub(at) < settleTime {
					continue
				}
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func watched(path string) bool {
	return IsSpecFile(path) || IsMeshFile(path) || IsScriptFile(path)
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsSpecFile matches yaml and toml definitions (scenarios and text meshes).
func IsSpecFile(path string) bool {
	switch ext(path) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// IsMeshFile matches binary navigation meshes.
func IsMeshFile(path string) bool {
	switch ext(path) {
	case ".navmesh", ".bin":
		return true
	}
	return false
}

func IsScriptFile(path string) bool {
	return ext(path) == ".tengo"
}

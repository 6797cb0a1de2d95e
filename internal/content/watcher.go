package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default quiet period before a changed file is
// reloaded. Editors often write a file in several steps.
const DefaultDebounce = 200 * time.Millisecond

// ErrFileRemoved is reported when the watched file is removed.
var ErrFileRemoved = errors.New("watched file was removed")

// Store holds the current site. Readers never block a reload.
type Store struct {
	site atomic.Pointer[Site]
}

// NewStore creates a store holding site.
func NewStore(site *Site) *Store {
	s := &Store{}
	s.site.Store(site)
	return s
}

// Site returns the current site.
func (s *Store) Site() *Site {
	return s.site.Load()
}

// Replace swaps in a new site.
func (s *Store) Replace(site *Site) {
	s.site.Store(site)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnReload sets the callback invoked after the store was updated.
func WithOnReload(fn func(*Site)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// WithOnError sets the callback invoked on watch and parse errors. A site
// file that fails to parse leaves the store unchanged.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher reloads a site file into a Store whenever it changes.
type Watcher struct {
	path     string
	store    *Store
	debounce time.Duration
	onReload func(*Site)
	onError  func(error)

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for path feeding store.
func NewWatcher(path string, store *Store, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		store:    store,
		debounce: DefaultDebounce,
		onReload: func(*Site) {},
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: atomic saves replace the file's inode.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	defer w.stopTimer()

	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.trigger()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) reload() {
	site, err := Load(w.path)
	if err != nil {
		w.onError(err)
		return
	}
	w.store.Replace(site)
	w.onReload(site)
}

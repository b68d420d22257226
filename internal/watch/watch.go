// Package watch reports changes below a folder, coalescing bursts of
// filesystem events into a single callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const DefaultDebounce = 250 * time.Millisecond

// Skip decides whether a directory is left unwatched.
type Skip func(name string) bool

type Options struct {
	Debounce time.Duration
	Skip     Skip
	Log      logrus.FieldLogger
}

// Watcher watches a folder tree recursively.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	onChange func()
	debounce time.Duration
	skip     Skip
	log      logrus.FieldLogger

	mu    sync.Mutex
	timer *time.Timer
	fired int
}

// New starts watching root and every directory below it. onChange runs on
// its own goroutine once events have been quiet for the debounce period.
func New(root string, onChange func(), opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		fsw:      fsw,
		onChange: onChange,
		debounce: opts.Debounce,
		skip:     opts.Skip,
		log:      opts.Log,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		w.log = l
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Watcher error")
		}
	}
}

// Fired is the number of onChange calls so far.
func (w *Watcher) Fired() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.WithError(err).WithField("path", event.Name).Warn("Cannot watch new directory")
			}
		}
	}
	w.log.WithFields(logrus.Fields{"path": event.Name, "op": event.Op.String()}).Debug("Change detected")

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.fired++
		w.mu.Unlock()
		w.onChange()
	})
}

// addTree watches root and every directory below it, following symlinked
// directories. A link back into a directory already on the walk is skipped.
func (w *Watcher) addTree(root string) error {
	return w.addDir(root, true, make(map[string]bool))
}

func (w *Watcher) addDir(dir string, top bool, open map[string]bool) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if top {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		return nil
	}
	if open[real] {
		return nil
	}
	open[real] = true
	defer delete(open, real)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) && !top {
			return nil
		}
		return err
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !isDir(dir, entry) || (w.skip != nil && w.skip(entry.Name())) {
			continue
		}
		if err := w.addDir(filepath.Join(dir, entry.Name()), false, open); err != nil {
			return err
		}
	}
	return nil
}

func isDir(dir string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.fsw.Close()
}

package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the quiet period after the last accepted event
// before the touched files are formatted.
const DefaultWatchDebounce = 100 * time.Millisecond

// WatchOptions configures a Watcher.
type WatchOptions struct {
	FormatOptions
	Debounce time.Duration
	// OnError receives watcher errors that do not stop the loop.
	OnError func(error)
}

// Watcher reformats markup files as they change on disk.
type Watcher struct {
	fsw      *fsnotify.Watcher
	opts     WatchOptions
	dirs     map[string]struct{} // any markup file inside is accepted
	files    map[string]struct{} // explicit file arguments
	patterns []string

	closeOnce sync.Once
	closeErr  error
}

// NewWatcher starts watching paths, which accept the same forms as
// FormatPaths. Directories are registered recursively before it returns.
func NewWatcher(paths []string, opts WatchOptions) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultWatchDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		fsw:   fsw,
		opts:  opts,
		dirs:  make(map[string]struct{}),
		files: make(map[string]struct{}),
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(p string) error {
	if hasGlobMeta(p) {
		w.patterns = append(w.patterns, filepath.Clean(p))
		return w.watchDir(filepath.Dir(p))
	}
	p = filepath.Clean(p)
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.files[p] = struct{}{}
		return w.watchDir(filepath.Dir(p))
	}
	return w.addTree(p)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.dirs[path] = struct{}{}
		return w.watchDir(path)
	})
}

func (w *Watcher) watchDir(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// accepts reports whether an event on path should trigger formatting.
// Outputs of earlier runs and renameio temp files never do.
func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, OutPrefix) || strings.HasPrefix(base, ".") {
		return false
	}
	if _, ok := w.files[path]; ok {
		return true
	}
	if !IsMarkupFile(path) {
		return false
	}
	if _, ok := w.dirs[filepath.Dir(path)]; ok {
		return true
	}
	for _, pat := range w.patterns {
		if ok, _ := filepath.Match(pat, path); ok {
			return true
		}
	}
	return false
}

// Run formats accepted files once no accepted event has arrived for the
// debounce period, and hands the results to report. It returns nil once ctx
// is done; the watcher is closed on return.
func (w *Watcher) Run(ctx context.Context, report func([]FormatResult)) error {
	defer w.Close()

	// quiet is nil while nothing is pending; every accepted event re-arms it.
	var quiet <-chan time.Time
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev, pending) {
				timer.Reset(w.opts.Debounce)
				quiet = timer.C
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}

		case <-quiet:
			quiet = nil
			files := make([]string, 0, len(pending))
			for path := range pending {
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					files = append(files, path)
				}
			}
			clear(pending)
			if len(files) == 0 {
				continue
			}
			slices.Sort(files)
			results, err := FormatFiles(ctx, files, w.opts.FormatOptions)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			report(results)
		}
	}
}

// handle records an accepted event in pending and reports whether it did.
func (w *Watcher) handle(ev fsnotify.Event, pending map[string]struct{}) bool {
	path := filepath.Clean(ev.Name)
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if _, ok := w.dirs[filepath.Dir(path)]; ok && !strings.HasPrefix(info.Name(), ".") {
				if err := w.addTree(path); err != nil && w.opts.OnError != nil {
					w.opts.OnError(err)
				}
			}
			return false
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if !w.accepts(path) {
		return false
	}
	pending[path] = struct{}{}
	return true
}

// Close stops the underlying watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

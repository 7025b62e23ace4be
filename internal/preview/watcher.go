package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a
// rebuild is requested.
const DefaultDebounce = 300 * time.Millisecond

// Watcher turns filesystem changes below a set of directories into
// debounced rebuild triggers.
type Watcher struct {
	fs      *fsnotify.Watcher
	trigger func()
	files   map[string]bool     // individually watched files, such as the config
	trees   map[string]struct{} // directories watched for all changes
	skip    []string            // directories whose events are ignored
	logger  *slog.Logger
}

// NewWatcher watches dirs recursively and the parent directories of files.
// Events below skip (normally the build directory) are ignored. trigger is
// called at most once per debounce period.
func NewWatcher(dirs, files, skip []string, debounce time.Duration, trigger func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{fs: fw, trigger: debounced(debounce, trigger), files: map[string]bool{},
		trees: map[string]struct{}{}, skip: skip, logger: logger}
	for _, d := range dirs {
		if st, err := os.Stat(d); err != nil || !st.IsDir() {
			logger.Debug("Not watching missing directory", logfields.Path(d))
			continue
		}
		w.addDirsRecursive(d)
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		w.files[filepath.Clean(f)] = true
		if err := fw.Add(filepath.Dir(f)); err != nil {
			logger.Warn("Watch add failed", logfields.Path(f), logfields.Error(err))
		}
	}
	return w, nil
}

// Run forwards events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || w.skipped(ev.Name) {
		return
	}
	// Directories added for a single file report that file only.
	if _, tree := w.trees[filepath.Dir(ev.Name)]; !tree && !w.files[filepath.Clean(ev.Name)] {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

func (w *Watcher) skipped(p string) bool {
	for _, s := range w.skip {
		if p == s || strings.HasPrefix(p, s+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipped(p) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
			return nil
		}
		w.trees[p] = struct{}{}
		return nil
	})
}

// debounced returns a function that calls fn once calls have stopped for d.
func debounced(d time.Duration, fn func()) func() {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, fn)
	}
}

// shouldIgnoreEvent returns true for editor and OS files that must not
// trigger rebuilds.
func shouldIgnoreEvent(p string) bool {
	base := filepath.Base(p)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

// Package watch reports batches of content changes under a directory tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 300 * time.Millisecond

var ErrRootRequired = errors.New("watch: root directory required")

// Op is the kind of change seen for a path within a batch.
type Op string

const (
	OpCreated  Op = "created"
	OpModified Op = "modified"
	OpRemoved  Op = "removed"
)

// Change is one path of a batch. Path is slash separated and relative to
// the watched root.
type Change struct {
	Path string
	Op   Op
}

// Filter decides whether a relative path is of interest.
type Filter func(rel string) bool

// Handler receives each debounced batch, sorted by path. A returned error is
// logged and watching continues.
type Handler func(ctx context.Context, changes []Change) error

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithFilter limits which files are reported. Directories are always
// watched so new sections are picked up.
func WithFilter(filter Filter) Option {
	return func(w *Watcher) {
		w.filter = filter
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher follows a directory tree recursively.
type Watcher struct {
	root     string
	debounce time.Duration
	filter   Filter
	logger   interfaces.Logger
}

// New creates a watcher for root.
func New(root string, opts ...Option) (*Watcher, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrRootRequired
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", root)
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Run blocks until ctx is done, delivering batches to handle. It returns nil
// on cancellation.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	if handle == nil {
		return errors.New("watch: handler required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root, nil); err != nil {
		return err
	}
	w.logger.Info("watch.started", "root", w.root, "debounce", w.debounce)

	pending := map[string]Op{}
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch.stopped", "root", w.root)
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.record(fsw, pending, event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := drain(pending)
			w.logger.Debug("watch.batch", "changes", len(batch))
			if err := handle(ctx, batch); err != nil {
				w.logger.Error("watch.handler.failed", "error", err)
			}
		}
	}
}

// record folds event into pending and reports whether the batch grew. A new
// directory is watched and the files already inside it are queued as
// created, since they may have landed before the watch was added.
func (w *Watcher) record(fsw *fsnotify.Watcher, pending map[string]Op, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			grew := false
			err := w.addTree(fsw, event.Name, func(path string) {
				if w.queue(pending, path, OpCreated) {
					grew = true
				}
			})
			if err != nil {
				w.logger.Warn("watch.add.failed", "path", event.Name, "error", err)
			}
			return grew
		}
	}

	var op Op
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OpRemoved
	case event.Has(fsnotify.Create):
		op = OpCreated
	case event.Has(fsnotify.Write):
		op = OpModified
	default:
		return false
	}
	return w.queue(pending, event.Name, op)
}

func (w *Watcher) queue(pending map[string]Op, path string, op Op) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.filter != nil && !w.filter(rel) {
		return false
	}
	pending[rel] = merge(pending[rel], op)
	return true
}

// merge keeps "created" for a file created and then written in one batch.
func merge(previous, next Op) Op {
	if previous == OpCreated && next == OpModified {
		return OpCreated
	}
	return next
}

func drain(pending map[string]Op) []Change {
	batch := make([]Change, 0, len(pending))
	for path, op := range pending {
		batch = append(batch, Change{Path: path, Op: op})
		delete(pending, path)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	return batch
}

// addTree watches root and every non-hidden directory below it. onFile, when
// set, is called for each regular file found.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string, onFile func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if onFile != nil && d.Type().IsRegular() {
				onFile(path)
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// Package watch commits tracked files automatically when they change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"minigit/internal/commit"
	"minigit/internal/logging"
	"minigit/internal/tracked"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Repository is the part of repository.Repository the watcher drives.
type Repository interface {
	Files() []tracked.File
	Commit(message string) (*commit.Commit, error)
	Save() error
}

// Options configures a Watcher
type Options struct {
	// Debounce groups events arriving within this window into one commit.
	// Zero commits on every event.
	Debounce time.Duration
	Logger   *logging.Logger
}

// Watcher turns writes to tracked files into commits. It must be the only
// process using the repository while it runs.
type Watcher struct {
	repo     Repository
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	tracked map[string]tracked.File // by path
	pending map[string]bool         // names waiting for the next commit
}

// New watches the directories holding the currently tracked files.
func New(repo Repository, opts Options) (*Watcher, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	files := repo.Files()
	if len(files) == 0 {
		return nil, fmt.Errorf("no tracked files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		repo:     repo,
		watcher:  watcher,
		debounce: opts.Debounce,
		logger:   opts.Logger.Named("watch"),
		tracked:  make(map[string]tracked.File, len(files)),
		pending:  make(map[string]bool),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		w.tracked[filepath.Clean(f.Path)] = f
		dirs[filepath.Dir(f.Path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("adding directory to watcher: %w", err)
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	return w, nil
}

// Run processes filesystem events until ctx is done. Pending changes are
// committed before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_, err := w.flush()
			return err

		case event, ok := <-w.watcher.Events:
			if !ok {
				_, err := w.flush()
				return err
			}
			if !w.observe(event) {
				continue
			}
			if w.debounce <= 0 {
				w.flushAndLog()
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
			w.flushAndLog()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

// observe records event if it touches a tracked file.
func (w *Watcher) observe(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	f, ok := w.tracked[filepath.Clean(event.Name)]
	if !ok {
		return false
	}

	w.pending[f.Name] = true
	return true
}

// flush commits and saves once for everything observed since the last flush.
func (w *Watcher) flush() (*commit.Commit, error) {
	if len(w.pending) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(w.pending))
	for name := range w.pending {
		names = append(names, name)
	}
	sort.Strings(names)
	w.pending = make(map[string]bool)

	c, err := w.repo.Commit("Auto-commit " + strings.Join(names, ", "))
	if err != nil {
		return nil, err
	}
	if err := w.repo.Save(); err != nil {
		return nil, err
	}

	w.logger.Info("auto-committed", zap.Int("version", c.Version), zap.Strings("files", names))
	return c, nil
}

// flushAndLog keeps the loop alive when a commit fails, e.g. because an
// editor replaced the file and it is briefly missing.
func (w *Watcher) flushAndLog() {
	if _, err := w.flush(); err != nil {
		w.logger.Warn("auto-commit failed", zap.Error(err))
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

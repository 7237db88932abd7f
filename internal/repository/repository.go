// Package repository implements the versioning engine: the tracked file set,
// the commit history, and the load/mutate/save cycle over the metadata store.
//
// A Repository is not safe for use by more than one process at a time. Two
// invocations against the same store race on tracked_files and VERSION, and
// saves are not atomic.
package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"minigit/internal/commit"
	"minigit/internal/config"
	"minigit/internal/errors"
	"minigit/internal/logging"
	"minigit/internal/store"
	"minigit/internal/tracked"

	"go.uber.org/zap"
)

// Options configures Create and Load. Zero values fall back to defaults.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
}

func (o Options) withDefaults() Options {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	return o
}

type Repository struct {
	root     string
	storeDir string
	store    *store.Store
	tracked  *tracked.Files
	commits  []*commit.Commit // ascending by version
	version  int
	logger   *logging.Logger
}

// Create initializes an empty repository in root and persists its initial state.
func Create(root string, opts Options) (*Repository, error) {
	opts = opts.withDefaults()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	storeDir := filepath.Join(absRoot, opts.Config.Store.Dir)

	if _, err := os.Stat(storeDir); err == nil {
		return nil, errors.AlreadyInitialized(storeDir)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking %s: %w", storeDir, err)
	}

	if err := os.Mkdir(storeDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", storeDir, err)
	}

	r, err := open(absRoot, storeDir, opts)
	if err != nil {
		return nil, err
	}

	if err := r.Save(); err != nil {
		r.Close()
		return nil, fmt.Errorf("writing initial state: %w", err)
	}

	r.logger.Info("repository initialized", zap.String("store", storeDir))
	return r, nil
}

// Load reconstructs the repository persisted in root.
func Load(root string, opts Options) (*Repository, error) {
	opts = opts.withDefaults()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	storeDir := filepath.Join(absRoot, opts.Config.Store.Dir)

	info, err := os.Stat(storeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotInitialized(storeDir)
		}
		return nil, fmt.Errorf("checking %s: %w", storeDir, err)
	}
	if !info.IsDir() {
		return nil, errors.NotInitialized(storeDir)
	}

	r, err := open(absRoot, storeDir, opts)
	if err != nil {
		return nil, err
	}

	if err := r.load(); err != nil {
		r.Close()
		return nil, fmt.Errorf("loading repository: %w", err)
	}

	r.logger.Debug("repository loaded",
		zap.Int("version", r.version),
		zap.Int("tracked", r.tracked.Len()),
		zap.Int("commits", len(r.commits)))
	return r, nil
}

func open(root, storeDir string, opts Options) (*Repository, error) {
	logger := opts.Logger.Named("repository")

	s, err := store.Open(storeDir, opts.Config, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &Repository{
		root:     root,
		storeDir: storeDir,
		store:    s,
		tracked:  tracked.NewFiles(),
		logger:   logger,
	}, nil
}

// Close releases the store. The repository must not be used afterwards.
func (r *Repository) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}

// Root is the absolute working directory.
func (r *Repository) Root() string { return r.root }

// StoreDir is the absolute metadata store directory.
func (r *Repository) StoreDir() string { return r.storeDir }

// Version is the version of the latest commit, or 0.
func (r *Repository) Version() int { return r.version }

// Files lists the tracked files in insertion order.
func (r *Repository) Files() []tracked.File { return r.tracked.List() }

// Commits returns the history in ascending version order.
func (r *Repository) Commits() []*commit.Commit {
	out := make([]*commit.Commit, len(r.commits))
	copy(out, r.commits)
	return out
}

// Lookup returns the commit recorded at version.
func (r *Repository) Lookup(version int) (*commit.Commit, error) {
	// Versions have no gaps, so the commit sits at index version-1
	if version >= 1 && version <= len(r.commits) {
		if c := r.commits[version-1]; c.Version == version {
			return c, nil
		}
	}
	for _, c := range r.commits {
		if c.Version == version {
			return c, nil
		}
	}
	return nil, errors.CommitNotFound(version)
}

package repository

import (
	"fmt"
	"path/filepath"
	"strings"

	"minigit/internal/commit"
	"minigit/internal/errors"
	"minigit/internal/tracked"

	"go.uber.org/zap"
)

// Add starts tracking the file name (relative to the root) and commits the
// whole tracked set. An empty message defaults to "Adding a file <name>".
func (r *Repository) Add(name, message string) (*commit.Commit, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, name)
	}
	path = filepath.Clean(path)

	if r.insideStore(path) {
		return nil, errors.InvalidPath(path, "inside the metadata store")
	}

	f, err := tracked.NewFile(path)
	if err != nil {
		return nil, err
	}
	if r.tracked.IsTracked(f) {
		return nil, errors.AlreadyTracked(f.Path)
	}

	if message == "" {
		message = fmt.Sprintf("Adding a file %s", f.Name)
	}

	// Snapshot first so a failed read leaves the tracked set untouched
	files := append(r.tracked.List(), f)
	c, err := commit.New(message, r.version+1, files)
	if err != nil {
		return nil, fmt.Errorf("committing %s: %w", f.Name, err)
	}
	if err := r.tracked.Add(f); err != nil {
		return nil, err
	}
	r.append(c)

	r.logger.Info("file added", zap.String("path", f.Path), zap.Int("version", c.Version))
	return c, nil
}

// Remove stops tracking the first file called name. History and the working
// file are left alone and no commit is made.
func (r *Repository) Remove(name string) (tracked.File, error) {
	f, err := r.tracked.Remove(name)
	if err != nil {
		return tracked.File{}, err
	}

	r.logger.Info("file removed", zap.String("path", f.Path))
	return f, nil
}

// Commit snapshots every tracked file under the next version. The commit only
// reaches disk on Save. An empty message defaults to "Commit version <v>".
func (r *Repository) Commit(message string) (*commit.Commit, error) {
	version := r.version + 1
	if message == "" {
		message = fmt.Sprintf("Commit version %d", version)
	}

	c, err := commit.New(message, version, r.tracked.List())
	if err != nil {
		return nil, fmt.Errorf("committing version %d: %w", version, err)
	}
	r.append(c)

	r.logger.Info("commit created", zap.Int("version", c.Version), zap.Int("files", len(c.Files)))
	return c, nil
}

// Checkout overwrites every file recorded at version with its captured
// contents, at the path recorded in that commit.
func (r *Repository) Checkout(version int) (*commit.Commit, error) {
	c, err := r.Lookup(version)
	if err != nil {
		return nil, err
	}

	for _, f := range c.Files {
		if err := f.Restore(); err != nil {
			return nil, err
		}
		r.logger.Debug("file restored", zap.String("path", f.Path), zap.Int("version", version))
	}

	r.logger.Info("checked out", zap.Int("version", version), zap.Int("files", len(c.Files)))
	return c, nil
}

// History returns the last n commits in ascending order. n == 0 returns
// only the latest commit.
func (r *Repository) History(n int) ([]*commit.Commit, error) {
	if n < 0 {
		return nil, errors.InvalidRange(n, r.version)
	}
	if n == 0 {
		c, err := r.Lookup(r.version)
		if err != nil {
			return nil, err
		}
		return []*commit.Commit{c}, nil
	}
	if n > len(r.commits) {
		return nil, errors.InvalidRange(n, len(r.commits))
	}

	out := make([]*commit.Commit, 0, n)
	for v := r.version - n + 1; v <= r.version; v++ {
		c, err := r.Lookup(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Repository) append(c *commit.Commit) {
	r.commits = append(r.commits, c)
	r.version = c.Version
}

func (r *Repository) insideStore(path string) bool {
	rel, err := filepath.Rel(r.storeDir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

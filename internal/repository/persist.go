package repository

import (
	"fmt"
	"path"
	"sort"

	"minigit/internal/commit"
	"minigit/internal/store"
	"minigit/internal/tracked"

	"go.uber.org/zap"
)

const (
	trackedFilesRecord = "tracked_files"
	versionRecord      = "VERSION"
)

// fileRecord is the persisted snapshot of one file in a commit.
type fileRecord struct {
	Name string `json:"name"`
	Path string `json:"path"`
	store.Contents
}

// fileRef points from a commit's meta record to a file record.
type fileRef struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Record string `json:"record"`
}

type metaRecord struct {
	Message string    `json:"message"`
	Version int       `json:"version"`
	Files   []fileRef `json:"files"`
}

// Save persists the repository. The tracked list and version counter are
// overwritten every time; a commit is written only if its COMMIT_<version>
// group does not exist yet, and existing groups are never touched.
func (r *Repository) Save() error {
	written := 0
	for _, c := range r.commits {
		dir := commit.DirName(c.Version)

		exists, err := r.store.Exists(dir)
		if err != nil {
			return fmt.Errorf("checking %s: %w", dir, err)
		}
		if exists {
			continue
		}

		if err := r.saveCommit(c); err != nil {
			return fmt.Errorf("saving %s: %w", dir, err)
		}
		written++
	}

	if err := r.store.Encode(trackedFilesRecord, r.tracked); err != nil {
		return fmt.Errorf("saving tracked files: %w", err)
	}
	if err := r.store.Encode(versionRecord, r.version); err != nil {
		return fmt.Errorf("saving version: %w", err)
	}

	r.logger.Debug("repository saved",
		zap.Int("version", r.version),
		zap.Int("new_commits", written))
	return nil
}

// saveCommit writes the file records first and meta last, so a group with a
// meta record is complete.
func (r *Repository) saveCommit(c *commit.Commit) error {
	meta := metaRecord{
		Message: c.Message,
		Version: c.Version,
		Files:   make([]fileRef, 0, len(c.Files)),
	}

	for _, f := range c.Files {
		rec := fileRecord{
			Name:     f.Name,
			Path:     f.Path,
			Contents: r.store.PackContents(f.Name, f.Contents),
		}
		if err := r.store.Encode(f.Location, rec); err != nil {
			return err
		}
		meta.Files = append(meta.Files, fileRef{
			Name:   f.Name,
			Path:   f.Path,
			Record: path.Base(f.Location),
		})
	}

	return r.store.Encode(path.Join(commit.DirName(c.Version), commit.MetaRecord), meta)
}

func (r *Repository) load() error {
	files := tracked.NewFiles()
	if err := r.store.Decode(trackedFilesRecord, files); err != nil {
		return fmt.Errorf("reading tracked files: %w", err)
	}

	var version int
	if err := r.store.Decode(versionRecord, &version); err != nil {
		return fmt.Errorf("reading version: %w", err)
	}

	names, err := r.store.List(commit.DirPrefix)
	if err != nil {
		return err
	}

	var commits []*commit.Commit
	for _, name := range names {
		v, ok := commit.ParseDirName(name)
		if !ok {
			continue
		}
		c, err := r.loadCommit(name, v)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		commits = append(commits, c)
	}

	// Scan order says nothing about version order
	sort.Slice(commits, func(i, j int) bool { return commits[i].Version < commits[j].Version })

	if err := checkHistory(commits, version); err != nil {
		return err
	}

	r.tracked = files
	r.commits = commits
	r.version = version
	return nil
}

func (r *Repository) loadCommit(dir string, version int) (*commit.Commit, error) {
	var meta metaRecord
	if err := r.store.Decode(path.Join(dir, commit.MetaRecord), &meta); err != nil {
		return nil, err
	}
	if meta.Version != version {
		return nil, fmt.Errorf("meta records version %d", meta.Version)
	}

	c := &commit.Commit{
		Version: meta.Version,
		Message: meta.Message,
		Files:   make([]commit.File, 0, len(meta.Files)),
	}
	for _, ref := range meta.Files {
		location := path.Join(dir, ref.Record)

		var rec fileRecord
		if err := r.store.Decode(location, &rec); err != nil {
			return nil, err
		}
		contents, err := r.store.UnpackContents(rec.Contents)
		if err != nil {
			return nil, fmt.Errorf("unpacking %s: %w", location, err)
		}

		c.Files = append(c.Files, commit.File{
			File:     tracked.File{Name: ref.Name, Path: ref.Path},
			Contents: contents,
			Location: location,
		})
	}
	return c, nil
}

// checkHistory verifies versions run 1..n without gaps and that n matches
// the persisted counter.
func checkHistory(commits []*commit.Commit, version int) error {
	for i, c := range commits {
		if c.Version != i+1 {
			return fmt.Errorf("inconsistent store: expected commit version %d, found %d", i+1, c.Version)
		}
	}
	if len(commits) != version {
		return fmt.Errorf("inconsistent store: VERSION is %d but %d commits are recorded", version, len(commits))
	}
	return nil
}

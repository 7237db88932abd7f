// Package commit builds immutable snapshots of the tracked files.
package commit

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"minigit/internal/tracked"
)

const (
	// DirPrefix marks the record group of a persisted commit.
	DirPrefix = "COMMIT_"
	// MetaRecord is the record describing the commit itself.
	MetaRecord = "meta"
)

// File is one tracked file as captured by a commit.
type File struct {
	tracked.File
	Contents []byte
	// Location is the record name inside the store, e.g. "COMMIT_2/a.txt".
	Location string
}

// Restore overwrites the file at its recorded path with the captured contents.
func (f File) Restore() error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(f.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(f.Path, f.Contents, mode); err != nil {
		return fmt.Errorf("restoring %s: %w", f.Path, err)
	}
	return nil
}

// Commit is a snapshot of every tracked file at a version.
// It is never modified after New returns.
type Commit struct {
	Version int
	Message string
	Files   []File
}

// New reads the current contents of files and captures them under version.
// The order of files is kept.
func New(message string, version int, files []tracked.File) (*Commit, error) {
	if version <= 0 {
		return nil, fmt.Errorf("commit version must be positive, got %d", version)
	}

	dir := DirName(version)
	records := recordNames(files)

	c := &Commit{
		Version: version,
		Message: message,
		Files:   make([]File, 0, len(files)),
	}
	for i, f := range files {
		contents, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Path, err)
		}
		c.Files = append(c.Files, File{
			File:     f,
			Contents: contents,
			Location: path.Join(dir, records[i]),
		})
	}
	return c, nil
}

// Names returns the tracked file names in commit order.
func (c *Commit) Names() []string {
	names := make([]string, len(c.Files))
	for i, f := range c.Files {
		names[i] = f.Name
	}
	return names
}

// DirName is the record group holding the commit at version.
func DirName(version int) string {
	return DirPrefix + strconv.Itoa(version)
}

// ParseDirName extracts the version from a record group name.
func ParseDirName(name string) (int, bool) {
	if !strings.HasPrefix(name, DirPrefix) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimPrefix(name, DirPrefix))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// recordNames names each file's record after the file, suffixing repeats
// (two tracked files in different directories may share a base name) and
// steering clear of the meta record.
func recordNames(files []tracked.File) []string {
	used := map[string]bool{MetaRecord: true}
	names := make([]string, len(files))
	for i, f := range files {
		name := f.Name
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", f.Name, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

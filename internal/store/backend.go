package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrRecordNotFound = errors.New("record not found")

// Backend persists raw records by name. Names are slash separated and
// relative to the store root; "COMMIT_3/meta" lives in the "COMMIT_3" group.
type Backend interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	// Exists reports whether name is a record or a non-empty record group.
	Exists(name string) (bool, error)
	// List returns the top-level record and group names starting with prefix, sorted.
	List(prefix string) ([]string, error)
	Close() error
}

// DirBackend keeps every record as a file under root. Groups are directories.
type DirBackend struct {
	root string
}

func NewDirBackend(root string) *DirBackend {
	return &DirBackend{root: root}
}

func (b *DirBackend) path(name string) string {
	return filepath.Join(b.root, filepath.FromSlash(name))
}

func (b *DirBackend) Put(name string, data []byte) error {
	p := b.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	return nil
}

func (b *DirBackend) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, name)
		}
		return nil, fmt.Errorf("reading record %s: %w", name, err)
	}
	return data, nil
}

func (b *DirBackend) Exists(name string) (bool, error) {
	_, err := os.Stat(b.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (b *DirBackend) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("scanning store: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (b *DirBackend) Close() error { return nil }

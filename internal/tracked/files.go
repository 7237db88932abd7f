package tracked

import (
	"encoding/json"

	"minigit/internal/errors"
)

// Files is the ordered, duplicate-free set of tracked files.
// The zero value is an empty set ready to use.
type Files struct {
	files []File
	index map[File]struct{}
}

func NewFiles() *Files {
	return &Files{index: make(map[File]struct{})}
}

func (t *Files) Add(f File) error {
	if t.IsTracked(f) {
		return errors.AlreadyTracked(f.Path)
	}
	if t.index == nil {
		t.index = make(map[File]struct{})
	}

	t.files = append(t.files, f)
	t.index[f] = struct{}{}
	return nil
}

// Remove drops the first file named name.
func (t *Files) Remove(name string) (File, error) {
	for i, f := range t.files {
		if f.Name != name {
			continue
		}
		t.files = append(t.files[:i], t.files[i+1:]...)
		delete(t.index, f)
		return f, nil
	}
	return File{}, errors.NotFound(name)
}

func (t *Files) IsTracked(f File) bool {
	_, ok := t.index[f]
	return ok
}

// Lookup returns the first file with the given path.
func (t *Files) Lookup(path string) (File, bool) {
	for _, f := range t.files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}

// List returns a copy in insertion order.
func (t *Files) List() []File {
	out := make([]File, len(t.files))
	copy(out, t.files)
	return out
}

func (t *Files) Len() int { return len(t.files) }

func (t *Files) MarshalJSON() ([]byte, error) {
	files := t.files
	if files == nil {
		files = []File{}
	}
	return json.Marshal(files)
}

func (t *Files) UnmarshalJSON(data []byte) error {
	var files []File
	if err := json.Unmarshal(data, &files); err != nil {
		return err
	}

	t.files = nil
	t.index = make(map[File]struct{}, len(files))
	for _, f := range files {
		if err := t.Add(f); err != nil {
			return err
		}
	}
	return nil
}

package tracked

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"minigit/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestNewFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	t.Run("regular file", func(t *testing.T) {
		f, err := NewFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a.txt", f.Name)
		assert.Equal(t, path, f.Path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFile(filepath.Join(dir, "missing.txt"))
		assert.True(t, stderrors.Is(err, errors.ErrInvalidPath))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := NewFile(dir)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidPath))
	})
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFile(writeFile(t, dir, "a.txt", "a"))
	require.NoError(t, err)
	b, err := NewFile(writeFile(t, dir, "b.txt", "b"))
	require.NoError(t, err)
	nestedA, err := NewFile(writeFile(t, dir, "sub/a.txt", "nested"))
	require.NoError(t, err)

	t.Run("Add preserves order", func(t *testing.T) {
		files := NewFiles()
		require.NoError(t, files.Add(a))
		require.NoError(t, files.Add(b))
		require.NoError(t, files.Add(nestedA))

		assert.Equal(t, []File{a, b, nestedA}, files.List())
		assert.True(t, files.IsTracked(b))
	})

	t.Run("Add duplicate", func(t *testing.T) {
		files := NewFiles()
		require.NoError(t, files.Add(a))

		err := files.Add(a)
		assert.True(t, stderrors.Is(err, errors.ErrAlreadyTracked))
		assert.Equal(t, 1, files.Len())
	})

	t.Run("zero value", func(t *testing.T) {
		var files Files
		assert.False(t, files.IsTracked(a))
		require.NoError(t, files.Add(a))
		assert.True(t, files.IsTracked(a))
	})

	t.Run("Remove first match", func(t *testing.T) {
		files := NewFiles()
		require.NoError(t, files.Add(a))
		require.NoError(t, files.Add(b))
		require.NoError(t, files.Add(nestedA))

		removed, err := files.Remove("a.txt")
		require.NoError(t, err)
		assert.Equal(t, a, removed)
		assert.Equal(t, []File{b, nestedA}, files.List())
		assert.False(t, files.IsTracked(a))
		assert.True(t, files.IsTracked(nestedA))
	})

	t.Run("Remove missing", func(t *testing.T) {
		files := NewFiles()
		require.NoError(t, files.Add(a))

		_, err := files.Remove("nope.txt")
		assert.True(t, stderrors.Is(err, errors.ErrNotFound))
		assert.Equal(t, 1, files.Len())
	})

	t.Run("List is a copy", func(t *testing.T) {
		files := NewFiles()
		require.NoError(t, files.Add(a))

		list := files.List()
		list[0] = b
		assert.Equal(t, []File{a}, files.List())
	})

	t.Run("Lookup", func(t *testing.T) {
		files := NewFiles()
		require.NoError(t, files.Add(b))

		got, ok := files.Lookup(b.Path)
		assert.True(t, ok)
		assert.Equal(t, b, got)

		_, ok = files.Lookup(a.Path)
		assert.False(t, ok)
	})
}

func TestFilesJSON(t *testing.T) {
	a := File{Name: "a.txt", Path: "/work/a.txt"}
	b := File{Name: "b.txt", Path: "/work/b.txt"}

	files := NewFiles()
	data, err := json.Marshal(files)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	require.NoError(t, files.Add(b))
	require.NoError(t, files.Add(a))

	data, err = json.Marshal(files)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"b.txt","path":"/work/b.txt"},{"name":"a.txt","path":"/work/a.txt"}]`, string(data))

	decoded := NewFiles()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, files.List(), decoded.List())
	assert.True(t, decoded.IsTracked(a))

	err = json.Unmarshal([]byte(`[{"name":"a.txt","path":"/x"},{"name":"a.txt","path":"/x"}]`), NewFiles())
	assert.True(t, stderrors.Is(err, errors.ErrAlreadyTracked))
}

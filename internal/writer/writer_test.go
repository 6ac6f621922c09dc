package writer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	w := New("out")

	assert.Equal(t, filepath.Join("out", "index.html"), w.Path("index"))
	assert.Equal(t, filepath.Join("out", "guide", "install.html"), w.Path("guide/install"))
}

func TestWriteCreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "site"))

	path, err := w.Write("guide/install", "<p>install</p>")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "site", "guide", "install.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>install</p>", string(data))

	exists, err := w.Exists("guide/install")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWriteNeverOverwrites(t *testing.T) {
	w := New(t.TempDir())

	_, err := w.Write("index", "first")
	require.NoError(t, err)

	path, err := w.Write("index", "second")
	assert.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestExistsMissingFile(t *testing.T) {
	w := New(t.TempDir())

	exists, err := w.Exists("nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriteFilesystemFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// the output directory is a regular file, so MkdirAll must fail
	w := New(blocker)
	_, err := w.Write("guide/install", "<p/>")
	assert.ErrorIs(t, err, ErrFilesystem)
}

func TestRejectsKeysOutsideOutputDir(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "parent", key: "../escaped"},
		{name: "nested parent", key: "guide/../../escaped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := New(filepath.Join(dir, "out"))

			_, err := w.Write(tt.key, "<p>escaped</p>")
			assert.ErrorIs(t, err, ErrOutsideDir)
			assert.ErrorIs(t, err, ErrFilesystem)

			_, err = w.Exists(tt.key)
			assert.ErrorIs(t, err, ErrOutsideDir)

			_, statErr := os.Stat(filepath.Join(dir, "escaped.html"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestAllowsKeysThatStayInside(t *testing.T) {
	w := New(t.TempDir())

	_, err := w.Write("guide/../intro", "<p>intro</p>")
	require.NoError(t, err)

	exists, err := w.Exists("intro")
	require.NoError(t, err)
	assert.True(t, exists)
}

// failingCloser writes through to the real file and then fails on Close
type failingCloser struct {
	*os.File
}

func (f failingCloser) Close() error {
	f.File.Close()
	return errors.New("disk quota exceeded")
}

func TestWriteFailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	w.openFile = func(name string, flag int, perm os.FileMode) (io.WriteCloser, error) {
		f, err := os.OpenFile(name, flag, perm)
		if err != nil {
			return nil, err
		}
		return failingCloser{f}, nil
	}

	_, err := w.Write("guide", "<p>guide</p>")
	assert.ErrorIs(t, err, ErrFilesystem)
	assert.ErrorContains(t, err, "disk quota exceeded")

	exists, err := w.Exists("guide")
	require.NoError(t, err)
	assert.False(t, exists)
}

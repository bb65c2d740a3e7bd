package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates parent dirs and writes content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "out.txt")
		err := WriteFileAtomic(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "hello")
			return err
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("failed write keeps previous file and leaves no temp", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.txt")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

		boom := errors.New("boom")
		err := WriteFileAtomic(path, func(w io.Writer) error {
			io.WriteString(w, "partial")
			return boom
		})
		require.ErrorIs(t, err, boom)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestStage(t *testing.T) {
	write := func(content string) func(w io.Writer) error {
		return func(w io.Writer) error {
			_, err := io.WriteString(w, content)
			return err
		}
	}

	t.Run("content appears only on commit", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.txt")
		staged, err := Stage(path, write("new"))
		require.NoError(t, err)
		assert.Equal(t, path, staged.Path())

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))

		require.NoError(t, staged.Commit())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
		assert.Error(t, staged.Commit())
	})

	t.Run("discard leaves nothing behind", func(t *testing.T) {
		dir := t.TempDir()
		staged, err := Stage(filepath.Join(dir, "out.txt"), write("new"))
		require.NoError(t, err)
		staged.Discard()
		staged.Discard()

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("discard after commit keeps the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		staged, err := Stage(path, write("kept"))
		require.NoError(t, err)
		require.NoError(t, staged.Commit())
		staged.Discard()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "kept", string(data))
	})

	t.Run("target under a regular file fails", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
		_, err := Stage(filepath.Join(blocker, "out.txt"), write("x"))
		assert.Error(t, err)
	})
}

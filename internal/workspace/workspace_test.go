package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTrackID(t *testing.T) {
	valid := []string{"track-1", "65f1c0ab", "My Song (live)", "a.b"}
	for _, id := range valid {
		assert.True(t, ValidTrackID(id), id)
	}

	invalid := []string{"", ".", "..", "../etc/passwd", "a/b", `a\b`, "nul\x00", strings.Repeat("x", 201)}
	for _, id := range invalid {
		assert.False(t, ValidTrackID(id), id)
	}
}

func TestStore(t *testing.T) {
	t.Run("NewDoesNotTouchDisk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "work")
		New(dir)
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("EmptyDirUsesSystemTemp", func(t *testing.T) {
		assert.Equal(t, os.TempDir(), New("").Dir)
	})

	t.Run("WriteAudioCreatesDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "work")
		s := New(dir)

		path, err := s.WriteAudio("t1", "mp3", []byte("audio"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "t1.mp3"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "audio", string(data))
	})

	t.Run("WriteAudioRejectsUnsafeID", func(t *testing.T) {
		s := New(t.TempDir())
		_, err := s.WriteAudio("../escape", "mp3", []byte("audio"))
		assert.Error(t, err)
	})

	t.Run("PrepareOutput", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "work"))
		dir, err := s.PrepareOutput()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(s.Dir, OutputDirName), dir)
		assert.DirExists(t, dir)

		// idempotent
		_, err = s.PrepareOutput()
		assert.NoError(t, err)
	})

	t.Run("RemoveIgnoresMissingFiles", func(t *testing.T) {
		s := New(t.TempDir())
		path, err := s.WriteAudio("t1", "wav", []byte("x"))
		require.NoError(t, err)

		assert.NoError(t, s.Remove(path, filepath.Join(s.Dir, "never-existed.mid"), ""))
		assert.NoFileExists(t, path)

		assert.NoError(t, s.Remove(path))
	})

	t.Run("RemoveReportsOtherFailures", func(t *testing.T) {
		s := New(t.TempDir())
		dir := filepath.Join(s.Dir, "full")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "child"), 0o755))

		assert.Error(t, s.Remove(dir))
	})
}

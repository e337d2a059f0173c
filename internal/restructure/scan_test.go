package restructure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestScanRecursesAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.mkv"))
	writeFile(t, filepath.Join(root, "sub", "a.mp4"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	files, err := Scan(root, VideoExtensions)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "b.mkv"), files[0])
	assert.Equal(t, filepath.Join(root, "sub", "a.mp4"), files[1])
}

func TestScanSkipsHiddenFilesAndDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden.mkv"))
	writeFile(t, filepath.Join(root, ".stash", "inside.mkv"))
	writeFile(t, filepath.Join(root, "visible.mkv"))

	files, err := Scan(root, VideoExtensions)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "visible.mkv"), files[0])
}

func TestScanExtensionIsCaseSensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "upper.MKV"))
	writeFile(t, filepath.Join(root, "lower.mkv"))

	files, err := Scan(root, VideoExtensions)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "lower.mkv"), files[0])
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"), VideoExtensions)
	assert.ErrorIs(t, err, ErrScanRoot)
}

func TestScanRootIsAFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.mkv")
	writeFile(t, file)

	_, err := Scan(file, VideoExtensions)
	assert.ErrorIs(t, err, ErrScanRoot)
}

func TestScanSubtitleSet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.srt"))
	writeFile(t, filepath.Join(root, "a.mkv"))

	files, err := Scan(root, SubtitleExtensions)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "a.srt"), files[0])
}

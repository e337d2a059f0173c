package bot

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchpilot/couchpilot/internal/jackett"
	"github.com/couchpilot/couchpilot/internal/restructure"
	"github.com/couchpilot/couchpilot/internal/transmission"
)

func TestPendingFindAndRemove(t *testing.T) {
	var p pending[[]int64]
	p.add(10, []int64{1, 2})
	p.add(11, []int64{3})

	got, ok := p.find(10)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, got)

	p.remove(10)
	_, ok = p.find(10)
	assert.False(t, ok)

	_, ok = p.find(11)
	assert.True(t, ok)
}

func TestPendingEvictsOldest(t *testing.T) {
	var p pending[int]
	for i := 0; i < pendingCap+5; i++ {
		p.add(i, i)
	}

	_, ok := p.find(0)
	assert.False(t, ok)
	_, ok = p.find(4)
	assert.False(t, ok)
	_, ok = p.find(5)
	assert.True(t, ok)
	_, ok = p.find(pendingCap + 4)
	assert.True(t, ok)
}

func TestKindFromDir(t *testing.T) {
	kind, ok := kindFromDir("/data/tv/The Wire", "/data/tv", "/data/movies")
	require.True(t, ok)
	assert.Equal(t, restructure.KindTV, kind)

	kind, ok = kindFromDir("/data/movies", "/data/tv", "/data/movies")
	require.True(t, ok)
	assert.Equal(t, restructure.KindMovie, kind)

	_, ok = kindFromDir("/data/other", "/data/tv", "/data/movies")
	assert.False(t, ok)

	_, ok = kindFromDir("/data/tv", "", "")
	assert.False(t, ok)
}

func TestFormatTorrentList(t *testing.T) {
	torrents := []transmission.Torrent{
		{ID: 7, Name: "Show S01", DownloadDir: "/data/tv", PercentDone: 0.5},
		{ID: 8, Name: "Movie", DownloadDir: "/data/movies", PercentDone: 1},
		{ID: 9, Name: "Elsewhere", DownloadDir: "/tmp", PercentDone: 0},
	}

	text, ids := formatTorrentList(torrents, nil, "/data/tv", "/data/movies")
	assert.Equal(t, []int64{7, 8, 9}, ids)
	assert.Contains(t, text, "Reply with the number to delete (torrent):")
	assert.Contains(t, text, "1. 📺 TV - Show S01 (50%)")
	assert.Contains(t, text, "2. 🎬 Movie - Movie (100%)")
	assert.Contains(t, text, "3. 📁 Unknown - Elsewhere (0%)")
}

func TestFormatTorrentListFilterRenumbers(t *testing.T) {
	torrents := []transmission.Torrent{
		{ID: 7, Name: "Show", DownloadDir: "/data/tv"},
		{ID: 8, Name: "Movie", DownloadDir: "/data/movies"},
	}

	movie := restructure.KindMovie
	text, ids := formatTorrentList(torrents, &movie, "/data/tv", "/data/movies")
	assert.Equal(t, []int64{8}, ids)
	assert.Contains(t, text, "1. 🎬 Movie - Movie (0%)")
	assert.NotContains(t, text, "Show")
}

func TestFormatTorrentListEmpty(t *testing.T) {
	text, ids := formatTorrentList(nil, nil, "/data/tv", "/data/movies")
	assert.Equal(t, "No downloads found", text)
	assert.Nil(t, ids)
}

func TestFormatStatusEmpty(t *testing.T) {
	assert.Equal(t, "📊 No active downloads", formatStatus(nil))
}

func TestFormatStatus(t *testing.T) {
	got := formatStatus([]transmission.Torrent{
		{
			Name:           "Show S01",
			Status:         transmission.StatusDownloading,
			PercentDone:    0.42,
			TotalSize:      2_000_000_000,
			DownloadedEver: 840_000_000,
			UploadedEver:   0,
		},
	})

	assert.Contains(t, got, "📊 Active Downloads:")
	assert.Contains(t, got, "⬇️ Show S01 (42%)")
	assert.Contains(t, got, "Size: 2.0 GB, Downloaded: 840 MB, Uploaded: 0 B")
}

func TestFormatSearchResultsEscapesAndNumbers(t *testing.T) {
	got := formatSearchResults([]jackett.Result{
		{Title: "Dune <Part Two>", Size: 1_500_000_000, Seeders: 42},
		{Title: "Dune", Size: 700_000_000, Seeders: 7},
	})

	assert.Contains(t, got, "<pre>")
	assert.Contains(t, got, "1. Dune &lt;Part Two&gt; - 1.5 GB - 42")
	assert.Contains(t, got, "2. Dune - 700 MB - 7")
}

func TestListDirectorySkipsHidden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mkv"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a-show"), 0o755))

	paths, err := listDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a-show"),
		filepath.Join(dir, "b.mkv"),
	}, paths)
}

func TestFormatFileList(t *testing.T) {
	text, paths := formatFileList([]string{"/data/tv/The Wire", "/data/tv/loose.mkv"})
	assert.Len(t, paths, 2)
	assert.Contains(t, text, "Reply with the number to delete (file):")
	assert.Contains(t, text, "1. The Wire\n")
	assert.Contains(t, text, "2. loose.mkv\n")

	text, paths = formatFileList(nil)
	assert.Equal(t, "No files found", text)
	assert.Nil(t, paths)
}

func TestDeleteFileRemovesDirectories(t *testing.T) {
	dir := t.TempDir()
	show := filepath.Join(dir, "The Wire")
	require.NoError(t, os.MkdirAll(filepath.Join(show, "Season 01"), 0o755))
	loose := filepath.Join(dir, "loose.mkv")
	require.NoError(t, os.WriteFile(loose, nil, 0o644))

	b := &Bot{}
	text, err := b.deleteFile("1", []string{show, loose})
	require.NoError(t, err)
	assert.Equal(t, "🗑️ Directory deleted: The Wire", text)
	assert.NoDirExists(t, show)

	text, err = b.deleteFile("2", []string{show, loose})
	require.NoError(t, err)
	assert.Equal(t, "🗑️ File deleted: loose.mkv", text)
	assert.NoFileExists(t, loose)
}

func TestDeleteFileBadIndex(t *testing.T) {
	b := &Bot{}
	for _, reply := range []string{"0", "3", "x"} {
		_, err := b.deleteFile(reply, []string{"/a", "/b"})
		assert.Error(t, err, fmt.Sprintf("reply %q", reply))
	}
}

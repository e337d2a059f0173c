package bot

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/couchpilot/couchpilot/internal/jackett"
	"github.com/couchpilot/couchpilot/internal/restructure"
	"github.com/couchpilot/couchpilot/internal/transmission"
)

const helpText = `/torrent-tv (Magnet Link)
/torrent-movie (Magnet Link)
/search (Movie or TV Show e.g. The Matrix or Simpsons s01e01)
/imdb (IMDb link)
/status - Get status of active downloads
/delete-torrent - List all downloads (reply with number to delete torrent)
/delete-tv - List TV shows files (reply with number to delete file)
/delete-movie - List movie files (reply with number to delete file)
/restructure <tv|movie> - Scan and reorganize media files
/stop-seed - Stop seeding for all downloads
/storage - Get available storage information
/version - Show version and check for updates

Reply to a search result list with:
Position of the torrent
If jackett doesn't provide a category, it's possible to force with:
tv (position)
movie (position)`

// formatSearchResults renders a numbered result list inside <pre> so
// columns line up in the Telegram client.
func formatSearchResults(results []jackett.Result) string {
	var b strings.Builder
	b.WriteString("<pre>")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s - %s - %d\n",
			i+1, html.EscapeString(r.Title), humanize.Bytes(r.Size), r.Seeders)
	}
	b.WriteString("</pre>")
	return b.String()
}

func statusEmoji(status int64) string {
	switch status {
	case transmission.StatusStopped:
		return "⏸️"
	case transmission.StatusCheckWait, transmission.StatusDownloadQ, transmission.StatusSeedQ:
		return "⏳"
	case transmission.StatusChecking:
		return "🔍"
	case transmission.StatusDownloading:
		return "⬇️"
	case transmission.StatusSeeding:
		return "⬆️"
	default:
		return "❓"
	}
}

func formatStatus(torrents []transmission.Torrent) string {
	if len(torrents) == 0 {
		return "📊 No active downloads"
	}

	var b strings.Builder
	b.WriteString("📊 Active Downloads:\n\n")
	for _, t := range torrents {
		fmt.Fprintf(&b, "%s %s (%d%%)\n  Size: %s, Downloaded: %s, Uploaded: %s\n",
			statusEmoji(t.Status),
			t.Name,
			int(t.PercentDone*100),
			humanize.Bytes(uint64(t.TotalSize)),
			humanize.Bytes(uint64(t.DownloadedEver)),
			humanize.Bytes(uint64(t.UploadedEver)))
	}
	return b.String()
}

// kindFromDir classifies a torrent by its download directory. Unknown
// directories report ok=false.
func kindFromDir(dir, tvPath, moviePath string) (kind restructure.MediaKind, ok bool) {
	dir = filepath.Clean(dir)
	if tvPath != "" && strings.HasPrefix(dir, filepath.Clean(tvPath)) {
		return restructure.KindTV, true
	}
	if moviePath != "" && strings.HasPrefix(dir, filepath.Clean(moviePath)) {
		return restructure.KindMovie, true
	}
	return 0, false
}

// formatTorrentList renders a numbered deletion list and returns the
// torrent IDs in display order. filter narrows the list to one kind.
func formatTorrentList(torrents []transmission.Torrent, filter *restructure.MediaKind, tvPath, moviePath string) (string, []int64) {
	var b strings.Builder
	var ids []int64

	number := 1
	for _, t := range torrents {
		kind, known := kindFromDir(t.DownloadDir, tvPath, moviePath)
		if filter != nil && (!known || kind != *filter) {
			continue
		}

		label := "📁 Unknown"
		if known {
			switch kind {
			case restructure.KindTV:
				label = "📺 TV"
			case restructure.KindMovie:
				label = "🎬 Movie"
			}
		}

		fmt.Fprintf(&b, "%d. %s - %s (%d%%)\n", number, label, t.Name, int(t.PercentDone*100))
		ids = append(ids, t.ID)
		number++
	}

	if len(ids) == 0 {
		return "No downloads found", nil
	}
	return "Reply with the number to delete (torrent):\n\n" + b.String(), ids
}

// listDirectory returns the non-hidden entries of dir, sorted, as
// absolute paths. Only the top level is listed: deleting a show means
// deleting its directory.
func listDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// formatFileList renders a numbered deletion list of file names and
// returns the full paths in display order.
func formatFileList(paths []string) (string, []string) {
	if len(paths) == 0 {
		return "No files found", nil
	}

	var b strings.Builder
	b.WriteString("Reply with the number to delete (file):\n\n")
	for i, p := range paths {
		fmt.Fprintf(&b, "%d. %s\n", i+1, filepath.Base(p))
	}
	return b.String(), paths
}

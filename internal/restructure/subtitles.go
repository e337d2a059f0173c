package restructure

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MatchSubtitles finds subtitle files belonging to a video file. Only
// the video's own directory is searched, and a candidate matches when
// its name starts with the video's stem, which covers language-suffixed
// variants like show.s01e01.en.srt. Returned sorted.
func MatchSubtitles(videoPath string) []string {
	parent := filepath.Dir(videoPath)
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}

	var subtitles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !SubtitleExtensions[filepath.Ext(name)] {
			continue
		}
		if !strings.HasPrefix(name, stem) {
			continue
		}
		subtitles = append(subtitles, filepath.Join(parent, name))
	}

	sort.Strings(subtitles)
	return subtitles
}

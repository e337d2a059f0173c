package restructure

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Path generation failures for TV metadata.
var (
	ErrMissingSeason  = errors.New("missing season number")
	ErrMissingEpisode = errors.New("missing episode number")
)

var titleSanitizer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
	`"`, "-", "<", "-", ">", "-", "|", "-",
)

// SanitizeTitle replaces characters that are invalid in filenames.
func SanitizeTitle(name string) string {
	return titleSanitizer.Replace(name)
}

// TVPath builds the canonical episode path:
// {base}/{title}/Season {SS}/{title} - S{SS}E{EE}{ext}. Multi-episode
// files get their numbers sorted ascending and joined as E01-E02-E03.
func TVPath(baseDir string, meta Metadata) (string, error) {
	if meta.Season == nil {
		return "", ErrMissingSeason
	}
	if len(meta.Episodes) == 0 {
		return "", ErrMissingEpisode
	}

	title := SanitizeTitle(meta.Title)
	season := fmt.Sprintf("%02d", *meta.Season)

	episodes := append([]int(nil), meta.Episodes...)
	sort.Ints(episodes)
	tags := make([]string, len(episodes))
	for i, ep := range episodes {
		tags[i] = fmt.Sprintf("E%02d", ep)
	}

	filename := fmt.Sprintf("%s - S%s%s%s", title, season, strings.Join(tags, "-"), meta.Extension)
	return filepath.Join(baseDir, title, "Season "+season, filename), nil
}

// MoviePath builds the canonical movie path:
// {base}/{title} ({year})/{title} ({year}){ext}, omitting the year
// parenthetical when the year is unknown.
func MoviePath(baseDir string, meta Metadata) (string, error) {
	folder := SanitizeTitle(meta.Title)
	if meta.Year != nil {
		folder = fmt.Sprintf("%s (%d)", folder, *meta.Year)
	}
	return filepath.Join(baseDir, folder, folder+meta.Extension), nil
}

// targetFor dispatches to the generator for the given kind.
func targetFor(kind MediaKind, baseDir string, meta Metadata) (string, error) {
	if kind == KindMovie {
		return MoviePath(baseDir, meta)
	}
	return TVPath(baseDir, meta)
}

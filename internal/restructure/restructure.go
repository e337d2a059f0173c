// Package restructure reorganizes downloaded media files into a clean
// library layout. It scans a directory tree for video files, asks an
// external metadata tool what each file is, derives canonical target
// paths, and produces a plan the user confirms over chat before any
// file is touched.
package restructure

import (
	"errors"
	"fmt"
	"strings"
)

// MediaKind classifies a download as a TV show or a movie.
// It is always supplied by the caller, never inferred here.
type MediaKind int

const (
	KindTV MediaKind = iota
	KindMovie
)

// String returns a human-readable kind name.
func (k MediaKind) String() string {
	switch k {
	case KindTV:
		return "TV"
	case KindMovie:
		return "Movie"
	default:
		return "Unknown"
	}
}

// ErrUnknownKind indicates a media kind string that is neither tv nor movie.
var ErrUnknownKind = errors.New("unknown media kind")

// ParseKind converts user input like "tv" or "movie" into a MediaKind.
func ParseKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tv":
		return KindTV, nil
	case "movie":
		return KindMovie, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MoveOperation is a single proposed file move. A video file always
// produces one operation with Subtitle=false, immediately followed in
// plan order by the operations for its matched subtitle files. The
// presenter and the reply interpreter both rely on that contiguity.
type MoveOperation struct {
	Source      string
	Target      string
	DisplayName string
	Subtitle    bool
}

// Plan is the full set of proposed moves for one restructure request,
// plus the files that could not be planned. It is immutable once built;
// Interpret derives a filtered copy rather than mutating it.
type Plan struct {
	Kind        MediaKind
	Operations  []MoveOperation
	Unparseable []string
}

// Empty reports whether the plan proposes nothing and skipped nothing.
func (p Plan) Empty() bool {
	return len(p.Operations) == 0 && len(p.Unparseable) == 0
}

// VideoGroups counts the video operations in the plan. This is the
// number of entries the presenter renders and the upper bound for
// indices the reply interpreter accepts.
func (p Plan) VideoGroups() int {
	n := 0
	for _, op := range p.Operations {
		if !op.Subtitle {
			n++
		}
	}
	return n
}

package restructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrCollisionUnresolved indicates every probed suffix was taken.
// The caller must not fall back to the original path; that would
// overwrite an existing file.
var ErrCollisionUnresolved = errors.New("no free target name")

const collisionProbes = 100

// ResolveCollision returns target unchanged when nothing occupies it,
// otherwise the first free {stem}-{i}{ext} for i in 1..100.
//
// The existence check is advisory: a concurrent writer in the same tree
// can still race it. Acceptable for a single-operator tool.
func ResolveCollision(target string) (string, error) {
	if !pathExists(target) {
		return target, nil
	}

	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	for i := 1; i <= collisionProbes; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if !pathExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCollisionUnresolved, target)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

package restructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Metadata is what the inference tool reports about a single file.
// Immutable once returned; the extension always comes from the actual
// source path, never from the tool.
type Metadata struct {
	Title     string
	Year      *int
	Season    *int
	Episodes  []int
	Extension string
}

// UnmarshalJSON accepts the tool's JSON shape, where "episode" may be
// absent, a single number, or an array of numbers.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title   string          `json:"title"`
		Year    *int            `json:"year"`
		Season  *int            `json:"season"`
		Episode json.RawMessage `json:"episode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Title = raw.Title
	m.Year = raw.Year
	m.Season = raw.Season
	m.Episodes = nil

	if len(raw.Episode) == 0 || string(raw.Episode) == "null" {
		return nil
	}
	var single int
	if err := json.Unmarshal(raw.Episode, &single); err == nil {
		m.Episodes = []int{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(raw.Episode, &many); err != nil {
		return fmt.Errorf("episode field: %w", err)
	}
	m.Episodes = many
	return nil
}

// Oracle infers media metadata from a file path. It exists as an
// interface so plan building can be tested without the external tool.
type Oracle interface {
	Infer(ctx context.Context, path string) (Metadata, error)
}

// Inference failures, one per way the external tool can let us down.
var (
	ErrOracleTimeout  = errors.New("metadata tool timed out")
	ErrOracleNotFound = errors.New("metadata tool not installed")
	ErrOracleFailed   = errors.New("metadata tool failed")
	ErrOracleOutput   = errors.New("unreadable metadata tool output")
)

const inferTimeout = 5 * time.Second

// GuessitOracle shells out to the guessit CLI for metadata inference.
type GuessitOracle struct {
	// Bin overrides the binary name, mainly for tests.
	Bin string
}

// Infer runs `guessit -j <path>` with a fixed timeout and decodes the
// JSON it prints. The extension in the result is taken from path,
// defaulting to .mkv when path has none.
func (g GuessitOracle) Infer(ctx context.Context, path string) (Metadata, error) {
	bin := g.Bin
	if bin == "" {
		bin = "guessit"
	}

	ctx, cancel := context.WithTimeout(ctx, inferTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-j", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Metadata{}, fmt.Errorf("%w after %s", ErrOracleTimeout, inferTimeout)
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, fmt.Errorf("%w: install with: pip install guessit", ErrOracleNotFound)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Metadata{}, fmt.Errorf("%w: %s", ErrOracleFailed, msg)
	}

	var meta Metadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrOracleOutput, err)
	}
	meta.Extension = extensionOf(path)
	return meta, nil
}

// extensionOf returns the path's extension, or .mkv when it has none.
func extensionOf(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mkv"
}

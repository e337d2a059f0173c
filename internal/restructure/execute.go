package restructure

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Outcome aggregates per-item results of executing a batch of moves.
type Outcome struct {
	Succeeded int
	Total     int
	Errors    []string
}

// Failed reports a hard failure: nothing at all moved. Partial progress
// still counts as success since every operation is independent and
// retryable.
func (o Outcome) Failed() bool {
	return o.Succeeded == 0 && o.Total > 0
}

const maxReportedErrors = 10

// Summary renders the outcome with up to maxReportedErrors itemized
// error lines and a remainder count beyond that.
func (o Outcome) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Restructuring complete!\n• %d/%d files moved", o.Succeeded, o.Total)
	if len(o.Errors) > 0 {
		fmt.Fprintf(&b, "\n• %d errors:\n", len(o.Errors))
		for i, line := range o.Errors {
			if i == maxReportedErrors {
				fmt.Fprintf(&b, "  ... and %d more errors\n", len(o.Errors)-maxReportedErrors)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", line)
		}
	}
	return b.String()
}

// Execute applies the operations in order, best-effort: an item failure
// is recorded and execution continues with the rest.
func Execute(operations []MoveOperation) Outcome {
	out := Outcome{Total: len(operations)}
	for _, op := range operations {
		if err := moveFile(op.Source, op.Target); err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", op.DisplayName, err))
			continue
		}
		out.Succeeded++
	}
	return out
}

// moveFile renames source to target, creating missing target ancestors.
// A cross-device rename falls back to copy then delete; when the copy
// lands but the delete fails, the error says so explicitly since the
// data is duplicated rather than lost.
func moveFile(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err := os.Rename(source, target)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("failed to move: %w", err)
	}

	if err := copyFile(source, target); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}
	if err := os.Remove(source); err != nil {
		return fmt.Errorf("copied but failed to delete source: %w", err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(target)
		return err
	}
	return out.Close()
}

package restructure

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reply interpretation outcomes. ErrCancelled is a signal, not a
// failure; the rest are surfaced to the user verbatim and leave the
// plan pending for a corrected reply.
var (
	ErrCancelled         = errors.New("restructure cancelled")
	ErrInvalidIndex      = errors.New("not a number")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrEmptySelection    = errors.New("no operations selected")
	ErrUnrecognizedReply = errors.New(`unrecognized reply. Use "apply all", "apply 1 2 5", or "cancel"`)
)

// Interpret parses a confirmation reply against a plan and returns the
// selected operations. Matching is case-insensitive and trimmed.
// Selecting index k takes video group k: the k-th video operation plus
// its contiguous run of subtitle operations. Duplicate indices collapse.
func Interpret(reply string, plan Plan) ([]MoveOperation, error) {
	text := strings.ToLower(strings.TrimSpace(reply))

	switch text {
	case "cancel":
		return nil, ErrCancelled
	case "apply", "apply all":
		return append([]MoveOperation(nil), plan.Operations...), nil
	}

	if !strings.HasPrefix(text, "apply ") {
		return nil, ErrUnrecognizedReply
	}

	wanted := make(map[int]bool)
	for _, token := range strings.Fields(strings.TrimPrefix(text, "apply ")) {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIndex, token)
		}
		wanted[n] = true
	}

	groups := plan.VideoGroups()
	for n := range wanted {
		if n < 1 || n > groups {
			return nil, fmt.Errorf("%w: %d (1-%d)", ErrIndexOutOfRange, n, groups)
		}
	}

	var selected []MoveOperation
	num := 0
	for i := 0; i < len(plan.Operations); {
		if plan.Operations[i].Subtitle {
			i++
			continue
		}
		num++
		j := i + 1
		for j < len(plan.Operations) && plan.Operations[j].Subtitle {
			j++
		}
		if wanted[num] {
			selected = append(selected, plan.Operations[i:j]...)
		}
		i = j
	}

	// Guarded even though the range check above makes it unreachable
	// for any non-empty index set.
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	return selected, nil
}

package restructure

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	maxRenderedGroups      = 50
	maxRenderedUnparseable = 20
)

// Render formats a plan as a numbered confirmation listing. Only video
// operations get numbers; their subtitles render indented beneath them.
// The numbering here is exactly what Interpret accepts back, so both
// walk the operation list with the same grouping.
func Render(plan Plan) string {
	if plan.Empty() {
		return "✅ Nothing to restructure"
	}

	emoji := "📺"
	if plan.Kind == KindMovie {
		emoji = "🎬"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Restructure Plan:\n\n", emoji)

	ops := plan.Operations
	num := 0
	for i := 0; i < len(ops); {
		if ops[i].Subtitle {
			i++
			continue
		}
		num++
		if num > maxRenderedGroups {
			fmt.Fprintf(&b, "\n... and %d more operations (showing first %d)\n", len(ops)-i, maxRenderedGroups)
			break
		}

		fmt.Fprintf(&b, "%d. %s\n   → %s\n", num, ops[i].DisplayName, shortTarget(ops[i].Target))

		j := i + 1
		for j < len(ops) && ops[j].Subtitle {
			fmt.Fprintf(&b, "      + %s\n", ops[j].DisplayName)
			j++
		}
		i = j
	}

	if len(plan.Unparseable) > 0 {
		b.WriteString("\n⚠️ Unparseable files (will be skipped):\n")
		for i, file := range plan.Unparseable {
			if i == maxRenderedUnparseable {
				fmt.Fprintf(&b, "  ... and %d more\n", len(plan.Unparseable)-maxRenderedUnparseable)
				break
			}
			fmt.Fprintf(&b, "  • %s\n", filepath.Base(file))
		}
	}

	b.WriteString("\nReply with:\n")
	b.WriteString("• \"apply all\" - Execute all operations\n")
	b.WriteString("• \"apply 1 2 5\" - Execute specific operations\n")
	b.WriteString("• \"cancel\" - Cancel restructure\n")

	return b.String()
}

// shortTarget trims a target to its last two path elements, enough to
// show the destination folder and filename without the library root.
func shortTarget(target string) string {
	dir, file := filepath.Split(target)
	parent := filepath.Base(filepath.Clean(dir))
	if parent == "." || parent == string(filepath.Separator) {
		return file
	}
	return filepath.Join(parent, file)
}

package restructure

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptyPlan(t *testing.T) {
	assert.Equal(t, "✅ Nothing to restructure", Render(Plan{Kind: KindTV}))
}

func TestRenderNumbersVideosOnly(t *testing.T) {
	text := Render(samplePlan())

	assert.Contains(t, text, "1. a.mkv")
	assert.Contains(t, text, "2. b.mkv")
	assert.Contains(t, text, "3. c.mkv")
	// Subtitles are indented under their video, never numbered.
	assert.Contains(t, text, "+ a.srt")
	assert.Contains(t, text, "+ c.en.srt")
	assert.NotContains(t, text, "4.")
}

func TestRenderFooterListsReplyForms(t *testing.T) {
	text := Render(samplePlan())

	assert.Contains(t, text, `"apply all"`)
	assert.Contains(t, text, `"apply 1 2 5"`)
	assert.Contains(t, text, `"cancel"`)
}

func TestRenderTruncatesAtFiftyGroups(t *testing.T) {
	var plan Plan
	for i := 1; i <= 60; i++ {
		plan.Operations = append(plan.Operations, MoveOperation{
			Source:      fmt.Sprintf("/d/e%02d.mkv", i),
			Target:      fmt.Sprintf("/t/Show/Season 01/e%02d.mkv", i),
			DisplayName: fmt.Sprintf("e%02d.mkv", i),
		})
	}

	text := Render(plan)
	assert.Contains(t, text, "50. e50.mkv")
	assert.NotContains(t, text, "51. e51.mkv")
	assert.Contains(t, text, "and 10 more operations (showing first 50)")
}

func TestRenderTruncatesUnparseableAtTwenty(t *testing.T) {
	var plan Plan
	for i := 0; i < 25; i++ {
		plan.Unparseable = append(plan.Unparseable, fmt.Sprintf("/d/junk-%02d.mkv", i))
	}

	text := Render(plan)
	assert.Contains(t, text, "junk-19.mkv")
	assert.NotContains(t, text, "junk-20.mkv")
	assert.Contains(t, text, "and 5 more")
}

func TestRenderNumberingMatchesInterpret(t *testing.T) {
	plan := samplePlan()
	text := Render(plan)

	// Entry 3 in the rendering is c.mkv; interpreting "apply 3" must
	// select the same group.
	require.Contains(t, text, "3. c.mkv")
	ops, err := Interpret("apply 3", plan)
	require.NoError(t, err)
	assert.Equal(t, "c.mkv", ops[0].DisplayName)
}

func TestRenderShortensTargets(t *testing.T) {
	plan := Plan{Operations: []MoveOperation{{
		Source:      "/downloads/Show.S01E01.mkv",
		Target:      "/library/tv/Show/Season 01/Show - S01E01.mkv",
		DisplayName: "Show.S01E01.mkv",
	}}}

	text := Render(plan)
	assert.Contains(t, text, "Season 01/Show - S01E01.mkv")
	assert.False(t, strings.Contains(text, "/library/tv"), "library root should not leak into the listing")
}

package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/registry"
	"github.com/wickerworks/osier/pkg/schema"
)

func TestGenerateMermaid_FanOut(t *testing.T) {
	plan := domain.NewPlan().
		Step("clean").
		FanOut("summarize", "classify")

	out := GenerateMermaid(plan, nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "start((start))")
	assert.Contains(t, out, `s0_clean[["clean"]]`)
	assert.Contains(t, out, `s1_summarize[["summarize"]]`)
	assert.Contains(t, out, `s1_classify[["classify"]]`)
	assert.Contains(t, out, "finish((finish))")
	// Both fan-out units converge on the same barrier.
	assert.Contains(t, out, "s1_summarize --> finish")
	assert.Contains(t, out, "s1_classify --> finish")
}

func TestGenerateMermaid_OutputLabels(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("summarize",
		schema.New(),
		schema.New().Field("summary", schema.String()),
		nil))

	plan := domain.NewPlan().Step("summarize")
	out := GenerateMermaid(plan, reg)

	assert.Contains(t, out, "writes: summary")
}

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "a_b_c_d", sanitizeMermaidID("a/b c.d"))
}

package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	full, ok := c.Pipeline(PipelineFull)
	require.True(t, ok)
	assert.Equal(t, "final_synthesizer", full.TerminalStage)
	assert.Equal(t, "final_report", full.ResultKey)
	assert.Len(t, c.StagesOf(full), 7)

	reduced, ok := c.Pipeline(PipelineReduced)
	require.True(t, ok)
	assert.Equal(t, "quick_advisor", reduced.TerminalStage)
	assert.Equal(t, full.ResultKey, reduced.ResultKey)

	s, ok := c.Lookup("zoning_researcher")
	require.True(t, ok)
	assert.Equal(t, "Zoning Researcher", s.DisplayName)
	assert.Equal(t, GroupResearch, s.Group)
	assert.Equal(t, "zoning researcher", s.Words())

	assert.Equal(t, "mystery", c.DisplayName("mystery"))
}

func TestLoadRejectsBrokenDefinitions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown stage in pipeline",
			doc: `
stages:
  - {id: a, output_key: a}
pipelines:
  p: {stages: [a, b], terminal_stage: a}
`,
		},
		{
			name: "terminal stage not listed",
			doc: `
stages:
  - {id: a, output_key: a}
  - {id: b, output_key: b}
pipelines:
  p: {stages: [a], terminal_stage: b}
`,
		},
		{
			name: "duplicate id",
			doc: `
stages:
  - {id: a, output_key: a}
  - {id: a, output_key: b}
`,
		},
		{
			name: "missing output key",
			doc: `
stages:
  - {id: a}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

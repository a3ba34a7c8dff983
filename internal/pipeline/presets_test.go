package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/pkg/schema"
)

func TestPresets_AllValid(t *testing.T) {
	docs := Presets()
	require.Len(t, docs, 6)

	ids := []string{}
	cat := catalog.Default()
	for _, d := range docs {
		ids = append(ids, d.ID)
		assert.NotEmpty(t, d.Name)
		for _, n := range d.Nodes {
			assert.True(t, cat.Has(n.AgentType), "%s: %s", d.ID, n.AgentType)
		}
		for _, e := range d.Edges {
			assert.Less(t, e.Source, len(d.Nodes))
			assert.Less(t, e.Target, len(d.Nodes))
			assert.NotEqual(t, e.Source, e.Target)
		}
	}
	assert.Equal(t, []string{"review", "implement", "debug", "research", "full-autopilot", "security-audit"}, ids)
}

func TestPreset_Lookup(t *testing.T) {
	d, err := Preset("full-autopilot")
	require.NoError(t, err)
	assert.Len(t, d.Nodes, 7)
	assert.Len(t, d.Edges, 10)
	assert.Equal(t, "mid", d.Nodes[3].Model)
	assert.Equal(t, schema.DocumentEdge{Source: 5, Target: 6}, d.Edges[9])

	_, err = Preset("nope")
	var fe *schema.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, schema.ErrCodeNotFound, fe.Code)
}

func TestPresets_ReturnsCopies(t *testing.T) {
	a := Presets()
	a[0].Nodes[0].AgentType = "mutated"
	b := Presets()
	assert.Equal(t, "explore", b[0].Nodes[0].AgentType)
}

package graphio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/internal/identity"
	"github.com/rendis/agentflow/internal/pipeline"
	"github.com/rendis/agentflow/pkg/schema"
)

func TestParse_JSON(t *testing.T) {
	doc, err := Parse([]byte(`{
		"name": "Review",
		"nodes": [
			{"agentType": "explore", "prompt": "look around"},
			{"agentType": "executor", "model": "opus"}
		],
		"edges": [[0, 1], {"source": 1, "target": 0, "label": "feedback"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Review", doc.Name)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "look around", doc.Nodes[0].Prompt)
	assert.Equal(t, []schema.DocumentEdge{{Source: 0, Target: 1}, {Source: 1, Target: 0, Label: "feedback"}}, doc.Edges)
}

func TestParse_YAML(t *testing.T) {
	doc, err := Parse([]byte(`
name: Debug
nodes:
  - agentType: explore
    prompt: find the bug
  - {agentType: build-fixer}
edges:
  - [0, 1]
  - {source: 0, target: 1, label: root cause}
`))
	require.NoError(t, err)
	assert.Equal(t, "Debug", doc.Name)
	assert.Equal(t, "build-fixer", doc.Nodes[1].AgentType)
	assert.Equal(t, "root cause", doc.Edges[1].Label)
}

func TestParse_EmbeddedJSON(t *testing.T) {
	text := "Here is the pipeline:\n```json\n{\"nodes\":[{\"agentType\":\"planner\"}],\"edges\":[]}\n```\nLet me know."
	doc, err := Parse([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, "planner", doc.Nodes[0].AgentType)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code string
	}{
		{"empty", "   ", schema.ErrCodeImport},
		{"scalar", "just words", schema.ErrCodeImport},
		{"broken", "{\"nodes\": [", schema.ErrCodeImport},
		{"no nodes", `{"name": "x"}`, schema.ErrCodeValidation},
		{"bad edge", `{"nodes":[{"agentType":"explore"}],"edges":[[0,1,2]]}`, schema.ErrCodeValidation},
		{"yaml without agentType", "nodes:\n  - prompt: hi\n", schema.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			var fe *schema.FlowError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.code, fe.Code)
		})
	}
}

func TestMaterialize_FillsFromCatalog(t *testing.T) {
	doc := &schema.PipelineDocument{
		Nodes: []schema.DocumentNode{
			{AgentType: "explore", Prompt: "map it"},
			{AgentType: "architect", Model: "sonnet", Name: "Design"},
		},
		Edges: []schema.DocumentEdge{{Source: 0, Target: 1, Label: "layout"}},
	}

	g, result, err := Materialize(identity.NewSequential(), doc)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, DefaultName, g.Name)

	require.Len(t, g.Nodes, 2)
	explore := g.Nodes[0]
	assert.Equal(t, "node_1", explore.ID)
	assert.Equal(t, schema.ModelLow, explore.Model)
	assert.Equal(t, "Explore", explore.Label)
	assert.Equal(t, string(catalog.CategorySearch), explore.Category)
	assert.Equal(t, "map it", explore.Instruction)

	arch := g.Nodes[1]
	assert.Equal(t, schema.ModelMid, arch.Model)
	assert.Equal(t, "Design", arch.Label)

	assert.Equal(t, []schema.Edge{{ID: "edge_1", Source: "node_1", Target: "node_2", Label: "layout"}}, g.Edges)
}

func TestMaterialize_RepairsKindsAndModels(t *testing.T) {
	doc := &schema.PipelineDocument{
		Name: "Repairs",
		Nodes: []schema.DocumentNode{
			{AgentType: "tester"},
			{AgentType: "explorer"},
			{AgentType: "wizard"},
			{AgentType: "executor", Model: "gpt"},
		},
	}

	g, result, err := Materialize(identity.NewSequential(), doc)
	require.NoError(t, err)

	kinds := []string{}
	for _, n := range g.Nodes {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []string{"qa-tester", "explore", "executor", "executor"}, kinds)
	assert.Equal(t, schema.ModelMid, g.Nodes[3].Model)

	paths := []string{}
	for _, w := range result.Warnings {
		paths = append(paths, w.Path)
	}
	assert.Equal(t, []string{"nodes[0].agentType", "nodes[1].agentType", "nodes[2].agentType", "nodes[3].model"}, paths)
	assert.True(t, result.Valid())
}

func TestMaterialize_DropsBadEdges(t *testing.T) {
	doc := &schema.PipelineDocument{
		Nodes: []schema.DocumentNode{{AgentType: "explore"}, {AgentType: "executor"}, {AgentType: "writer"}},
		Edges: []schema.DocumentEdge{
			{Source: 0, Target: 1},
			{Source: 1, Target: 1},
			{Source: 2, Target: 3},
			{Source: -1, Target: 0},
			{Source: 0, Target: 1, Label: "again"},
			{Source: 1, Target: 2},
		},
	}

	g, result, err := Materialize(identity.NewSequential(), doc)
	require.NoError(t, err)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "node_1", g.Edges[0].Source)
	assert.Equal(t, "node_2", g.Edges[1].Source)
	assert.Equal(t, "edge_2", g.Edges[1].ID)

	require.Len(t, result.Warnings, 4)
	assert.Equal(t, "edges[1]", result.Warnings[0].Path)
	assert.Contains(t, result.Warnings[0].Message, "own source")
	assert.Contains(t, result.Warnings[1].Message, "out of range")
	assert.Contains(t, result.Warnings[2].Message, "out of range")
	assert.Contains(t, result.Warnings[3].Message, "duplicate")
}

func TestMaterialize_KeepsAndDedupesIDs(t *testing.T) {
	doc := &schema.PipelineDocument{
		Nodes: []schema.DocumentNode{
			{ID: "a", AgentType: "explore"},
			{ID: "a", AgentType: "executor"},
			{ID: "node_1", AgentType: "writer"},
		},
	}

	g, result, err := Materialize(identity.NewSequential(), doc)
	require.NoError(t, err)
	// the generator's node_1 collides with the explicit id of nodes[2]
	assert.Equal(t, "a", g.Nodes[0].ID)
	assert.Equal(t, "node_1", g.Nodes[1].ID)
	assert.Equal(t, "node_2", g.Nodes[2].ID)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "nodes[1].id", result.Warnings[0].Path)
	assert.Equal(t, "nodes[2].id", result.Warnings[1].Path)
}

func TestMaterialize_ReportsCycles(t *testing.T) {
	doc := &schema.PipelineDocument{
		Nodes: []schema.DocumentNode{{AgentType: "explore"}, {AgentType: "executor"}},
		Edges: []schema.DocumentEdge{{Source: 0, Target: 1}, {Source: 1, Target: 0}},
	}

	_, result, err := Materialize(identity.NewSequential(), doc)
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, schema.ErrCodeCycleDetected, result.Warnings[0].Code)
}

func TestMaterialize_Errors(t *testing.T) {
	_, _, err := Materialize(identity.NewSequential(), nil)
	assert.Error(t, err)

	_, _, err = Materialize(identity.NewSequential(), &schema.PipelineDocument{Name: "empty"})
	var fe *schema.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, schema.ErrCodeImport, fe.Code)
}

func TestImport_Presets(t *testing.T) {
	for _, doc := range pipeline.Presets() {
		t.Run(doc.ID, func(t *testing.T) {
			d := doc
			g, result, err := Materialize(identity.NewSequential(), &d)
			require.NoError(t, err)
			assert.Empty(t, result.Warnings)
			assert.Equal(t, doc.Name, g.Name)
			assert.Len(t, g.Nodes, len(doc.Nodes))
			assert.Len(t, g.Edges, len(doc.Edges))
		})
	}
}

func TestImport_EndToEnd(t *testing.T) {
	g, result, err := Import(identity.NewUUID(), []byte(`{"name":"E2E","nodes":[{"agentType":"planner"},{"agentType":"executor"}],"edges":[[0,1]]}`))
	require.NoError(t, err)
	assert.True(t, result.Valid())
	assert.Equal(t, "E2E", g.Name)
	assert.Regexp(t, `^node-`, g.Nodes[0].ID)
	assert.Equal(t, g.Nodes[0].ID, g.Edges[0].Source)
}

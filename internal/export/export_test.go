package export

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/pkg/schema"
)

func sampleGraph() *schema.Graph {
	return &schema.Graph{
		Name:        "Login flow",
		Description: "frontend / medium complexity",
		Nodes: []schema.AgentNode{
			{ID: "a", Kind: "explore", Model: schema.ModelLow, Instruction: "map the repo"},
			{ID: "b", Kind: "executor", Model: schema.ModelMid, Instruction: "build the form"},
			{ID: "c", Kind: "designer", Model: schema.ModelMid, Instruction: "style the form"},
			{ID: "d", Kind: "build-fixer-low", Model: schema.ModelLow, Instruction: "check the build"},
		},
		Edges: []schema.Edge{
			{ID: "e1", Source: "a", Target: "b", Label: "discovery findings"},
			{ID: "e2", Source: "a", Target: "c", Label: "discovery findings"},
			{ID: "e3", Source: "b", Target: "d", Label: "code changes"},
			{ID: "e4", Source: "c", Target: "d", Label: "styles"},
			{ID: "e5", Source: "c", Target: "d", Label: "code changes"},
		},
	}
}

func buildSample() *schema.Plan {
	g := sampleGraph()
	return BuildPlan("", g, engine.Schedule(g.Nodes, g.Edges))
}

func TestBuildPlan_Context(t *testing.T) {
	plan := buildSample()

	assert.Equal(t, "Login flow", plan.Name)
	assert.Equal(t, "frontend / medium complexity", plan.Description)
	assert.Equal(t, 4, plan.AgentCount)
	assert.Equal(t, 2, plan.MaxParallel)
	require.Len(t, plan.Steps, 3)

	assert.Empty(t, plan.Steps[0].Agents[0].ContextFrom)
	assert.Equal(t, []string{"discovery findings"}, plan.Steps[0].ContextOutputs)

	assert.Equal(t, "discovery findings", plan.Steps[1].Agents[0].ContextFrom)
	assert.Equal(t, []string{"code changes", "styles"}, plan.Steps[1].ContextOutputs)

	assert.Equal(t, "code changes, styles", plan.Steps[2].Agents[0].ContextFrom)
	assert.Empty(t, plan.Steps[2].ContextOutputs)
}

func TestBuildPlan_DoesNotModifySteps(t *testing.T) {
	g := sampleGraph()
	steps := engine.Schedule(g.Nodes, g.Edges)
	BuildPlan("x", g, steps)
	for _, s := range steps {
		assert.Empty(t, s.ContextOutputs)
		for _, a := range s.Agents {
			assert.Empty(t, a.ContextFrom)
		}
	}
}

func TestBuildPlan_Names(t *testing.T) {
	assert.Equal(t, "Explicit", BuildPlan("Explicit", sampleGraph(), nil).Name)
	assert.Equal(t, DefaultName, BuildPlan("", nil, nil).Name)
	assert.Equal(t, DefaultName, BuildPlan("", &schema.Graph{}, nil).Name)
}

func TestBuildPlan_NilGraph(t *testing.T) {
	g := sampleGraph()
	plan := BuildPlan("", nil, engine.Schedule(g.Nodes, g.Edges))
	require.Len(t, plan.Steps, 3)
	for _, s := range plan.Steps {
		assert.Empty(t, s.ContextOutputs)
		for _, a := range s.Agents {
			assert.Empty(t, a.ContextFrom)
		}
	}
}

func TestBuildPlan_Overflow(t *testing.T) {
	g := &schema.Graph{
		Nodes: []schema.AgentNode{{ID: "x", Kind: "executor"}, {ID: "y", Kind: "executor"}},
		Edges: []schema.Edge{{Source: "x", Target: "y"}, {Source: "y", Target: "x"}},
	}
	plan := BuildPlan("", g, engine.Schedule(g.Nodes, g.Edges))
	require.Len(t, plan.Steps, 1)
	assert.True(t, plan.Steps[0].Overflow)
}

func TestBuildPlan_JSONShape(t *testing.T) {
	data, err := json.Marshal(buildSample())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Login flow", doc["name"])

	steps := doc["steps"].([]any)
	first := steps[0].(map[string]any)
	assert.EqualValues(t, 1, first["step"])
	assert.Equal(t, false, first["parallel"])
	assert.NotContains(t, first, "overflow")

	agent := first["agents"].([]any)[0].(map[string]any)
	assert.Equal(t, "a", agent["id"])
	assert.Equal(t, "explore", agent["type"])
	assert.Equal(t, "low", agent["model"])
	assert.Equal(t, "map the repo", agent["prompt"])
	assert.NotContains(t, agent, "contextFrom")
}

func TestQuery(t *testing.T) {
	plan := buildSample()
	ctx := context.Background()

	got, err := Query(ctx, plan, ".name")
	require.NoError(t, err)
	assert.Equal(t, "Login flow", got)

	got, err = Query(ctx, plan, ".steps | length")
	require.NoError(t, err)
	assert.EqualValues(t, 3, got)

	got, err = Query(ctx, plan, ".steps[].agents[] | select(.model == \"low\") | .type")
	require.NoError(t, err)
	assert.Equal(t, []any{"explore", "build-fixer-low"}, got)

	got, err = Query(ctx, plan, ".steps[] | select(.parallel) | .step")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got)
}

func TestQuery_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := Query(ctx, nil, ".name")
	assert.Error(t, err)

	_, err = Query(ctx, buildSample(), "")
	assert.Error(t, err)

	_, err = Query(ctx, buildSample(), ".steps[")
	var fe *schema.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, schema.ErrCodeValidation, fe.Code)
}

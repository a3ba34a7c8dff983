package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/internal/logging"
	"github.com/rendis/agentflow/internal/streaming"
)

// --- Helpers ---

func newTestServer(t *testing.T, deps ServerDeps) *Server {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	deps.SimulatorOptions = append([]engine.SimulatorOption{engine.WithTimeScale(0)}, deps.SimulatorOptions...)
	s, err := NewServer(deps)
	require.NoError(t, err)
	return s
}

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	return mcp.GetTextFromContent(result.Content[0])
}

func decode(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	return out
}

const reviewDoc = `{"name": "Doc", "nodes": [{"agentType": "explore"}, {"agentType": "architect"}, {"agentType": "writer"}], "edges": [[0, 1], [0, 2]]}`

// --- Tests ---

func TestGenerateTool(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	req := buildRequest("agentflow.generate", map[string]any{
		"text": "Fix the login bug",
		"name": "Login fix",
	})

	result, err := s.handleGenerate(context.Background(), req)
	require.NoError(t, err)
	out := decode(t, result)

	graph := out["graph"].(map[string]any)
	assert.Equal(t, "Login fix", graph["name"])
	nodes := graph["nodes"].([]any)
	require.NotEmpty(t, nodes)
	assert.Equal(t, "node_1", nodes[0].(map[string]any)["id"])

	analysis := out["analysis"].(map[string]any)
	assert.Equal(t, "bugfix", analysis["taskType"])
}

func TestGenerateToolUUIDs(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	req := buildRequest("agentflow.generate", map[string]any{"text": "add a settings page", "ids": "uuid"})

	result, err := s.handleGenerate(context.Background(), req)
	require.NoError(t, err)
	nodes := decode(t, result)["graph"].(map[string]any)["nodes"].([]any)
	require.NotEmpty(t, nodes)
	assert.True(t, strings.HasPrefix(nodes[0].(map[string]any)["id"].(string), "node-"))
}

func TestGenerateToolMissingText(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	result, err := s.handleGenerate(context.Background(), buildRequest("agentflow.generate", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestScheduleToolPreset(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	req := buildRequest("agentflow.schedule", map[string]any{"preset": "review"})

	result, err := s.handleSchedule(context.Background(), req)
	require.NoError(t, err)
	plan := decode(t, result)["plan"].(map[string]any)

	assert.Equal(t, "Review Pipeline", plan["name"])
	assert.Len(t, plan["steps"].([]any), 4)
	assert.EqualValues(t, 4, plan["agentCount"])
	assert.EqualValues(t, 1, plan["maxParallel"])
}

func TestScheduleToolDocument(t *testing.T) {
	s := newTestServer(t, ServerDeps{})

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(reviewDoc), &doc))

	for name, document := range map[string]any{"object": doc, "string": reviewDoc} {
		t.Run(name, func(t *testing.T) {
			req := buildRequest("agentflow.schedule", map[string]any{"document": document})
			result, err := s.handleSchedule(context.Background(), req)
			require.NoError(t, err)
			plan := decode(t, result)["plan"].(map[string]any)

			assert.Equal(t, "Doc", plan["name"])
			steps := plan["steps"].([]any)
			require.Len(t, steps, 2)
			assert.Equal(t, true, steps[1].(map[string]any)["parallel"])
		})
	}
}

func TestScheduleToolStrict(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	cyclic := `{"nodes": [{"agentType": "explore"}, {"agentType": "executor"}], "edges": [[0, 1], [1, 0]]}`

	result, err := s.handleSchedule(context.Background(), buildRequest("agentflow.schedule", map[string]any{
		"document": cyclic,
	}))
	require.NoError(t, err)
	out := decode(t, result)
	steps := out["plan"].(map[string]any)["steps"].([]any)
	require.Len(t, steps, 1)
	assert.Equal(t, true, steps[0].(map[string]any)["overflow"])
	assert.NotEmpty(t, out["warnings"])

	result, err = s.handleSchedule(context.Background(), buildRequest("agentflow.schedule", map[string]any{
		"document": cyclic,
		"strict":   true,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "CYCLE_DETECTED")
}

func TestScheduleToolSourceErrors(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	tests := map[string]map[string]any{
		"none":           {},
		"two sources":    {"text": "add a page", "preset": "review"},
		"unknown preset": {"preset": "nope"},
		"bad document":   {"document": `{"nodes": []}`},
		"not a document": {"document": "just words"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := s.handleSchedule(context.Background(), buildRequest("agentflow.schedule", args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestSimulateTool(t *testing.T) {
	hub := streaming.NewMemoryHub()
	ch, unsubscribe, err := hub.Subscribe(context.Background(), streaming.Filter{Types: []string{"run_completed"}})
	require.NoError(t, err)
	defer unsubscribe()

	s := newTestServer(t, ServerDeps{Hub: hub})
	req := buildRequest("agentflow.simulate", map[string]any{"preset": "implement", "seed": 3})

	result, err := s.handleSimulate(context.Background(), req)
	require.NoError(t, err)
	out := decode(t, result)

	assert.Equal(t, true, out["completed"])
	state := out["state"].(map[string]any)
	assert.Equal(t, false, state["isRunning"])
	steps := state["steps"].([]any)
	require.Len(t, steps, 3)
	for _, st := range steps {
		assert.Equal(t, "completed", st.(map[string]any)["status"])
	}

	e := <-ch
	assert.Equal(t, state["runId"], e.RunID)
}

func TestSimulateToolFailure(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	req := buildRequest("agentflow.simulate", map[string]any{
		"preset":    "implement",
		"fail_when": `agent.type == "executor"`,
	})

	result, err := s.handleSimulate(context.Background(), req)
	require.NoError(t, err)
	out := decode(t, result)
	assert.Equal(t, false, out["completed"])
	assert.Contains(t, out["error"], "RETRY_EXHAUSTED")
}

func TestSimulateToolBadPredicate(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	req := buildRequest("agentflow.simulate", map[string]any{"preset": "implement", "fail_when": "agent.type =="})

	result, err := s.handleSimulate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestQueryTool(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	req := buildRequest("agentflow.query", map[string]any{
		"document":   reviewDoc,
		"expression": "[.steps[].agents[].type]",
	})

	result, err := s.handleQuery(context.Background(), req)
	require.NoError(t, err)
	out := decode(t, result)
	assert.Equal(t, []any{"explore", "architect", "writer"}, out["result"])
}

func TestQueryToolErrors(t *testing.T) {
	s := newTestServer(t, ServerDeps{})

	result, err := s.handleQuery(context.Background(), buildRequest("agentflow.query", map[string]any{"preset": "review"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleQuery(context.Background(), buildRequest("agentflow.query", map[string]any{
		"preset":     "review",
		"expression": ".steps[",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestPresetsTool(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	result, err := s.handlePresets(context.Background(), buildRequest("agentflow.presets", nil))
	require.NoError(t, err)

	presets := decode(t, result)["presets"].([]any)
	require.Len(t, presets, 6)
	first := presets[0].(map[string]any)
	assert.Equal(t, "review", first["id"])
	assert.EqualValues(t, 4, first["agents"])
}

func TestAgentsTool(t *testing.T) {
	s := newTestServer(t, ServerDeps{})

	result, err := s.handleAgents(context.Background(), buildRequest("agentflow.agents", nil))
	require.NoError(t, err)
	assert.EqualValues(t, catalog.Default().Count(), decode(t, result)["count"])

	result, err = s.handleAgents(context.Background(), buildRequest("agentflow.agents", map[string]any{"category": "security"}))
	require.NoError(t, err)
	agents := decode(t, result)["agents"].([]any)
	require.NotEmpty(t, agents)
	for _, a := range agents {
		assert.Equal(t, "security", a.(map[string]any)["category"])
	}

	result, err = s.handleAgents(context.Background(), buildRequest("agentflow.agents", map[string]any{"category": "cooking"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestProgressNotifierWithoutSession(t *testing.T) {
	s := newTestServer(t, ServerDeps{})
	next := streaming.NewMemoryHub()
	n := newProgressNotifier(s.mcpServer, next)
	assert.NoError(t, n.Publish(context.Background(), streaming.Event{Type: "run_started"}))

	n = newProgressNotifier(s.mcpServer, nil)
	assert.NoError(t, n.Publish(context.Background(), streaming.Event{Type: "run_started"}))
}

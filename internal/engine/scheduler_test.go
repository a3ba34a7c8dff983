package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/agentflow/pkg/schema"
)

func nodes(ids ...string) []schema.AgentNode {
	out := make([]schema.AgentNode, len(ids))
	for i, id := range ids {
		out[i] = schema.AgentNode{ID: id, Kind: "executor", Model: schema.ModelMid, Instruction: "do " + id}
	}
	return out
}

func edge(source, target string) schema.Edge {
	return schema.Edge{ID: source + "->" + target, Source: source, Target: target}
}

func stepIDs(steps []schema.Step) [][]string {
	out := make([][]string, len(steps))
	for i, s := range steps {
		ids := make([]string, len(s.Agents))
		for j, a := range s.Agents {
			ids[j] = a.NodeID
		}
		out[i] = ids
	}
	return out
}

func TestSchedule_Empty(t *testing.T) {
	steps := Schedule(nil, nil)
	require.NotNil(t, steps)
	assert.Empty(t, steps)
}

func TestSchedule_NoEdges(t *testing.T) {
	steps := Schedule(nodes("a", "b", "c"), nil)
	require.Len(t, steps, 1)
	assert.Equal(t, 1, steps[0].Index)
	assert.True(t, steps[0].Parallel)
	assert.False(t, steps[0].Overflow)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, stepIDs(steps))
}

func TestSchedule_LinearChain(t *testing.T) {
	steps := Schedule(nodes("a", "b", "c"), []schema.Edge{edge("a", "b"), edge("b", "c")})
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, stepIDs(steps))
	for i, s := range steps {
		assert.Equal(t, i+1, s.Index)
		assert.False(t, s.Parallel)
	}
}

func TestSchedule_FanIn(t *testing.T) {
	steps := Schedule(nodes("a", "b", "c"), []schema.Edge{edge("a", "c"), edge("b", "c")})
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, stepIDs(steps))
	assert.True(t, steps[0].Parallel)
}

func TestSchedule_Diamond(t *testing.T) {
	steps := Schedule(nodes("a", "b", "c", "d"), []schema.Edge{
		edge("a", "b"), edge("a", "c"), edge("b", "d"), edge("c", "d"),
	})
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, stepIDs(steps))
}

func TestSchedule_ReleaseOrder(t *testing.T) {
	// a releases c before b releases d, regardless of declaration order.
	steps := Schedule(nodes("a", "b", "d", "c"), []schema.Edge{edge("b", "d"), edge("a", "c")})
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, stepIDs(steps))
}

func TestSchedule_PlannedAgentFields(t *testing.T) {
	ns := []schema.AgentNode{{ID: "x", Kind: "architect", Model: schema.ModelHigh, Instruction: "design it", Label: "Architect"}}
	steps := Schedule(ns, nil)
	require.Len(t, steps, 1)
	assert.Equal(t, schema.PlannedAgent{NodeID: "x", Type: "architect", Model: schema.ModelHigh, Instruction: "design it"}, steps[0].Agents[0])
}

func TestSchedule_CycleGoesToOverflow(t *testing.T) {
	steps := Schedule(nodes("x", "y", "z"), []schema.Edge{edge("x", "y"), edge("y", "x")})
	require.Len(t, steps, 2)
	assert.Equal(t, [][]string{{"z"}, {"x", "y"}}, stepIDs(steps))
	assert.False(t, steps[0].Overflow)
	assert.True(t, steps[1].Overflow)
	assert.Equal(t, 2, steps[1].Index)
}

func TestSchedule_DependentsOfCycleOverflow(t *testing.T) {
	steps := Schedule(nodes("w", "x", "y", "z"), []schema.Edge{
		edge("x", "y"), edge("y", "x"), edge("y", "w"),
	})
	assert.Equal(t, [][]string{{"z"}, {"w", "x", "y"}}, stepIDs(steps))
	assert.True(t, steps[1].Overflow)
}

func TestSchedule_SelfLoop(t *testing.T) {
	steps := Schedule(nodes("a", "b"), []schema.Edge{edge("a", "a")})
	assert.Equal(t, [][]string{{"b"}, {"a"}}, stepIDs(steps))
	assert.True(t, steps[1].Overflow)
}

func TestSchedule_DuplicateEdgesCountOnce(t *testing.T) {
	steps := Schedule(nodes("a", "b"), []schema.Edge{edge("a", "b"), edge("a", "b")})
	assert.Equal(t, [][]string{{"a"}, {"b"}}, stepIDs(steps))
	assert.False(t, steps[1].Overflow)
}

func TestSchedule_UnknownEndpointsIgnored(t *testing.T) {
	steps := Schedule(nodes("a", "b"), []schema.Edge{edge("ghost", "a"), edge("b", "nowhere")})
	assert.Equal(t, [][]string{{"a", "b"}}, stepIDs(steps))
}

func TestSchedule_DuplicateNodeIDs(t *testing.T) {
	ns := append(nodes("a", "b"), schema.AgentNode{ID: "a", Kind: "writer"})
	steps := Schedule(ns, nil)
	require.Len(t, steps, 1)
	require.Len(t, steps[0].Agents, 2)
	assert.Equal(t, "executor", steps[0].Agents[0].Type)
}

func TestSchedule_EveryNodeExactlyOnce(t *testing.T) {
	ns := nodes("a", "b", "c", "d", "e", "f", "g")
	es := []schema.Edge{
		edge("a", "c"), edge("b", "c"), edge("c", "d"), edge("d", "e"),
		edge("e", "d"), edge("a", "f"), edge("f", "g"), edge("e", "g"),
	}
	steps := Schedule(ns, es)

	seen := map[string]int{}
	position := map[string]int{}
	for _, s := range steps {
		for _, a := range s.Agents {
			seen[a.NodeID]++
			position[a.NodeID] = s.Index
		}
	}
	for _, n := range ns {
		assert.Equal(t, 1, seen[n.ID], "node %s", n.ID)
	}

	// Outside the overflow step every edge points forward.
	last := steps[len(steps)-1]
	require.True(t, last.Overflow)
	for _, e := range es {
		if position[e.Target] == last.Index {
			continue
		}
		assert.Less(t, position[e.Source], position[e.Target], "%s -> %s", e.Source, e.Target)
	}
	assert.Equal(t, len(ns), AgentCount(steps))
}

func TestScheduleStrict(t *testing.T) {
	steps, err := ScheduleStrict(nodes("a", "b"), []schema.Edge{edge("a", "b")})
	require.NoError(t, err)
	assert.Len(t, steps, 2)

	_, err = ScheduleStrict(nodes("x", "y", "z"), []schema.Edge{edge("x", "y"), edge("y", "x")})
	require.Error(t, err)
	var fe *schema.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, schema.ErrCodeCycleDetected, fe.Code)
	assert.Equal(t, []string{"x", "y"}, fe.Details["nodes"])
}

func TestMaxParallelAndAgentCount(t *testing.T) {
	steps := Schedule(nodes("a", "b", "c", "d"), []schema.Edge{edge("a", "d")})
	assert.Equal(t, 3, MaxParallel(steps))
	assert.Equal(t, 4, AgentCount(steps))
	assert.Equal(t, 0, MaxParallel(nil))
	assert.Equal(t, 0, AgentCount(nil))
}

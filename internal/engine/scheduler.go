package engine

import (
	"strings"

	"github.com/rendis/agentflow/pkg/schema"
)

// adjacency is the deduplicated edge structure of a graph, restricted to
// edges whose endpoints are both present.
type adjacency struct {
	order    []string
	nodes    map[string]schema.AgentNode
	succs    map[string][]string
	inDegree map[string]int
}

func buildAdjacency(nodes []schema.AgentNode, edges []schema.Edge) *adjacency {
	a := &adjacency{
		order:    make([]string, 0, len(nodes)),
		nodes:    make(map[string]schema.AgentNode, len(nodes)),
		succs:    make(map[string][]string, len(nodes)),
		inDegree: make(map[string]int, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := a.nodes[n.ID]; dup {
			continue
		}
		a.nodes[n.ID] = n
		a.order = append(a.order, n.ID)
		a.inDegree[n.ID] = 0
	}

	seen := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		_, okS := a.nodes[e.Source]
		_, okT := a.nodes[e.Target]
		if !okS || !okT {
			continue
		}
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			continue
		}
		seen[key] = true
		// A self loop is an ordinary predecessor edge: the node waits on
		// itself and is never released.
		a.succs[e.Source] = append(a.succs[e.Source], e.Target)
		a.inDegree[e.Target]++
	}
	return a
}

// levels runs Kahn's algorithm one level at a time. The first level keeps
// input order; later levels are ordered by release, walking the previous
// level in order and each node's targets in edge order. Nodes never
// released are returned in input order.
func (a *adjacency) levels() (placed [][]string, stuck []string) {
	inDegree := make(map[string]int, len(a.inDegree))
	for id, d := range a.inDegree {
		inDegree[id] = d
	}

	var current []string
	for _, id := range a.order {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	visited := make(map[string]bool, len(a.order))
	for len(current) > 0 {
		placed = append(placed, current)
		for _, id := range current {
			visited[id] = true
		}

		var next []string
		for _, id := range current {
			for _, target := range a.succs[id] {
				inDegree[target]--
				if inDegree[target] == 0 && !visited[target] {
					next = append(next, target)
				}
			}
		}
		current = next
	}

	for _, id := range a.order {
		if !visited[id] {
			stuck = append(stuck, id)
		}
	}
	return placed, stuck
}

func (a *adjacency) step(index int, ids []string) schema.Step {
	agents := make([]schema.PlannedAgent, len(ids))
	for i, id := range ids {
		n := a.nodes[id]
		agents[i] = schema.PlannedAgent{
			NodeID:      n.ID,
			Type:        n.Kind,
			Model:       n.Model,
			Instruction: n.Instruction,
		}
	}
	return schema.Step{Index: index, Parallel: len(agents) > 1, Agents: agents}
}

// Schedule orders a graph into 1-based steps. Agents sharing a step have no
// path between them and may run concurrently.
//
// Schedule never fails. Repeated edges count once and edges naming an
// absent node are ignored. Nodes that sit on a cycle, or depend on one, are
// collected into a single trailing step marked Overflow; edges among those
// nodes are not honoured. Use ScheduleStrict to reject such graphs instead.
func Schedule(nodes []schema.AgentNode, edges []schema.Edge) []schema.Step {
	if len(nodes) == 0 {
		return []schema.Step{}
	}
	adj := buildAdjacency(nodes, edges)
	placed, stuck := adj.levels()

	steps := make([]schema.Step, 0, len(placed)+1)
	for i, ids := range placed {
		steps = append(steps, adj.step(i+1, ids))
	}
	if len(stuck) > 0 {
		overflow := adj.step(len(steps)+1, stuck)
		overflow.Overflow = true
		steps = append(steps, overflow)
	}
	return steps
}

// ScheduleStrict is Schedule without the overflow policy: a graph with a
// cycle yields a CYCLE_DETECTED error naming every node that could not be
// placed.
func ScheduleStrict(nodes []schema.AgentNode, edges []schema.Edge) ([]schema.Step, error) {
	steps := Schedule(nodes, edges)
	if n := len(steps); n > 0 && steps[n-1].Overflow {
		ids := make([]string, len(steps[n-1].Agents))
		for i, a := range steps[n-1].Agents {
			ids[i] = a.NodeID
		}
		return nil, schema.NewErrorf(schema.ErrCodeCycleDetected,
			"graph contains a cycle: %d nodes cannot be ordered (%s)", len(ids), strings.Join(ids, ", ")).
			WithDetails(map[string]any{"nodes": ids})
	}
	return steps, nil
}

// MaxParallel returns the size of the widest step.
func MaxParallel(steps []schema.Step) int {
	widest := 0
	for _, s := range steps {
		if len(s.Agents) > widest {
			widest = len(s.Agents)
		}
	}
	return widest
}

// AgentCount returns the number of agents across all steps.
func AgentCount(steps []schema.Step) int {
	total := 0
	for _, s := range steps {
		total += len(s.Agents)
	}
	return total
}

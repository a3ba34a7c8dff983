package validation

import (
	"fmt"
	"strings"

	"github.com/rendis/agentflow/pkg/schema"
)

// CheckGraph reports structural problems the scheduler tolerates but a caller
// probably did not intend: self loops, dangling endpoints, repeated edges,
// cycles and nodes no root can reach. Every finding is a warning.
func CheckGraph(g *schema.Graph) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if g == nil {
		return result
	}

	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = true
	}

	// preds[id] = predecessors of id, succs[id] = successors of id.
	preds := make(map[string][]string, len(g.Nodes))
	succs := make(map[string][]string, len(g.Nodes))
	seen := make(map[[2]string]bool, len(g.Edges))

	for i, e := range g.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if !nodeIDs[e.Source] || !nodeIDs[e.Target] {
			result.AddWarning(path, schema.ErrCodeValidation,
				fmt.Sprintf("edge %s -> %s references a missing node and is ignored", e.Source, e.Target))
			continue
		}
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			result.AddWarning(path, schema.ErrCodeValidation,
				fmt.Sprintf("duplicate edge %s -> %s", e.Source, e.Target))
			continue
		}
		seen[key] = true
		if e.Source == e.Target {
			result.AddWarning(path, schema.ErrCodeValidation,
				fmt.Sprintf("node %q depends on itself", e.Source))
		}
		preds[e.Target] = append(preds[e.Target], e.Source)
		succs[e.Source] = append(succs[e.Source], e.Target)
	}

	// Kahn's algorithm in declaration order.
	inDegree := make(map[string]int, len(g.Nodes))
	queue := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = len(preds[n.ID])
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	roots := append([]string(nil), queue...)

	placed := make(map[string]bool, len(g.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		placed[id] = true
		for _, next := range succs[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	var stuck []string
	for _, n := range g.Nodes {
		if !placed[n.ID] && !contains(stuck, n.ID) {
			stuck = append(stuck, n.ID)
		}
	}
	if len(stuck) == 0 {
		return result
	}
	result.AddWarning("edges", schema.ErrCodeCycleDetected,
		fmt.Sprintf("graph contains a dependency cycle; %d nodes will run in the overflow step: %s",
			len(stuck), strings.Join(stuck, ", ")))

	// Reachability: BFS from roots through successor edges.
	reachable := make(map[string]bool, len(g.Nodes))
	bfs := append([]string(nil), roots...)
	for _, r := range roots {
		reachable[r] = true
	}
	for len(bfs) > 0 {
		id := bfs[0]
		bfs = bfs[1:]
		for _, next := range succs[id] {
			if !reachable[next] {
				reachable[next] = true
				bfs = append(bfs, next)
			}
		}
	}

	for i, n := range g.Nodes {
		if !reachable[n.ID] {
			result.AddWarning(fmt.Sprintf("nodes[%d]", i), schema.ErrCodeValidation,
				fmt.Sprintf("node %q is unreachable from any root node", n.ID))
		}
	}
	return result
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

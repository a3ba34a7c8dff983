// Package export turns scheduled steps into the portable plan document and
// answers jq queries over it.
package export

import (
	"strings"

	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/pkg/schema"
)

// DefaultName is used when neither the caller nor the graph names the plan.
const DefaultName = "Untitled Pipeline"

// contextSeparator joins the labels of several incoming edges.
const contextSeparator = ", "

// BuildPlan assembles the plan document for steps scheduled from graph.
// Edge labels become the contextFrom of their target agent and the
// contextOutputs of the step holding their source. graph may be nil, in
// which case no context is attached. The input steps are not modified.
func BuildPlan(name string, graph *schema.Graph, steps []schema.Step) *schema.Plan {
	if name == "" && graph != nil {
		name = graph.Name
	}
	if name == "" {
		name = DefaultName
	}

	plan := &schema.Plan{
		Name:        name,
		Steps:       make([]schema.Step, len(steps)),
		AgentCount:  engine.AgentCount(steps),
		MaxParallel: engine.MaxParallel(steps),
	}
	if graph != nil {
		plan.Description = graph.Description
	}

	incoming, outgoing := labels(graph)
	for i, s := range steps {
		out := schema.Step{
			Index:    s.Index,
			Parallel: s.Parallel,
			Overflow: s.Overflow,
			Agents:   make([]schema.PlannedAgent, len(s.Agents)),
		}
		seen := map[string]bool{}
		for j, a := range s.Agents {
			a.ContextFrom = strings.Join(incoming[a.NodeID], contextSeparator)
			out.Agents[j] = a
			for _, l := range outgoing[a.NodeID] {
				if !seen[l] {
					seen[l] = true
					out.ContextOutputs = append(out.ContextOutputs, l)
				}
			}
		}
		plan.Steps[i] = out
	}
	return plan
}

// labels indexes non-empty edge labels by target and by source, keeping
// edge order and dropping repeats.
func labels(graph *schema.Graph) (incoming, outgoing map[string][]string) {
	incoming = map[string][]string{}
	outgoing = map[string][]string{}
	if graph == nil {
		return incoming, outgoing
	}
	for _, e := range graph.Edges {
		if e.Label == "" {
			continue
		}
		incoming[e.Target] = appendUnique(incoming[e.Target], e.Label)
		outgoing[e.Source] = appendUnique(outgoing[e.Source], e.Label)
	}
	return incoming, outgoing
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

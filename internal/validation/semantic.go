package validation

import (
	"fmt"

	"github.com/rendis/agentflow/pkg/schema"
)

// KindLookup reports whether an agent type is declared. *catalog.Catalog
// satisfies it.
type KindLookup interface {
	Has(id string) bool
}

// validateNodes checks node identity, agent types and model tiers.
// lookup may be nil to skip agent type checks.
func validateNodes(g *schema.Graph, lookup KindLookup) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	seen := make(map[string]int, len(g.Nodes))

	for i, n := range g.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)

		if n.ID == "" {
			result.AddError(path+".id", schema.ErrCodeValidation, "node id is required")
		} else if first, dup := seen[n.ID]; dup {
			result.AddError(path+".id", schema.ErrCodeValidation,
				fmt.Sprintf("duplicate node id %q (first used by nodes[%d])", n.ID, first))
		} else {
			seen[n.ID] = i
		}

		switch {
		case n.Kind == "":
			result.AddError(path+".agentType", schema.ErrCodeValidation, "agent type is required")
		case lookup != nil && !lookup.Has(n.Kind):
			result.AddError(path+".agentType", schema.ErrCodeValidation,
				fmt.Sprintf("agent type %q not in catalog", n.Kind))
		}

		if !n.Model.Valid() {
			result.AddError(path+".model", schema.ErrCodeValidation,
				fmt.Sprintf("invalid model %q: must be one of low, mid, high", n.Model))
		}
	}

	for i, e := range g.Edges {
		if e.ID == "" {
			result.AddWarning(fmt.Sprintf("edges[%d].id", i), schema.ErrCodeValidation, "edge has no id")
		}
	}

	return result
}

package validation

import "github.com/rendis/agentflow/pkg/schema"

// GraphValidator runs the node checks and then the structural check over a
// materialized graph.
type GraphValidator struct {
	kinds KindLookup
}

// NewGraphValidator creates a GraphValidator.
// lookup may be nil to skip agent type checks.
func NewGraphValidator(lookup KindLookup) *GraphValidator {
	return &GraphValidator{kinds: lookup}
}

// Validate returns the aggregated result. Node errors short-circuit the
// structural stage since edges cannot be resolved against broken ids.
func (gv *GraphValidator) Validate(g *schema.Graph) *schema.ValidationResult {
	if g == nil {
		r := &schema.ValidationResult{}
		r.AddError("/", schema.ErrCodeValidation, "graph is nil")
		return r
	}
	if len(g.Nodes) == 0 {
		r := &schema.ValidationResult{}
		r.AddError("nodes", schema.ErrCodeValidation, "graph has no nodes")
		return r
	}

	result := validateNodes(g, gv.kinds)
	if result.Valid() {
		result.Merge(CheckGraph(g))
	}
	return result
}

// ValidateGraph returns the result as a FlowError, or nil when valid.
func (gv *GraphValidator) ValidateGraph(g *schema.Graph) error {
	return gv.Validate(g).ToError()
}

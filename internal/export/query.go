package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rendis/agentflow/internal/expressions"
	"github.com/rendis/agentflow/pkg/schema"
)

var jq = expressions.NewGoJQEngine()

// Query runs a jq expression against the JSON form of plan. A single output
// is returned as is; several outputs are returned as []any.
func Query(ctx context.Context, plan *schema.Plan, expression string) (any, error) {
	if plan == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "plan is required")
	}
	doc, err := toDocument(plan)
	if err != nil {
		return nil, err
	}
	return jq.Evaluate(ctx, expression, doc)
}

// toDocument converts the plan to the generic map form jq operates on.
func toDocument(plan *schema.Plan) (map[string]any, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return doc, nil
}

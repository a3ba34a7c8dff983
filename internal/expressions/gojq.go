package expressions

import (
	"context"

	"github.com/itchyny/gojq"
)

// GoJQEngine answers jq queries over exported plan documents. Input must be
// JSON-shaped: float64 numbers, []any arrays and map[string]any objects.
type GoJQEngine struct {
	cache programs[*gojq.Code]
}

// NewGoJQEngine creates a jq engine with an empty program cache.
func NewGoJQEngine() *GoJQEngine {
	return &GoJQEngine{}
}

// Name returns the engine identifier.
func (e *GoJQEngine) Name() string {
	return "jq"
}

// Evaluate returns nil for a query with no output, the value itself for a
// single output, and a []any of every output otherwise.
func (e *GoJQEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	results, err := e.EvaluateAll(ctx, expression, data)
	if err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// EvaluateAll collects every output of the query, stopping at the first error.
func (e *GoJQEngine) EvaluateAll(ctx context.Context, expression string, data map[string]any) ([]any, error) {
	if expression == "" {
		return nil, emptyExpression(e.Name())
	}

	code, err := e.cache.get(expression, e.compile)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(ctx, data)
	for {
		v, ok := iter.Next()
		if !ok {
			return results, nil
		}
		if err, isErr := v.(error); isErr {
			return nil, evalError(e.Name(), expression, err)
		}
		results = append(results, v)
	}
}

func (e *GoJQEngine) compile(src string) (*gojq.Code, error) {
	query, err := gojq.Parse(src)
	if err != nil {
		return nil, compileError(e.Name(), src, err)
	}
	// $ENV and env see an empty environment.
	code, err := gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, compileError(e.Name(), src, err)
	}
	return code, nil
}

var _ Engine = (*GoJQEngine)(nil)

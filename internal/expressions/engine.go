package expressions

import "context"

// Engine evaluates expressions against a data map.
// Three implementations: CEL (failure predicates), Expr (phase rules), GoJQ (plan queries).
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}

// EvaluateBool evaluates an expression and requires a boolean result.
func EvaluateBool(ctx context.Context, e Engine, expression string, data map[string]any) (bool, error) {
	out, err := e.Evaluate(ctx, expression, data)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, notType(e, expression, "bool", out)
	}
	return b, nil
}

// EvaluateString evaluates an expression and requires a string result.
func EvaluateString(ctx context.Context, e Engine, expression string, data map[string]any) (string, error) {
	out, err := e.Evaluate(ctx, expression, data)
	if err != nil {
		return "", err
	}
	s, ok := out.(string)
	if !ok {
		return "", notType(e, expression, "string", out)
	}
	return s, nil
}

package expressions

import "github.com/rendis/agentflow/pkg/schema"

func emptyExpression(engine string) error {
	return schema.NewErrorf(schema.ErrCodeValidation, "empty %s expression", engine)
}

// compileError reports a parse or type-check failure. The expression travels
// in the details so callers can point at the offending rule.
func compileError(engine, expression string, err error) error {
	return schema.NewErrorf(schema.ErrCodeValidation,
		"%s compile error in %q: %s", engine, expression, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"expression": expression})
}

func evalError(engine, expression string, err error) error {
	return schema.NewErrorf(schema.ErrCodeExecution,
		"%s evaluation failed for %q: %s", engine, expression, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"expression": expression})
}

func notType(e Engine, expression, want string, got any) error {
	return schema.NewErrorf(schema.ErrCodeValidation,
		"%s expression %q must return %s, got %T", e.Name(), expression, want, got).
		WithDetails(map[string]any{"expression": expression})
}

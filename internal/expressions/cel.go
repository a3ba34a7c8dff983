package expressions

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// CELEngine evaluates the simulator's failure predicate once per agent
// attempt. The environment declares three variables:
//   - agent:   map(string, dyn) with id, type, model, step and index
//   - attempt: int, starting at 1
//   - run:     map(string, dyn) with run_id
type CELEngine struct {
	env   *cel.Env
	cache programs[cel.Program]
}

// NewCELEngine builds the predicate environment.
func NewCELEngine() (*CELEngine, error) {
	dynMap := cel.MapType(cel.StringType, cel.DynType)
	env, err := cel.NewEnv(
		cel.Variable("agent", dynMap),
		cel.Variable("attempt", cel.IntType),
		cel.Variable("run", dynMap),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &CELEngine{env: env}, nil
}

// Name returns the engine identifier.
func (e *CELEngine) Name() string {
	return "cel"
}

// Evaluate runs expression against data. Missing agent or run maps are
// empty and a missing attempt is 1.
func (e *CELEngine) Evaluate(_ context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, emptyExpression(e.Name())
	}
	prg, err := e.cache.get(expression, e.compile)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(activation(data))
	if err != nil {
		return nil, evalError(e.Name(), expression, err)
	}
	return out.Value(), nil
}

// Compile type-checks expression and caches the program without running it.
func (e *CELEngine) Compile(expression string) error {
	if expression == "" {
		return emptyExpression(e.Name())
	}
	_, err := e.cache.get(expression, e.compile)
	return err
}

func (e *CELEngine) compile(src string) (cel.Program, error) {
	ast, issues := e.env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, compileError(e.Name(), src, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, compileError(e.Name(), src, err)
	}
	return prg, nil
}

func activation(data map[string]any) map[string]any {
	act := map[string]any{"attempt": int64(1)}
	for _, key := range []string{"agent", "run"} {
		if v, ok := data[key]; ok && v != nil {
			act[key] = v
		} else {
			act[key] = map[string]any{}
		}
	}
	switch v := data["attempt"].(type) {
	case int:
		act["attempt"] = int64(v)
	case int64:
		act["attempt"] = v
	}
	return act
}

var _ Engine = (*CELEngine)(nil)

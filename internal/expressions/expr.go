package expressions

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEngine evaluates expr-lang rules. The synthesizer uses it for phase
// gates like `flags.explore || complexity != "low"` and kind selectors like
// `complexity == "high" ? "explore-high" : "explore"`.
type ExprEngine struct {
	cache programs[*vm.Program]
}

// NewExprEngine creates an expr engine with an empty program cache.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{}
}

// Name returns the engine identifier.
func (e *ExprEngine) Name() string {
	return "expr"
}

// Evaluate runs expression with data as its top-level environment. The first
// call for an expression fixes its environment type, so later calls should
// pass maps of the same shape. Unknown identifiers evaluate to nil.
func (e *ExprEngine) Evaluate(_ context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, emptyExpression(e.Name())
	}
	if data == nil {
		data = map[string]any{}
	}

	prg, err := e.cache.get(expression, func(src string) (*vm.Program, error) {
		p, err := expr.Compile(src, expr.Env(data), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, compileError(e.Name(), src, err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	out, err := vm.Run(prg, data)
	if err != nil {
		return nil, evalError(e.Name(), expression, err)
	}
	return out, nil
}

var _ Engine = (*ExprEngine)(nil)

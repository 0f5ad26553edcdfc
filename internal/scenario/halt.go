package scenario

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/membrango/membrango/sim"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

// haltFunctions are the callables a halt_when expression may use.
var haltFunctions = map[string]struct{}{
	"ms":     {},
	"card":   {},
	"active": {},
}

// HaltExpr is a compiled halt_when expression. Compilation rejects unknown
// variables and functions, so an Eval failure means the expression misused
// the vocabulary dynamically (wrong argument or result types).
type HaltExpr struct {
	expr hcl.Expression
}

// compileHalt validates the expression's vocabulary against what Eval will
// provide. Anything unknown is rejected here, at load time.
func compileHalt(expr hcl.Expression) (*HaltExpr, error) {
	for _, traversal := range expr.Variables() {
		if root := traversal.RootName(); root != "step" {
			return nil, fmt.Errorf("halt_when: unknown variable %q, only step is available", root)
		}
	}

	// Non-native syntax carries no walkable AST; bad calls in such
	// expressions surface at evaluation instead.
	if syn, ok := expr.(hclsyntax.Expression); ok {
		var unknown string
		hclsyntax.Walk(syn, callVisitor(func(name string) {
			if _, ok := haltFunctions[name]; !ok && unknown == "" {
				unknown = name
			}
		}))
		if unknown != "" {
			return nil, fmt.Errorf("halt_when: unknown function %q, available: active, card, ms", unknown)
		}
	}
	return &HaltExpr{expr: expr}, nil
}

// callVisitor reports every function call name in an expression tree.
type callVisitor func(name string)

func (v callVisitor) Enter(node hclsyntax.Node) hcl.Diagnostics {
	if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
		v(call.Name)
	}
	return nil
}

func (v callVisitor) Exit(hclsyntax.Node) hcl.Diagnostics { return nil }

// Eval decides whether the run should halt on the given configuration.
func (h *HaltExpr) Eval(cfg *sim.Configuration) (bool, error) {
	v, diags := h.expr.Value(evalContext(cfg))
	if diags.HasErrors() {
		return false, errors.New(diags.Error())
	}
	if v.IsNull() {
		return false, errors.New("halt_when produced null instead of a boolean")
	}
	if !v.Type().Equals(cty.Bool) {
		return false, fmt.Errorf("halt_when must produce a boolean, got %s", v.Type().FriendlyName())
	}
	return v.True(), nil
}

func evalContext(cfg *sim.Configuration) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"step": cty.NumberIntVal(int64(cfg.Steps())),
		},
		Functions: map[string]function.Function{
			"ms":     countFunc(cfg),
			"card":   cardinalityFunc(cfg),
			"active": activeFunc(cfg),
		},
	}
}

// countFunc exposes the multiplicity of one symbol inside one membrane.
func countFunc(cfg *sim.Configuration) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "membrane", Type: cty.Number},
			{Name: "symbol", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			id, err := membraneID(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			return cty.NumberIntVal(int64(cfg.Multiset(id).Count(args[1].AsString()))), nil
		},
	})
}

// cardinalityFunc exposes the total object count of one membrane.
func cardinalityFunc(cfg *sim.Configuration) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "membrane", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			id, err := membraneID(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			return cty.NumberIntVal(int64(cfg.Multiset(id).Cardinality())), nil
		},
	})
}

// activeFunc reports whether one membrane is still active.
func activeFunc(cfg *sim.Configuration) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "membrane", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			id, err := membraneID(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			return cty.BoolVal(cfg.IsActive(id)), nil
		},
	})
}

func membraneID(v cty.Value) (int, error) {
	var id int
	if err := gocty.FromCtyValue(v, &id); err != nil {
		return 0, fmt.Errorf("membrane id: %w", err)
	}
	return id, nil
}

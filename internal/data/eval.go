package data

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

// Evaluator wraps a CEL environment configured for catalog formulas:
// spawn weights, enemy counts and item filter predicates.
type Evaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator creates a CEL environment with all variables needed by catalog formulas.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		ext.Lists(),
		ext.Math(),

		// Variables available in all formulas
		cel.Variable("item", cel.DynType),
		cel.Variable("self", cel.DynType),
		cel.Variable("cycle", cel.IntType),
		cel.Variable("owned", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile checks a formula without evaluating it and caches the program.
func (ev *Evaluator) Compile(formula string) error {
	_, err := ev.program(formula)
	return err
}

// Eval evaluates a CEL expression against the given variables.
// Missing predeclared variables default to empty values.
func (ev *Evaluator) Eval(formula string, vars map[string]any) (any, error) {
	prg, err := ev.program(formula)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(withDefaults(vars))
	if err != nil {
		return nil, fmt.Errorf("CEL eval error: %w", err)
	}
	return convertRefVal(out), nil
}

// EvalBool evaluates a predicate formula.
func (ev *Evaluator) EvalBool(formula string, vars map[string]any) (bool, error) {
	out, err := ev.Eval(formula, vars)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("formula %q returned %T, want bool", formula, out)
	}
	return b, nil
}

// EvalNumber evaluates a numeric formula, accepting int, uint and double results.
func (ev *Evaluator) EvalNumber(formula string, vars map[string]any) (float64, error) {
	out, err := ev.Eval(formula, vars)
	if err != nil {
		return 0, err
	}
	switch v := out.(type) {
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("formula %q returned %T, want number", formula, out)
}

func (ev *Evaluator) program(formula string) (cel.Program, error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if prg, ok := ev.programs[formula]; ok {
		return prg, nil
	}

	ast, issues := ev.env.Compile(formula)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	prg, err := ev.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	ev.programs[formula] = prg
	return prg, nil
}

func withDefaults(vars map[string]any) map[string]any {
	ctx := map[string]any{
		"item":  map[string]any{},
		"self":  map[string]any{},
		"cycle": int64(0),
		"owned": int64(0),
	}
	for k, v := range vars {
		if i, ok := v.(int); ok {
			v = int64(i) // CEL uses int64 for integers
		}
		ctx[k] = v
	}
	return ctx
}

// convertRefVal converts a CEL ref.Val to a native Go value, recursively handling
// maps and lists so that downstream code can use standard Go type assertions.
func convertRefVal(val ref.Val) any {
	native := val.Value()
	switch v := native.(type) {
	case map[ref.Val]ref.Val:
		result := make(map[string]any, len(v))
		for mk, mv := range v {
			result[fmt.Sprintf("%v", mk.Value())] = convertRefVal(mv)
		}
		return result
	case []ref.Val:
		result := make([]any, len(v))
		for i, rv := range v {
			result[i] = convertRefVal(rv)
		}
		return result
	default:
		return native
	}
}

// StatsToAny converts Stats to map[string]any so CEL can use dynamic typing.
func StatsToAny(s Stats) map[string]any {
	result := make(map[string]any, len(s))
	for k, v := range s {
		result[k] = int64(v)
	}
	return result
}

// StringsToAny converts a string slice to []any for CEL list operations.
func StringsToAny(s []string) []any {
	result := make([]any, len(s))
	for i, v := range s {
		result[i] = v
	}
	return result
}

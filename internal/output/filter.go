package output

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate is a compiled --filter expression such as
// `status == "FAILED"` or `name startsWith "shop"`.
type Predicate struct {
	Source  string
	program *vm.Program
}

// CompileFilter compiles a boolean filter expression. Field names are the
// JSON names of the listed items.
func CompileFilter(source string) (*Predicate, error) {
	if source == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", source, err)
	}
	return &Predicate{Source: source, program: program}, nil
}

// Match evaluates the predicate against one item.
func (p *Predicate) Match(item any) (bool, error) {
	env, err := toEnv(item)
	if err != nil {
		return false, err
	}
	result, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", p.Source, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, expected bool", p.Source, result)
	}
	return b, nil
}

// Filter keeps the items matching source. An empty source keeps everything.
func Filter[T any](items []T, source string) ([]T, error) {
	if source == "" {
		return items, nil
	}
	p, err := CompileFilter(source)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := p.Match(item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// toEnv exposes an item to expressions under its JSON field names.
func toEnv(item any) (map[string]any, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encoding filter input: %w", err)
	}
	env := map[string]any{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("filter input must be an object: %w", err)
	}
	return env, nil
}

package format

import (
	"fmt"
	"time"

	"htmlfmt/internal/ast"
	"htmlfmt/internal/trace"
)

// Rule is one entry of a cascade. A nil Applies matches unconditionally.
type Rule[T any] struct {
	Name string
	// Doc is a one-sentence markdown description shown by `htmlfmt rules`.
	Doc     string
	Applies func(f *formatter, node T, parent ast.Node) bool
	Render  func(f *formatter, node T, depth int) string
}

// Engine selects and runs the first matching rule of one category.
type Engine[T any] struct {
	category trace.Category
	rules    []Rule[T]
	snapshot func(T) any
}

// NewEngine builds a cascade. It panics when the last rule is not an
// unconditional fallback.
func NewEngine[T any](category trace.Category, snapshot func(T) any, rules ...Rule[T]) *Engine[T] {
	if len(rules) == 0 || rules[len(rules)-1].Applies != nil {
		panic(fmt.Sprintf("format: %s rules must end with an unconditional fallback", category))
	}
	for _, r := range rules {
		if r.Render == nil {
			panic(fmt.Sprintf("format: %s rule %q has no Render", category, r.Name))
		}
	}
	return &Engine[T]{category: category, rules: rules, snapshot: snapshot}
}

func (e *Engine[T]) Category() trace.Category { return e.category }

// RuleNames lists the cascade in precedence order.
func (e *Engine[T]) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// RuleDocs lists name and description of each rule in precedence order.
func (e *Engine[T]) RuleDocs() []RuleDoc {
	docs := make([]RuleDoc, len(e.rules))
	for i, r := range e.rules {
		docs[i] = RuleDoc{Name: r.Name, Doc: r.Doc}
	}
	return docs
}

// Apply renders node with the first matching rule.
func (e *Engine[T]) Apply(f *formatter, node T, parent ast.Node, depth int) string {
	for i := range e.rules {
		r := &e.rules[i]
		if r.Applies != nil && !r.Applies(f, node, parent) {
			continue
		}
		if f.tracer.Enabled() {
			var snap any
			if f.snapshots && e.snapshot != nil {
				snap = e.snapshot(node)
			}
			f.record(e.category, r.Name, depth, snap)
		}
		return r.Render(f, node, depth)
	}
	panic(&NoRuleError{Category: e.category, Node: e.describe(node)})
}

func (e *Engine[T]) describe(node T) string {
	if e.snapshot == nil {
		return fmt.Sprintf("%v", node)
	}
	if n, ok := e.snapshot(node).(ast.Node); ok {
		return ast.String(n)
	}
	return fmt.Sprintf("%v", e.snapshot(node))
}

func (f *formatter) record(category trace.Category, rule string, depth int, node any) {
	f.seq++
	f.tracer.Emit(&trace.Record{
		Time:     time.Now(),
		Seq:      f.seq,
		RunID:    f.runID,
		Path:     f.path,
		Rule:     rule,
		Category: category,
		Level:    depth,
		Node:     node,
	})
}

// NoRuleError is the panic value of an exhausted cascade.
type NoRuleError struct {
	Category trace.Category
	Node     string
}

func (e *NoRuleError) Error() string {
	return fmt.Sprintf("format: no %s rule applies to %s", e.Category, e.Node)
}

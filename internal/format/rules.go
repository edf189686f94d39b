package format

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"htmlfmt/internal/ast"
	"htmlfmt/internal/trace"
)

// ruleSet bundles the four cascades. Rules call back into the set through
// the formatter, so the set is built lazily instead of in package vars.
type ruleSet struct {
	tags     *Engine[*ast.Tag]
	attrs    *Engine[[]ast.Attribute]
	text     *Engine[textSite]
	comments *Engine[*ast.Comment]
}

var defaultRules = sync.OnceValue(func() *ruleSet {
	return &ruleSet{
		tags:     NewEngine(trace.CategoryTag, snapshotTag, tagRules()...),
		attrs:    NewEngine(trace.CategoryAttribute, snapshotAttrs, attributeRules()...),
		text:     NewEngine(trace.CategoryText, snapshotText, textRules()...),
		comments: NewEngine(trace.CategoryComment, snapshotComment, commentRules()...),
	}
})

// RuleNames returns every cascade in precedence order, keyed by category.
func RuleNames() map[trace.Category][]string {
	rs := defaultRules()
	return map[trace.Category][]string{
		trace.CategoryTag:       rs.tags.RuleNames(),
		trace.CategoryAttribute: rs.attrs.RuleNames(),
		trace.CategoryText:      rs.text.RuleNames(),
		trace.CategoryComment:   rs.comments.RuleNames(),
	}
}

// RuleDoc describes one rule for listings.
type RuleDoc struct {
	Name string
	Doc  string
}

// RuleDocs is RuleNames with descriptions.
func RuleDocs() map[trace.Category][]RuleDoc {
	rs := defaultRules()
	return map[trace.Category][]RuleDoc{
		trace.CategoryTag:       rs.tags.RuleDocs(),
		trace.CategoryAttribute: rs.attrs.RuleDocs(),
		trace.CategoryText:      rs.text.RuleDocs(),
		trace.CategoryComment:   rs.comments.RuleDocs(),
	}
}

func snapshotTag(t *ast.Tag) any         { return ast.Snapshot(t) }
func snapshotText(s textSite) any        { return ast.Snapshot(s.node) }
func snapshotComment(c *ast.Comment) any { return ast.Snapshot(c) }
func snapshotAttrs(a []ast.Attribute) any {
	return append([]ast.Attribute(nil), a...)
}

// formatter is the state of one printer run.
type formatter struct {
	opts      Options
	rules     *ruleSet
	tracer    trace.Tracer
	snapshots bool
	runID     string
	path      string
	seq       uint64
}

func (f *formatter) indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	if f.opts.UseTabs {
		return strings.Repeat("\t", depth)
	}
	return strings.Repeat(" ", depth*f.opts.IndentWidth)
}

// width is the display width of line when written at depth; a tab counts
// as IndentWidth columns.
func (f *formatter) width(depth int, line string) int {
	return max(depth, 0)*f.opts.IndentWidth + runewidth.StringWidth(line)
}

// root renders the whole document. Root has no parent; its children get
// the Root as theirs.
func (f *formatter) root(r *ast.Root) string {
	var sb strings.Builder
	for _, c := range r.Children {
		sb.WriteString(f.node(c, r, 0))
	}
	out := strings.TrimLeft(sb.String(), "\n")
	out = strings.TrimRight(out, " \t\r\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (f *formatter) node(n ast.Node, parent ast.Node, depth int) string {
	switch v := n.(type) {
	case *ast.Tag:
		return f.rules.tags.Apply(f, v, parent, depth)
	case *ast.Text:
		return f.rules.text.Apply(f, textSite{node: v}, parent, depth)
	case *ast.Comment:
		return f.rules.comments.Apply(f, v, parent, depth)
	case *ast.Root:
		return f.root(v)
	}
	return ""
}

func isRoot(n ast.Node) bool {
	_, ok := n.(*ast.Root)
	return ok
}

package format

import (
	"strings"

	"htmlfmt/internal/ast"
	"htmlfmt/internal/markup"
)

func tagRules() []Rule[*ast.Tag] {
	return []Rule[*ast.Tag]{
		{
			Name: "void",
			Doc:  "Void elements such as `br` and `img` render self-closed as `<br/>` on their own line.",
			Applies: func(_ *formatter, t *ast.Tag, _ ast.Node) bool {
				return markup.IsVoid(t.Name)
			},
			Render: func(f *formatter, t *ast.Tag, depth int) string {
				attrs := f.attributes(t, depth)
				return f.indent(depth) + "<" + t.Name + attrs + "/>\n"
			},
		},
		{
			Name: "childless",
			Doc:  "Elements without children render their open and close tags on one line.",
			Applies: func(_ *formatter, t *ast.Tag, _ ast.Node) bool {
				return len(t.Children) == 0
			},
			Render: func(f *formatter, t *ast.Tag, depth int) string {
				attrs := f.attributes(t, depth)
				return f.indent(depth) + "<" + t.Name + attrs + "></" + t.Name + ">\n"
			},
		},
		{
			Name: "single-text-child",
			Doc:  "An element whose only child is text stays on one line when it fits `max_line_length`; otherwise the text moves to its own indented line.",
			Applies: func(_ *formatter, t *ast.Tag, _ ast.Node) bool {
				if len(t.Children) != 1 {
					return false
				}
				_, ok := t.Children[0].(*ast.Text)
				return ok
			},
			Render: renderSingleText,
		},
		{
			Name:   "default",
			Doc:    "The open tag, each child one level deeper, then the close tag on its own line.",
			Render: renderBlock,
		},
	}
}

func (f *formatter) attributes(t *ast.Tag, depth int) string {
	return f.rules.attrs.Apply(f, t.Attributes, t, depth)
}

func renderSingleText(f *formatter, t *ast.Tag, depth int) string {
	text := t.Children[0].(*ast.Text)
	attrs := f.attributes(t, depth)
	open := "<" + t.Name + attrs + ">"
	closing := "</" + t.Name + ">"

	inline := f.rules.text.Apply(f, textSite{node: text, inline: true}, t, depth)
	line := open + ast.SquashWhitespace(inline) + closing
	if !strings.Contains(attrs, "\n") && f.width(depth, line) <= f.opts.MaxLineLength {
		return f.indent(depth) + line + "\n"
	}

	// With one-per-line attributes the '>' already sits on the last
	// attribute line, so both remaining shapes break the same way.
	var sb strings.Builder
	sb.WriteString(f.indent(depth))
	sb.WriteString(open)
	sb.WriteByte('\n')
	sb.WriteString(f.rules.text.Apply(f, textSite{node: text}, t, depth+1))
	sb.WriteString(f.indent(depth))
	sb.WriteString(closing)
	sb.WriteByte('\n')
	return sb.String()
}

func renderBlock(f *formatter, t *ast.Tag, depth int) string {
	attrs := f.attributes(t, depth)

	var sb strings.Builder
	sb.WriteString(f.indent(depth))
	sb.WriteString("<" + t.Name + attrs + ">\n")
	for _, c := range t.Children {
		sb.WriteString(f.node(c, t, depth+1))
	}
	sb.WriteString(f.indent(depth))
	sb.WriteString("</" + t.Name + ">\n")
	return sb.String()
}

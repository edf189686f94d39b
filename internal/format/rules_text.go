package format

import (
	"strings"

	"htmlfmt/internal/ast"
)

// textSite is a text node plus how its caller places it: inline text is
// written inside its parent's single-line rendering.
type textSite struct {
	node   *ast.Text
	inline bool
}

func textRules() []Rule[textSite] {
	return []Rule[textSite]{
		{
			Name: "pure-newline",
			Doc:  "Text made only of newlines inside an element is dropped.",
			Applies: func(_ *formatter, s textSite, parent ast.Node) bool {
				return onlyNewlines(s.node.Value) && !isRoot(parent)
			},
			Render: func(*formatter, textSite, int) string { return "" },
		},
		{
			Name: "root-level",
			Doc:  "Top-level text is trimmed of spaces; a run of newlines becomes one blank line.",
			Applies: func(_ *formatter, _ textSite, parent ast.Node) bool {
				return isRoot(parent)
			},
			Render: func(_ *formatter, s textSite, _ int) string {
				v := strings.Trim(s.node.Value, " ")
				if onlyNewlines(v) {
					return "\n"
				}
				return v + "\n"
			},
		},
		{
			Name: "same-line",
			Doc:  "Text inside a single-line element is written verbatim.",
			Applies: func(_ *formatter, s textSite, _ ast.Node) bool {
				return s.inline
			},
			Render: func(_ *formatter, s textSite, _ int) string {
				return s.node.Value
			},
		},
		{
			Name: "default",
			Doc:  "Other text is trimmed and written indented on its own line.",
			Render: func(f *formatter, s textSite, depth int) string {
				return f.indent(depth) + strings.TrimSpace(s.node.Value) + "\n"
			},
		},
	}
}

// onlyNewlines reports whether v is one or more '\n'.
func onlyNewlines(v string) bool {
	return v != "" && strings.Trim(v, "\n") == ""
}

package format

import (
	"strings"

	"htmlfmt/internal/ast"
)

func commentRules() []Rule[*ast.Comment] {
	return []Rule[*ast.Comment]{
		{
			Name: "comment",
			Doc:  "Comments are trimmed and written as `<!-- text -->` on their own line.",
			Render: func(f *formatter, c *ast.Comment, depth int) string {
				return f.indent(depth) + "<!-- " + strings.TrimSpace(c.Value) + " -->\n"
			},
		},
	}
}

package format

import (
	"strings"

	"htmlfmt/internal/ast"
)

func attributeRules() []Rule[[]ast.Attribute] {
	return []Rule[[]ast.Attribute]{
		{
			Name: "same-line",
			Doc:  "One attribute, or two that are each shorter than `max_attribute_length`, stay on the tag line.",
			Applies: func(f *formatter, attrs []ast.Attribute, _ ast.Node) bool {
				if len(attrs) == 1 {
					return true
				}
				if len(attrs) >= 3 {
					return false
				}
				for _, a := range attrs {
					if len(attributeToken(a)) >= f.opts.MaxAttributeLength {
						return false
					}
				}
				return true
			},
			Render: func(_ *formatter, attrs []ast.Attribute, _ int) string {
				if len(attrs) == 0 {
					return ""
				}
				tokens := make([]string, len(attrs))
				for i, a := range attrs {
					tokens[i] = attributeToken(a)
				}
				return " " + strings.Join(tokens, " ")
			},
		},
		{
			Name: "one-per-line",
			Doc:  "Every attribute on its own line, one level deeper than the tag.",
			Render: func(f *formatter, attrs []ast.Attribute, depth int) string {
				var sb strings.Builder
				pad := f.indent(depth + 1)
				for _, a := range attrs {
					sb.WriteByte('\n')
					sb.WriteString(pad)
					sb.WriteString(attributeToken(a))
				}
				return sb.String()
			},
		},
	}
}

// attributeToken renders `key` for a directive and `key="value"` otherwise.
// Values arrive entity-decoded, so a value holding '"' switches to single
// quotes, and one holding both quote kinds gets its '"' written as &quot;.
func attributeToken(a ast.Attribute) string {
	if a.Value == nil {
		return a.Key
	}
	v := *a.Value
	if !strings.Contains(v, `"`) {
		return a.Key + `="` + v + `"`
	}
	if !strings.Contains(v, "'") {
		return a.Key + `='` + v + `'`
	}
	return a.Key + `="` + strings.ReplaceAll(v, `"`, "&quot;") + `"`
}

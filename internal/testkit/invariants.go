package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"htmlfmt/internal/ast"
	"htmlfmt/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a built tree:
// 1) every node span is non-empty, points at sf and lies within its content
// 2) every child span is contained in its parent tag span
// 3) siblings appear in source order and do not overlap
func CheckSpanInvariants(root *ast.Root, sf *source.File) error {
	if root == nil || sf == nil {
		return fmt.Errorf("nil root or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	bounds := source.Span{File: sf.ID, Start: 0, End: lenContent}
	return checkChildren(root.Children, bounds, sf.ID)
}

func checkChildren(children []ast.Node, parent source.Span, file source.FileID) error {
	var prev source.Span
	for i, c := range children {
		sp, nested := spanOf(c)
		if sp.End <= sp.Start {
			return fmt.Errorf("empty %s span: %v", c.Kind(), sp)
		}
		if sp.File != file {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", c.Kind(), sp.File, file)
		}
		if !sp.Within(parent) {
			return fmt.Errorf("%s span %v is outside parent span %v", c.Kind(), sp, parent)
		}
		if i > 0 && sp.Start < prev.End {
			return fmt.Errorf("%s span %v overlaps previous sibling %v", c.Kind(), sp, prev)
		}
		prev = sp
		if err := checkChildren(nested, sp, file); err != nil {
			return err
		}
	}
	return nil
}

func spanOf(n ast.Node) (source.Span, []ast.Node) {
	switch v := n.(type) {
	case *ast.Tag:
		return v.Span, v.Children
	case *ast.Text:
		return v.Span, nil
	case *ast.Comment:
		return v.Span, nil
	}
	return source.Span{}, nil
}

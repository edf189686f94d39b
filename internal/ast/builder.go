package ast

import (
	"errors"
	"fmt"
	"strings"

	"htmlfmt/internal/diag"
	"htmlfmt/internal/markup"
	"htmlfmt/internal/source"
)

// The input is parsed behind a synthetic container so that a fragment with
// several top-level nodes still has one parent. The container is never closed
// explicitly; the parser closes it at end of input.
const (
	rootTagName = "htmlfmt-root"
	rootOpen    = "<" + rootTagName + ">"
)

var ErrNoRoot = errors.New("synthetic root missing from parse tree")

// Build parses src and returns its tree. On failure the returned Root is
// empty and the error wraps the parser's error.
func Build(src string) (*Root, error) {
	return build(src, 0, nil)
}

// BuildFile is Build over a FileSet entry; diagnostics carry sf.ID and spans
// into sf.Content.
func BuildFile(sf *source.File, r diag.Reporter) (*Root, error) {
	return build(string(sf.Content), sf.ID, r)
}

func build(src string, file source.FileID, r diag.Reporter) (*Root, error) {
	if r == nil {
		r = diag.NopReporter{}
	}
	b := &builder{file: file, shift: uint32(len(rootOpen))}

	nodes, err := markup.Parse(rootOpen+src, shiftReporter{inner: r, file: file, shift: b.shift})
	if err != nil {
		return &Root{}, fmt.Errorf("build: %w", err)
	}

	root := &Root{}
	found := false
	for _, n := range nodes {
		if n.Kind == markup.KindElement && n.Name == rootTagName && !found {
			found = true
			root.Children = append(root.Children, b.children(n.Children)...)
			continue
		}
		root.Children = append(root.Children, b.children([]*markup.Node{n})...)
	}
	if !found {
		return &Root{}, ErrNoRoot
	}
	return root, nil
}

type builder struct {
	file  source.FileID
	shift uint32
}

func (b *builder) span(start, end uint32) source.Span {
	return source.Span{File: b.file, Start: start, End: end}.ShiftLeft(b.shift)
}

func (b *builder) children(nodes []*markup.Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if c := b.node(n); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// node converts one raw node; it returns nil for dropped text.
func (b *builder) node(n *markup.Node) Node {
	switch n.Kind {
	case markup.KindElement:
		attrs := make([]Attribute, 0, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs = append(attrs, Attr(a.Key, a.Val))
		}
		return &Tag{
			Name:       n.Name,
			Attributes: FindDirectives(n.Raw, attrs),
			Children:   b.children(n.Children),
			Span:       b.span(n.Start, n.End),
		}
	case markup.KindComment:
		return &Comment{Value: strings.TrimSpace(n.Data), Span: b.span(n.Start, n.End)}
	case markup.KindDoctype:
		return &Text{Value: n.Raw, Span: b.span(n.Start, n.End)}
	case markup.KindText:
		v, ok := NormalizeText(n.Raw)
		if !ok {
			return nil
		}
		return &Text{Value: v, Span: b.span(n.Start, n.End)}
	}
	return nil
}

// NormalizeText applies the text rules of the builder: spaces and tabs are
// trimmed from both ends; an empty result or a lone newline is dropped; a
// run made only of whitespace and newlines becomes BlankLine; anything else
// is fully trimmed.
func NormalizeText(raw string) (string, bool) {
	v := strings.Trim(raw, " \t")
	if v == "" || v == "\n" {
		return "", false
	}
	if strings.TrimSpace(v) == "" {
		return BlankLine, true
	}
	return strings.TrimSpace(v), true
}

// shiftReporter maps parser diagnostics back onto the caller's input.
type shiftReporter struct {
	inner diag.Reporter
	file  source.FileID
	shift uint32
}

func (s shiftReporter) Report(d diag.Diagnostic) {
	// the synthetic container is always closed at end of input
	if d.Code == diag.ParseUnclosedTag && d.Primary.Start < s.shift {
		return
	}
	d.Primary = s.place(d.Primary)
	for i := range d.Notes {
		d.Notes[i].Span = s.place(d.Notes[i].Span)
	}
	s.inner.Report(d)
}

func (s shiftReporter) place(sp source.Span) source.Span {
	sp.File = s.file
	return sp.ShiftLeft(s.shift)
}

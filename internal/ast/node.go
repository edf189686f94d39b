package ast

import "htmlfmt/internal/source"

// Node is one of *Root, *Tag, *Text or *Comment.
type Node interface {
	Kind() NodeKind
	node()
}

type NodeKind uint8

const (
	KindRoot NodeKind = iota
	KindTag
	KindText
	KindComment
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindTag:
		return "tag"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	}
	return "unknown"
}

// Root is the synthetic container of a document. There is exactly one per
// build and it is never a child.
type Root struct {
	Children []Node
}

type Tag struct {
	Name       string
	Attributes []Attribute
	Children   []Node
	Span       source.Span
}

// Text carries whitespace-normalised character data. The value "\n\n" is the
// blank-line marker.
type Text struct {
	Value string
	Span  source.Span
}

type Comment struct {
	Value string
	Span  source.Span
}

// Attribute keeps the written key. A nil Value is a directive (valueless
// attribute); a pointer to "" is an explicitly empty value.
type Attribute struct {
	Key   string
	Value *string
}

func (a Attribute) IsDirective() bool { return a.Value == nil }

// Attr builds a keyed attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: &value}
}

// Directive builds a valueless attribute.
func Directive(key string) Attribute {
	return Attribute{Key: key}
}

func (*Root) Kind() NodeKind    { return KindRoot }
func (*Tag) Kind() NodeKind     { return KindTag }
func (*Text) Kind() NodeKind    { return KindText }
func (*Comment) Kind() NodeKind { return KindComment }

func (*Root) node()    {}
func (*Tag) node()     {}
func (*Text) node()    {}
func (*Comment) node() {}

// BlankLine is the single blank separator kept between siblings.
const BlankLine = "\n\n"

// Walk visits n and its descendants depth-first in pre-order. Returning false
// from fn skips the children of that node.
func Walk(n Node, fn func(n, parent Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent Node, fn func(n, parent Node) bool) {
	if !fn(n, parent) {
		return
	}
	var children []Node
	switch v := n.(type) {
	case *Root:
		children = v.Children
	case *Tag:
		children = v.Children
	}
	for _, c := range children {
		walk(c, n, fn)
	}
}

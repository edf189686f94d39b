package ast

import (
	"encoding/json"
)

type jsonAttr struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

type jsonNode struct {
	Type       string     `json:"type"`
	Name       string     `json:"name,omitempty"`
	Attributes []jsonAttr `json:"attributes,omitempty"`
	Children   []Node     `json:"children,omitempty"`
	Value      *string    `json:"value,omitempty"`
}

func attrsJSON(attrs []Attribute) []jsonAttr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]jsonAttr, len(attrs))
	for i, a := range attrs {
		out[i] = jsonAttr(a)
	}
	return out
}

func (r *Root) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{Type: "root", Children: r.Children})
}

func (t *Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{
		Type:       "tag",
		Name:       t.Name,
		Attributes: attrsJSON(t.Attributes),
		Children:   t.Children,
	})
}

func (t *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{Type: "text", Value: &t.Value})
}

func (c *Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{Type: "comment", Value: &c.Value})
}

// Snapshot returns a shallow copy of n with children elided, suitable for
// trace records. Text and Comment are returned as copies.
func Snapshot(n Node) Node {
	switch v := n.(type) {
	case *Root:
		return &Root{}
	case *Tag:
		cp := *v
		cp.Children = nil
		cp.Attributes = append([]Attribute(nil), v.Attributes...)
		return &cp
	case *Text:
		cp := *v
		return &cp
	case *Comment:
		cp := *v
		return &cp
	}
	return nil
}

// String renders n as compact JSON; used in panics and debug output.
func String(n Node) string {
	b, err := json.Marshal(n)
	if err != nil {
		return "<" + n.Kind().String() + ">"
	}
	return string(b)
}

func (a Attribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonAttr(a))
}

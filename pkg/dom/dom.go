// Package dom parses an XML document into a minimal read-only node
// tree: child lookup by name, attribute lookup by name, ordered child
// iteration and character data. Nothing more is exposed.
package dom

import (
	"encoding/xml"
	"io"
	"strings"
)

// Node is one element of a parsed document.
type Node struct {
	name     string
	attrs    []xml.Attr
	children []*Node
	text     strings.Builder
}

// Parse reads an XML document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			node := &Node{name: tok.Name.Local, attrs: tok.Attr}
			if len(stack) == 0 {
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(tok)
			}
		}
	}

	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// Name returns the element's local name (namespace prefixes ignored).
func (n *Node) Name() string {
	return n.name
}

// Attr returns the named attribute's value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child element with the given local name, or
// nil if there is none.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Children returns all child elements in document order.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildrenNamed returns all child elements with the given local name,
// in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the element's direct character data, whitespace-trimmed.
func (n *Node) Text() string {
	return strings.TrimSpace(n.text.String())
}

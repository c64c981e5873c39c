// Package xmlwalk is a small typed XML tree, an idiomatic replacement
// for the Python source's reliance on forgiving attribute lookups like
// firstChild.data. Every extraction returns an (value, ok) pair so
// grammar bootstrap can fail cleanly instead of crashing on a nil
// child when the device description omits an expected node.
package xmlwalk

import (
	"encoding/xml"
	"io"
	"strings"
)

// Node is one element in the parsed tree, along with its direct text
// content and children.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	text     strings.Builder
}

// Parse decodes an XML document into a Node tree rooted at the
// document's single top-level element.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// Text returns the node's direct character data, trimmed, and whether
// it was non-empty.
func (n *Node) Text() (string, bool) {
	s := strings.TrimSpace(n.text.String())
	if s == "" {
		return "", false
	}
	return s, true
}

// Child returns the first direct child with the given tag.
func (n *Node) Child(tag string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c, true
		}
	}
	return nil, false
}

// ChildText is a convenience for Child(tag).Text(), the most common
// extraction: a single required leaf value under this node.
func (n *Node) ChildText(tag string) (string, bool) {
	c, ok := n.Child(tag)
	if !ok {
		return "", false
	}
	return c.Text()
}

// Find returns the first descendant (depth-first, including n itself)
// with the given tag.
func (n *Node) Find(tag string) (*Node, bool) {
	if n.Tag == tag {
		return n, true
	}
	for _, c := range n.Children {
		if found, ok := c.Find(tag); ok {
			return found, true
		}
	}
	return nil, false
}

// FindAll returns every descendant (including n itself) with the given
// tag, in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	if n.Tag == tag {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, c.FindAll(tag)...)
	}
	return out
}

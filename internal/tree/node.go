// Package tree mirrors a page into a pruned, accessibility-style node tree
// whose leaves are the elements a caller can act on.
package tree

import (
	"strings"

	"github.com/polzovatel/mmid-page-model/internal/describe"
)

const (
	// RootRole is the role of the synthetic document node.
	RootRole = "WebArea"
	// RootTag is the tag of the synthetic document node.
	RootTag = "document"

	errorPrefix = "Error: "
)

// Node is one entry of the page tree. Only identified nodes carry an MMID
// and Attributes.
type Node struct {
	Role       string               `json:"role" yaml:"role"`
	Tag        string               `json:"tag" yaml:"tag"`
	Name       string               `json:"name" yaml:"name"`
	MMID       *int                 `json:"mmid,omitempty" yaml:"mmid,omitempty"`
	Attributes *describe.Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   []*Node              `json:"children,omitempty" yaml:"children,omitempty"`
}

// ErrorRoot is the sentinel returned when the page could not be read.
func ErrorRoot(err error) *Node {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return &Node{Role: RootRole, Tag: RootTag, Name: errorPrefix + msg}
}

// IsError reports whether n is the sentinel produced by ErrorRoot.
func (n *Node) IsError() bool {
	return n != nil && n.Tag == RootTag && n.MMID == nil && len(n.Children) == 0 &&
		strings.HasPrefix(n.Name, errorPrefix)
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Leaves returns the childless nodes below n in document order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c != n && len(c.Children) == 0 {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Find returns the node carrying identifier id.
func (n *Node) Find(id int) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.MMID != nil && *c.MMID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// IDs returns every identifier in the tree in document order.
func (n *Node) IDs() []int {
	var out []int
	n.Walk(func(c *Node) bool {
		if c.MMID != nil {
			out = append(out, *c.MMID)
		}
		return true
	})
	return out
}

package parser

import (
	"fmt"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/lang"
)

// Node is a language-agnostic syntax tree node. Nodes are built once per
// parse and never mutated afterwards, so a tree can be shared read-only
// across concurrently evaluated rules.
type Node struct {
	// Kind is the grammar's node type tag (e.g. "call_expression")
	Kind string

	// Span locates the node in the source. Lines/columns are 1-based.
	Span domain.Span

	// Children are the named child nodes, in source order
	Children []*Node

	// Parent is nil for the root
	Parent *Node

	// Text is the source slice for leaf nodes; inner node text is read
	// through Tree.NodeText to avoid duplicating the file content
	Text string

	// Error marks error or missing nodes from a recoverable parse
	Error bool
}

// Tree is a parsed source file: the root node plus the content it spans
type Tree struct {
	Path     string
	Language lang.Language
	Root     *Node
	Source   []byte

	// HasErrors is true when the parse recovered past syntax errors;
	// the tree is still analyzable
	HasErrors bool
}

// NodeText returns the source text covered by a node's span
func (t *Tree) NodeText(n *Node) string {
	if n == nil {
		return ""
	}
	start, end := n.Span.StartByte, n.Span.EndByte
	if int(end) > len(t.Source) || start > end {
		return ""
	}
	return string(t.Source[start:end])
}

// Walk traverses the tree depth-first in pre-order. If the visitor returns
// false, the node's subtree is skipped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("%s at %s", n.Kind, n.Span)
}

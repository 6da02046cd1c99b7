package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// NodeKey identifies a node within a single tree without mutating the
// parser-owned node. The byte span plus node type is unique in practice:
// wrapper nodes sharing a span always differ in type.
type NodeKey struct {
	StartByte uint32
	EndByte   uint32
	Type      string
}

// KeyOf derives the identity key for a node.
func KeyOf(node *sitter.Node) NodeKey {
	return NodeKey{
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
		Type:      node.Type(),
	}
}

// ParentIndex is a side table mapping each node to its immediate parent.
// It is built in one top-down pass and scoped to a single file analysis;
// it is never shared across files.
type ParentIndex struct {
	parents map[NodeKey]*sitter.Node
}

// IndexParents records the immediate parent of every node under root.
// It must run before any upward lookup.
func IndexParents(root *sitter.Node) *ParentIndex {
	idx := &ParentIndex{parents: make(map[NodeKey]*sitter.Node)}
	if root == nil {
		return idx
	}
	Walk(root, nil, func(node *sitter.Node, _ []byte) bool {
		for i := range int(node.ChildCount()) {
			idx.parents[KeyOf(node.Child(i))] = node
		}
		return true
	})
	return idx
}

// Parent returns the immediate parent of a node, or nil for the root
// and for nodes outside the indexed tree.
func (idx *ParentIndex) Parent(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	return idx.parents[KeyOf(node)]
}

// Len returns the number of parent links recorded.
func (idx *ParentIndex) Len() int {
	return len(idx.parents)
}

// EnclosingClass walks parent links until it reaches a class definition.
// Returns nil when the chain is exhausted without finding one.
func (idx *ParentIndex) EnclosingClass(node *sitter.Node) *sitter.Node {
	for p := idx.Parent(node); p != nil; p = idx.Parent(p) {
		if p.Type() == NodeClassDefinition {
			return p
		}
	}
	return nil
}

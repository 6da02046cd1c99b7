package parser

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// VisitFault records a failure visiting a single node. Faults are
// per-node and never abort the traversal.
type VisitFault struct {
	Node    *sitter.Node
	Message string
}

// VisitFunc visits one node. A non-nil error (or a panic) is recorded
// as a fault for that node only.
type VisitFunc func(node *sitter.Node) error

// TraverseIsolated visits every node under root exactly once,
// depth-first. Failures of the visit function are isolated to the
// offending node; the rest of the tree is still visited. The full
// traversal always completes.
func TraverseIsolated(root *sitter.Node, visit VisitFunc) []VisitFault {
	var faults []VisitFault
	if root == nil {
		return faults
	}

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if err := visitOne(node, visit); err != nil {
			faults = append(faults, VisitFault{Node: node, Message: err.Error()})
		}
		for i := range int(node.ChildCount()) {
			walk(node.Child(i))
		}
	}
	walk(root)

	return faults
}

// visitOne invokes visit for a single node, converting panics into
// ordinary errors so one bad node cannot take down the walk.
func visitOne(node *sitter.Node, visit VisitFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("visit panicked on %s node: %v", node.Type(), r)
		}
	}()
	return visit(node)
}

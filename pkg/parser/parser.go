// Package parser wraps tree-sitter for parsing Python source files.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrSyntax indicates the source could not be parsed into a valid tree.
var ErrSyntax = errors.New("syntax error")

// Parser wraps a tree-sitter parser configured for Python.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and the source it was built from.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// ParseFile reads and parses a Python source file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !IsPythonFile(path) {
		return nil, fmt.Errorf("not a python file: %s", path)
	}
	return p.Parse(source, path)
}

// Parse parses Python source code. A tree containing error or missing
// nodes is treated as a parse failure: callers get no partial tables.
func (p *Parser) Parse(source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty tree", ErrSyntax)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, firstErrorLocation(root))
	}

	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// firstErrorLocation finds the position of the first error node for
// the failure message.
func firstErrorLocation(root *sitter.Node) string {
	loc := "unknown location"
	Walk(root, nil, func(node *sitter.Node, _ []byte) bool {
		if node.Type() == "ERROR" || node.IsMissing() {
			loc = fmt.Sprintf("line %d", node.StartPoint().Row+1)
			return false
		}
		return true
	})
	return loc
}

// IsPythonFile reports whether a path looks like a Python source file.
func IsPythonFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return true
	}
	return false
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits tree nodes. Returning false
// stops descent into the node's children.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits nodes with the node type pre-cached to avoid
// repeated CGO calls.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the tree depth-first calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the tree with cached node types.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// FindNodes returns all nodes matching a predicate in depth-first order.
func FindNodes(root *sitter.Node, source []byte, predicate func(*sitter.Node) bool) []*sitter.Node {
	var results []*sitter.Node
	Walk(root, source, func(node *sitter.Node, source []byte) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindNodesByType returns all nodes of a specific type in depth-first order.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	return FindNodes(root, source, func(n *sitter.Node) bool {
		return n.Type() == nodeType
	})
}

// GetNodeText extracts the source text for a node. Returns empty string
// if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// LineRange returns the 1-based start and end lines of a node, or (0, 0)
// for a nil node.
func LineRange(node *sitter.Node) (uint32, uint32) {
	if node == nil {
		return 0, 0
	}
	return node.StartPoint().Row + 1, node.EndPoint().Row + 1
}

// LineCount returns the number of source lines a node spans, or 0 when
// the range is unknown.
func LineCount(node *sitter.Node) int {
	start, end := LineRange(node)
	if start == 0 || end < start {
		return 0
	}
	return int(end - start + 1)
}

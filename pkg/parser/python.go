package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Grammar node kinds for the Python tree-sitter grammar. Only the kinds
// the analyzers dispatch on are named here.
const (
	NodeModule              = "module"
	NodeClassDefinition     = "class_definition"
	NodeFunctionDefinition  = "function_definition"
	NodeDecoratedDefinition = "decorated_definition"
	NodeBlock               = "block"
	NodeExpressionStatement = "expression_statement"
	NodeAssignment          = "assignment"
	NodeAugmentedAssignment = "augmented_assignment"
	NodeIfStatement         = "if_statement"
	NodeElifClause          = "elif_clause"
	NodeElseClause          = "else_clause"
	NodeWhileStatement      = "while_statement"
	NodeForStatement        = "for_statement"
	NodeTryStatement        = "try_statement"
	NodeExceptClause        = "except_clause"
	NodeBooleanOperator     = "boolean_operator"
	NodeReturnStatement     = "return_statement"
	NodeCall                = "call"
	NodeAttribute           = "attribute"
	NodeIdentifier          = "identifier"
	NodeParameters          = "parameters"
	NodeArgumentList        = "argument_list"
	NodeString              = "string"
	NodeComment             = "comment"
)

// Grammar field names used with ChildByFieldName.
const (
	FieldName         = "name"
	FieldSuperclasses = "superclasses"
	FieldBody         = "body"
	FieldParameters   = "parameters"
	FieldLeft         = "left"
	FieldRight        = "right"
	FieldObject       = "object"
	FieldAttribute    = "attribute"
)

// ResolveDottedName renders an identifier or attribute chain as a dotted
// name, e.g. "self.config.timeout". Returns "" for other node shapes,
// including chains interrupted by calls or subscripts.
func ResolveDottedName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case NodeIdentifier:
		return GetNodeText(node, source)
	case NodeAttribute:
		base := ResolveDottedName(node.ChildByFieldName(FieldObject), source)
		attr := GetNodeText(node.ChildByFieldName(FieldAttribute), source)
		if base == "" || attr == "" {
			return ""
		}
		return base + "." + attr
	}
	return ""
}

// DottedPrefixes expands a dotted name into all of its prefixes, shortest
// first: "a.b.c" yields ["a", "a.b", "a.b.c"].
func DottedPrefixes(dotted string) []string {
	if dotted == "" {
		return nil
	}
	parts := strings.Split(dotted, ".")
	prefixes := make([]string, 0, len(parts))
	for i := range parts {
		prefixes = append(prefixes, strings.Join(parts[:i+1], "."))
	}
	return prefixes
}

// Docstring returns the docstring of a class or function body block, or
// "" when the first statement is not a string expression.
func Docstring(body *sitter.Node, source []byte) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != NodeExpressionStatement || first.NamedChildCount() == 0 {
		return ""
	}
	expr := first.NamedChild(0)
	if expr.Type() != NodeString && expr.Type() != "concatenated_string" {
		return ""
	}
	return StripStringQuotes(GetNodeText(expr, source))
}

// CountParameters counts the formal parameters of a function definition,
// including self but excluding *args and **kwargs splats and bare
// separator markers.
func CountParameters(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := range int(params.NamedChildCount()) {
		switch params.NamedChild(i).Type() {
		case NodeIdentifier, "typed_parameter", "default_parameter", "typed_default_parameter":
			count++
		}
	}
	return count
}

// StripStringQuotes removes string prefixes (r, b, f, u in any case and
// combination) and the surrounding quote characters, handling both
// single and triple quoting. Text that does not look quoted is returned
// unchanged.
func StripStringQuotes(text string) string {
	trimmed := strings.TrimLeft(text, "rRbBfFuU")
	for _, quote := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(trimmed, quote) && strings.HasSuffix(trimmed, quote) && len(trimmed) >= 2*len(quote) {
			return trimmed[len(quote) : len(trimmed)-len(quote)]
		}
	}
	return text
}

// DefinitionName extracts the name of a class or function definition,
// unwrapping decorated definitions to the inner node.
func DefinitionName(node *sitter.Node, source []byte) string {
	node = UnwrapDecorated(node)
	if node == nil {
		return ""
	}
	return GetNodeText(node.ChildByFieldName(FieldName), source)
}

// UnwrapDecorated returns the definition wrapped by a decorated_definition
// node, or the node itself when it is not decorated.
func UnwrapDecorated(node *sitter.Node) *sitter.Node {
	if node == nil || node.Type() != NodeDecoratedDefinition {
		return node
	}
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if child.Type() == NodeClassDefinition || child.Type() == NodeFunctionDefinition {
			return child
		}
	}
	return node
}

package parser

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// LiteralKind discriminates the closed set of literal shapes the
// decoder understands.
type LiteralKind int

const (
	LiteralUnknown LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralText
	LiteralBool
	LiteralNone
	LiteralSequence
	LiteralMapping
)

// String returns the kind name used for grouping and display.
func (k LiteralKind) String() string {
	switch k {
	case LiteralInt:
		return "int"
	case LiteralFloat:
		return "float"
	case LiteralText:
		return "text"
	case LiteralBool:
		return "bool"
	case LiteralNone:
		return "none"
	case LiteralSequence:
		return "sequence"
	case LiteralMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// LiteralEntry is a key/value pair of a mapping literal.
type LiteralEntry struct {
	Key   Literal
	Value Literal
}

// Literal is a tagged variant holding a decoded Python literal value.
// Only the field matching Kind is meaningful.
type Literal struct {
	Kind    LiteralKind
	Int     int64
	Float   float64
	Text    string
	Bool    bool
	Items   []Literal
	Entries []LiteralEntry
}

// DecodeLiteral decodes a literal expression node into a Literal. The
// function is total: node shapes it does not understand decode to
// LiteralUnknown rather than failing.
func DecodeLiteral(node *sitter.Node, source []byte) Literal {
	if node == nil {
		return Literal{Kind: LiteralUnknown}
	}

	switch node.Type() {
	case "integer":
		text := normalizeNumeric(GetNodeText(node, source))
		if v, err := strconv.ParseInt(text, 0, 64); err == nil {
			return Literal{Kind: LiteralInt, Int: v}
		}
		// Out-of-range or exotic integer forms fall back to float.
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return Literal{Kind: LiteralFloat, Float: v}
		}
		return Literal{Kind: LiteralUnknown}
	case "float":
		text := normalizeNumeric(GetNodeText(node, source))
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return Literal{Kind: LiteralFloat, Float: v}
		}
		return Literal{Kind: LiteralUnknown}
	case "string", "concatenated_string":
		return Literal{Kind: LiteralText, Text: StripStringQuotes(GetNodeText(node, source))}
	case "true":
		return Literal{Kind: LiteralBool, Bool: true}
	case "false":
		return Literal{Kind: LiteralBool, Bool: false}
	case "none":
		return Literal{Kind: LiteralNone}
	case "list", "tuple", "set":
		lit := Literal{Kind: LiteralSequence}
		for i := range int(node.NamedChildCount()) {
			lit.Items = append(lit.Items, DecodeLiteral(node.NamedChild(i), source))
		}
		return lit
	case "dictionary":
		lit := Literal{Kind: LiteralMapping}
		for i := range int(node.NamedChildCount()) {
			pair := node.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			lit.Entries = append(lit.Entries, LiteralEntry{
				Key:   DecodeLiteral(pair.ChildByFieldName("key"), source),
				Value: DecodeLiteral(pair.ChildByFieldName("value"), source),
			})
		}
		return lit
	default:
		return Literal{Kind: LiteralUnknown}
	}
}

// Display renders a literal for human-readable reports.
func (l Literal) Display() string {
	switch l.Kind {
	case LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case LiteralFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LiteralText:
		return fmt.Sprintf("%q", l.Text)
	case LiteralBool:
		return strconv.FormatBool(l.Bool)
	case LiteralNone:
		return "None"
	case LiteralSequence:
		parts := make([]string, len(l.Items))
		for i, item := range l.Items {
			parts[i] = item.Display()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case LiteralMapping:
		parts := make([]string, len(l.Entries))
		for i, e := range l.Entries {
			parts[i] = e.Key.Display() + ": " + e.Value.Display()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<unknown>"
	}
}

// IsNumeric reports whether the literal holds an int or float value.
func (l Literal) IsNumeric() bool {
	return l.Kind == LiteralInt || l.Kind == LiteralFloat
}

// AsFloat returns the numeric value of an int or float literal.
func (l Literal) AsFloat() float64 {
	if l.Kind == LiteralInt {
		return float64(l.Int)
	}
	return l.Float
}

// normalizeNumeric strips underscores used as digit separators.
func normalizeNumeric(text string) string {
	return strings.ReplaceAll(text, "_", "")
}

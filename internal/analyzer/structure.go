// Package analyzer implements the per-file structural and complexity
// analyses plus project-level aggregation.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jspahr/pylens/pkg/models"
	"github.com/jspahr/pylens/pkg/parser"
)

// StructureAnalyzer extracts class structures and relationships from
// Python files.
type StructureAnalyzer struct {
	parser *parser.Parser
}

// NewStructureAnalyzer creates a new structure analyzer.
func NewStructureAnalyzer() *StructureAnalyzer {
	return &StructureAnalyzer{parser: parser.New()}
}

// Close releases parser resources.
func (a *StructureAnalyzer) Close() {
	a.parser.Close()
}

// AnalyzeFile analyzes a Python file for class structures.
func (a *StructureAnalyzer) AnalyzeFile(path string) *models.StructureAnalysis {
	result, err := a.parser.ParseFile(path)
	if err != nil {
		return models.FailedStructureAnalysis(path, err.Error())
	}
	return a.analyze(result)
}

// AnalyzeSource analyzes in-memory Python source.
func (a *StructureAnalyzer) AnalyzeSource(source []byte, path string) *models.StructureAnalysis {
	result, err := a.parser.Parse(source, path)
	if err != nil {
		return models.FailedStructureAnalysis(path, err.Error())
	}
	return a.analyze(result)
}

func (a *StructureAnalyzer) analyze(parsed *parser.ParseResult) *models.StructureAnalysis {
	return AnalyzeParsedStructure(parsed)
}

// AnalyzeParsedStructure runs the extraction passes on an existing
// parse result. Any panic is converted into a failure result at this
// boundary so one bad file never takes down a batch run.
func AnalyzeParsedStructure(parsed *parser.ParseResult) (analysis *models.StructureAnalysis) {
	analysis = models.NewStructureAnalysis(parsed.Path)
	defer func() {
		if r := recover(); r != nil {
			analysis = models.FailedStructureAnalysis(parsed.Path, fmt.Sprintf("analysis error: %v", r))
		}
	}()

	root := parsed.Tree.RootNode()
	collectClasses(root, parsed.Source, analysis)
	analyzeRelationships(analysis)
	buildInheritanceTree(analysis)

	return analysis
}

// collectClasses records every class definition in discovery order,
// including classes nested in functions or other classes.
func collectClasses(root *sitter.Node, source []byte, analysis *models.StructureAnalysis) {
	for _, node := range parser.FindNodesByType(root, source, parser.NodeClassDefinition) {
		name := parser.GetNodeText(node.ChildByFieldName(parser.FieldName), source)
		if name == "" {
			continue
		}

		body := node.ChildByFieldName(parser.FieldBody)
		start, end := parser.LineRange(node)

		info := &models.ClassInfo{
			Name:         name,
			Bases:        classBases(node, source),
			Methods:      classMethods(body, source),
			InstanceVars: classVars(body, source),
			Dependencies: []string{},
			LineCount:    parser.LineCount(node),
			StartLine:    start,
			EndLine:      end,
			Docstring:    parser.Docstring(body, source),
		}

		if _, seen := analysis.Classes[name]; !seen {
			analysis.ClassOrder = append(analysis.ClassOrder, name)
		}
		analysis.Classes[name] = info
	}
}

// classBases extracts declared base names, dotted bases included.
// Keyword arguments in the class header (metaclass=...) resolve to ""
// and are skipped.
func classBases(class *sitter.Node, source []byte) []string {
	bases := []string{}
	supers := class.ChildByFieldName(parser.FieldSuperclasses)
	if supers == nil {
		return bases
	}
	for i := range int(supers.NamedChildCount()) {
		if name := parser.ResolveDottedName(supers.NamedChild(i), source); name != "" {
			bases = append(bases, name)
		}
	}
	return bases
}

// classMethods returns the names of functions declared directly in the
// class body, in declaration order. Decorated methods count.
func classMethods(body *sitter.Node, source []byte) []string {
	methods := []string{}
	for _, def := range bodyFunctions(body) {
		if name := parser.GetNodeText(def.ChildByFieldName(parser.FieldName), source); name != "" {
			methods = append(methods, name)
		}
	}
	return methods
}

// bodyFunctions returns the function definitions declared directly in a
// block, unwrapping decorated definitions.
func bodyFunctions(body *sitter.Node) []*sitter.Node {
	var defs []*sitter.Node
	if body == nil {
		return defs
	}
	for i := range int(body.NamedChildCount()) {
		child := parser.UnwrapDecorated(body.NamedChild(i))
		if child.Type() == parser.NodeFunctionDefinition {
			defs = append(defs, child)
		}
	}
	return defs
}

// classVars collects names assigned directly in the class body. Only
// plain identifier targets count; tuple unpacking and attribute targets
// are ignored.
func classVars(body *sitter.Node, source []byte) []string {
	seen := make(map[string]bool)
	if body != nil {
		for i := range int(body.NamedChildCount()) {
			stmt := body.NamedChild(i)
			if stmt.Type() != parser.NodeExpressionStatement {
				continue
			}
			for j := range int(stmt.NamedChildCount()) {
				expr := stmt.NamedChild(j)
				if expr.Type() == parser.NodeAssignment {
					collectAssignTargets(expr, source, seen)
				}
			}
		}
	}

	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// collectAssignTargets records identifier targets of an assignment,
// following chained assignments like a = b = 1.
func collectAssignTargets(assign *sitter.Node, source []byte, seen map[string]bool) {
	left := assign.ChildByFieldName(parser.FieldLeft)
	if left != nil && left.Type() == parser.NodeIdentifier {
		seen[parser.GetNodeText(left, source)] = true
	}
	right := assign.ChildByFieldName(parser.FieldRight)
	if right != nil && right.Type() == parser.NodeAssignment {
		collectAssignTargets(right, source, seen)
	}
}

// analyzeRelationships derives each class's dependency set: other
// classes whose name occurs inside one of its method names, plus its
// declared bases. A class never depends on itself.
func analyzeRelationships(analysis *models.StructureAnalysis) {
	for _, name := range analysis.ClassOrder {
		info := analysis.Classes[name]
		deps := make(map[string]bool)

		for _, method := range info.Methods {
			for _, other := range analysis.ClassOrder {
				if other != name && strings.Contains(method, other) {
					deps[other] = true
				}
			}
		}
		for _, base := range info.Bases {
			deps[base] = true
		}

		sorted := make([]string, 0, len(deps))
		for dep := range deps {
			sorted = append(sorted, dep)
		}
		sort.Strings(sorted)

		info.Dependencies = sorted
		analysis.Relationships[name] = sorted
	}
}

// buildInheritanceTree maps every class, and every referenced base, to
// its direct local subclasses. Every known class gets an entry even
// with no subclasses.
func buildInheritanceTree(analysis *models.StructureAnalysis) {
	ensure := func(name string) {
		if _, ok := analysis.InheritanceTree[name]; !ok {
			analysis.InheritanceTree[name] = []string{}
			analysis.TreeOrder = append(analysis.TreeOrder, name)
		}
	}

	for _, name := range analysis.ClassOrder {
		ensure(name)
		for _, base := range analysis.Classes[name].Bases {
			ensure(base)
			analysis.InheritanceTree[base] = append(analysis.InheritanceTree[base], name)
		}
	}
}

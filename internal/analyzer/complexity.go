package analyzer

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jspahr/pylens/pkg/models"
	"github.com/jspahr/pylens/pkg/parser"
)

// branchingTypes are the constructs that add a decision point and a
// nesting level. An elif clause counts as its own branch.
var branchingTypes = map[string]bool{
	parser.NodeIfStatement:    true,
	parser.NodeElifClause:     true,
	parser.NodeWhileStatement: true,
	parser.NodeForStatement:   true,
	parser.NodeTryStatement:   true,
}

// ComplexityAnalyzer computes per-method and per-class complexity
// metrics and flags areas exceeding the configured thresholds.
type ComplexityAnalyzer struct {
	parser     *parser.Parser
	thresholds models.Thresholds
}

// NewComplexityAnalyzer creates an analyzer with default thresholds.
func NewComplexityAnalyzer() *ComplexityAnalyzer {
	return NewComplexityAnalyzerWithThresholds(models.DefaultThresholds())
}

// NewComplexityAnalyzerWithThresholds creates an analyzer with custom
// thresholds.
func NewComplexityAnalyzerWithThresholds(t models.Thresholds) *ComplexityAnalyzer {
	return &ComplexityAnalyzer{
		parser:     parser.New(),
		thresholds: t,
	}
}

// Close releases parser resources.
func (a *ComplexityAnalyzer) Close() {
	a.parser.Close()
}

// AnalyzeFile analyzes complexity for a single file.
func (a *ComplexityAnalyzer) AnalyzeFile(path string) *models.ComplexityAnalysis {
	result, err := a.parser.ParseFile(path)
	if err != nil {
		return models.FailedComplexityAnalysis(path, err.Error())
	}
	return a.analyze(result)
}

// AnalyzeSource analyzes in-memory Python source.
func (a *ComplexityAnalyzer) AnalyzeSource(source []byte, path string) *models.ComplexityAnalysis {
	result, err := a.parser.Parse(source, path)
	if err != nil {
		return models.FailedComplexityAnalysis(path, err.Error())
	}
	return a.analyze(result)
}

func (a *ComplexityAnalyzer) analyze(parsed *parser.ParseResult) *models.ComplexityAnalysis {
	return AnalyzeParsedComplexity(parsed, a.thresholds)
}

// AnalyzeParsedComplexity runs the metric passes on an existing parse
// result with a panic boundary: a failure in any pass yields a failure
// result instead of aborting the caller.
func AnalyzeParsedComplexity(parsed *parser.ParseResult, thresholds models.Thresholds) (analysis *models.ComplexityAnalysis) {
	analysis = models.NewComplexityAnalysis(parsed.Path)
	defer func() {
		if r := recover(); r != nil {
			analysis = models.FailedComplexityAnalysis(parsed.Path, fmt.Sprintf("analysis error: %v", r))
		}
	}()

	root := parsed.Tree.RootNode()

	analysis.GlobalScopeComplexity = scopeComplexity(root, parsed.Source)

	for _, node := range parser.FindNodesByType(root, parsed.Source, parser.NodeClassDefinition) {
		class := analyzeClass(node, parsed.Source)
		if class.Name == "" {
			continue
		}
		if _, seen := analysis.Classes[class.Name]; !seen {
			analysis.ClassOrder = append(analysis.ClassOrder, class.Name)
		}
		analysis.Classes[class.Name] = class
	}

	analysis.TotalComplexity = totalComplexity(analysis, thresholds)
	classifyRisks(analysis, thresholds)

	return analysis
}

// scopeComplexity scores a whole scope: one point per control-flow
// statement, one per boolean combinator. Unlike method cyclomatic
// complexity there is no baseline and a try block scores one point
// regardless of handler count.
func scopeComplexity(node *sitter.Node, source []byte) float64 {
	var score float64
	parser.WalkTyped(node, source, func(_ *sitter.Node, nodeType string, _ []byte) bool {
		if branchingTypes[nodeType] || nodeType == parser.NodeBooleanOperator {
			score++
		}
		return true
	})
	return score
}

// analyzeClass computes the metrics for one class definition.
func analyzeClass(node *sitter.Node, source []byte) *models.ClassComplexity {
	body := node.ChildByFieldName(parser.FieldBody)

	class := &models.ClassComplexity{
		Name:             parser.GetNodeText(node.ChildByFieldName(parser.FieldName), source),
		TotalLineCount:   parser.LineCount(node),
		Methods:          make(map[string]models.MethodComplexity),
		CouplingScore:    couplingScore(node, source),
		InheritanceDepth: len(classBases(node, source)),
	}

	for _, def := range bodyFunctions(body) {
		method := analyzeMethod(def, source)
		if method.Name == "" {
			continue
		}
		if _, seen := class.Methods[method.Name]; !seen {
			class.MethodOrder = append(class.MethodOrder, method.Name)
		}
		class.Methods[method.Name] = method
	}

	class.MethodCount = len(class.Methods)
	class.InstanceVarCount = len(classVarNames(body, source))

	return class
}

// classVarNames collects distinct names assigned directly in the class
// body, resolving dotted attribute targets as well as identifiers.
func classVarNames(body *sitter.Node, source []byte) map[string]bool {
	seen := make(map[string]bool)
	if body == nil {
		return seen
	}
	for i := range int(body.NamedChildCount()) {
		stmt := body.NamedChild(i)
		if stmt.Type() != parser.NodeExpressionStatement {
			continue
		}
		for j := range int(stmt.NamedChildCount()) {
			expr := stmt.NamedChild(j)
			for expr != nil && expr.Type() == parser.NodeAssignment {
				if name := parser.ResolveDottedName(expr.ChildByFieldName(parser.FieldLeft), source); name != "" {
					seen[name] = true
				}
				expr = expr.ChildByFieldName(parser.FieldRight)
			}
		}
	}
	return seen
}

// analyzeMethod computes the metrics for one method definition.
func analyzeMethod(node *sitter.Node, source []byte) models.MethodComplexity {
	localVars := make(map[string]bool)
	returnCount := 0

	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case parser.NodeAssignment, parser.NodeAugmentedAssignment, parser.NodeForStatement:
			collectStoreTargets(n.ChildByFieldName(parser.FieldLeft), src, localVars)
		case parser.NodeReturnStatement:
			returnCount++
		}
		return true
	})

	return models.MethodComplexity{
		Name:           parser.GetNodeText(node.ChildByFieldName(parser.FieldName), source),
		Cyclomatic:     cyclomaticComplexity(node, source),
		LineCount:      parser.LineCount(node),
		ParameterCount: parser.CountParameters(node.ChildByFieldName(parser.FieldParameters)),
		LocalVarCount:  len(localVars),
		ReturnCount:    returnCount,
		NestedDepth:    nestingDepth(node),
	}
}

// collectStoreTargets records every identifier in an assignment or loop
// target, so tuple unpacking contributes each bound name.
func collectStoreTargets(target *sitter.Node, source []byte, seen map[string]bool) {
	if target == nil {
		return
	}
	parser.WalkTyped(target, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case parser.NodeIdentifier:
			seen[parser.GetNodeText(n, src)] = true
		case parser.NodeAttribute:
			// self.x = ... binds an attribute, not a local name.
			return false
		}
		return true
	})
}

// cyclomaticComplexity counts independent paths through a scope:
// baseline 1, plus one per branching or looping statement, one per
// boolean combinator, and one per exception handler.
func cyclomaticComplexity(node *sitter.Node, source []byte) int {
	complexity := 1

	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, _ []byte) bool {
		switch nodeType {
		case parser.NodeIfStatement, parser.NodeElifClause,
			parser.NodeWhileStatement, parser.NodeForStatement:
			complexity++
		case parser.NodeBooleanOperator:
			complexity++
		case parser.NodeTryStatement:
			for i := range int(n.NamedChildCount()) {
				if n.NamedChild(i).Type() == parser.NodeExceptClause {
					complexity++
				}
			}
		}
		return true
	})

	return complexity
}

// nestingDepth returns the maximum count of structurally nested
// branching constructs along any path below node.
func nestingDepth(node *sitter.Node) int {
	var walk func(n *sitter.Node, depth int) int
	walk = func(n *sitter.Node, depth int) int {
		max := depth
		for i := range int(n.NamedChildCount()) {
			child := n.NamedChild(i)
			next := depth
			if branchingTypes[child.Type()] {
				next = depth + 1
			}
			if d := walk(child, next); d > max {
				max = d
			}
		}
		return max
	}
	return walk(node, 0)
}

// couplingScore is a fan-out proxy: a tenth of the count of distinct
// resolvable names referenced anywhere in the class subtree, dotted
// attribute chains included.
func couplingScore(class *sitter.Node, source []byte) float64 {
	refs := make(map[string]bool)

	parser.WalkTyped(class, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case parser.NodeIdentifier:
			refs[parser.GetNodeText(n, src)] = true
		case parser.NodeAttribute:
			if dotted := parser.ResolveDottedName(n, src); dotted != "" {
				refs[dotted] = true
			}
		}
		return true
	})

	return float64(len(refs)) * 0.1
}

// totalComplexity combines global scope, class-level, and method-level
// scores into one weighted file score.
func totalComplexity(analysis *models.ComplexityAnalysis, thresholds models.Thresholds) float64 {
	total := analysis.GlobalScopeComplexity

	for _, class := range analysis.Classes {
		total += float64(class.MethodCount)*0.2 +
			class.CouplingScore +
			float64(class.InheritanceDepth)*0.5

		for _, method := range class.Methods {
			total += float64(method.Cyclomatic)*0.3 +
				float64(method.NestedDepth*method.NestedDepth)*0.2
			if method.ParameterCount > thresholds.Method.Parameters {
				total += 0.5
			}
		}
	}

	return total
}

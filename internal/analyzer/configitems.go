package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jspahr/pylens/pkg/models"
	"github.com/jspahr/pylens/pkg/parser"
)

// Name patterns that mark an assignment as configuration-like.
var (
	configNamePrefixes = []string{"CONFIG_", "DEFAULT_", "SETTINGS_", "PARAM_"}
	configNameSuffixes = []string{"_CONFIG", "_SETTINGS", "_OPTIONS", "_DEFAULTS", "_PARAMS"}
	configNameWords    = []string{"CONFIGURATION", "SETTINGS", "OPTIONS", "PARAMETERS"}

	pathPattern = regexp.MustCompile(`^(?:/|[A-Za-z]:\\).*|.*\.(txt|json|yml|yaml|cfg|conf)$`)
	urlPattern  = regexp.MustCompile(`^(http|https|ftp)://`)

	magicNumbers = map[float64]bool{0: true, 1: true, 100: true, 1000: true, 60: true, 24: true, 365: true}
)

// ConfigItemAnalyzer finds configuration embedded in source code:
// suspiciously named assignments and configurable function defaults.
type ConfigItemAnalyzer struct {
	parser *parser.Parser
}

// NewConfigItemAnalyzer creates a new config item analyzer.
func NewConfigItemAnalyzer() *ConfigItemAnalyzer {
	return &ConfigItemAnalyzer{parser: parser.New()}
}

// Close releases parser resources.
func (a *ConfigItemAnalyzer) Close() {
	a.parser.Close()
}

// AnalyzeFile analyzes a Python file for configuration items.
func (a *ConfigItemAnalyzer) AnalyzeFile(path string) *models.ConfigAnalysis {
	result, err := a.parser.ParseFile(path)
	if err != nil {
		return models.FailedConfigAnalysis(path, err.Error())
	}
	return a.analyze(result)
}

// AnalyzeSource analyzes in-memory Python source.
func (a *ConfigItemAnalyzer) AnalyzeSource(source []byte, path string) *models.ConfigAnalysis {
	result, err := a.parser.Parse(source, path)
	if err != nil {
		return models.FailedConfigAnalysis(path, err.Error())
	}
	return a.analyze(result)
}

func (a *ConfigItemAnalyzer) analyze(parsed *parser.ParseResult) *models.ConfigAnalysis {
	return AnalyzeParsedConfigItems(parsed)
}

// AnalyzeParsedConfigItems runs config item detection on an existing
// parse result.
func AnalyzeParsedConfigItems(parsed *parser.ParseResult) (analysis *models.ConfigAnalysis) {
	analysis = models.NewConfigAnalysis(parsed.Path)
	defer func() {
		if r := recover(); r != nil {
			analysis = models.FailedConfigAnalysis(parsed.Path, fmt.Sprintf("analysis error: %v", r))
		}
	}()

	root := parsed.Tree.RootNode()
	source := parsed.Source

	// Parent links resolve the enclosing scope of each assignment.
	idx := parser.IndexParents(root)

	parser.WalkTyped(root, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case parser.NodeAssignment:
			analyzeAssignment(n, src, idx, analysis)
		case parser.NodeFunctionDefinition:
			analyzeFunctionDefaults(n, src, analysis)
		}
		return true
	})

	analysis.Group()
	return analysis
}

// analyzeAssignment records an assignment whose target name matches the
// configuration naming patterns and whose value is a decodable literal.
func analyzeAssignment(assign *sitter.Node, source []byte, idx *parser.ParentIndex, analysis *models.ConfigAnalysis) {
	left := assign.ChildByFieldName(parser.FieldLeft)
	if left == nil || left.Type() != parser.NodeIdentifier {
		return
	}
	name := parser.GetNodeText(left, source)
	if !isConfigName(name) {
		return
	}

	value := parser.DecodeLiteral(assign.ChildByFieldName(parser.FieldRight), source)
	if value.Kind == parser.LiteralUnknown {
		return
	}

	location, context := enclosingContext(assign, source, idx)
	line, _ := parser.LineRange(assign)

	analysis.Items = append(analysis.Items, models.ConfigItem{
		Name:       name,
		Value:      value.Display(),
		ValueKind:  value.Kind.String(),
		Location:   location,
		Context:    context,
		LineNumber: line,
		Suggestion: configSuggestion(name, value),
	})
}

// analyzeFunctionDefaults records default parameter values that look
// like configuration: paths, URLs, magic numbers, and collections.
func analyzeFunctionDefaults(def *sitter.Node, source []byte, analysis *models.ConfigAnalysis) {
	funcName := parser.GetNodeText(def.ChildByFieldName(parser.FieldName), source)
	params := def.ChildByFieldName(parser.FieldParameters)
	if funcName == "" || params == nil {
		return
	}
	line, _ := parser.LineRange(def)

	for i := range int(params.NamedChildCount()) {
		param := params.NamedChild(i)
		if param.Type() != "default_parameter" && param.Type() != "typed_default_parameter" {
			continue
		}
		argName := parser.GetNodeText(param.ChildByFieldName(parser.FieldName), source)
		value := parser.DecodeLiteral(param.ChildByFieldName("value"), source)
		if argName == "" || value.Kind == parser.LiteralUnknown || !isConfigValue(value) {
			continue
		}

		analysis.Items = append(analysis.Items, models.ConfigItem{
			Name:       fmt.Sprintf("%s_%s_default", funcName, argName),
			Value:      value.Display(),
			ValueKind:  value.Kind.String(),
			Location:   "function",
			Context:    "function " + funcName,
			LineNumber: line,
			Suggestion: fmt.Sprintf("Consider making '%s' configurable", argName),
		})
	}
}

// enclosingContext resolves where an assignment lives: inside a
// function, inside a class body, or at module level.
func enclosingContext(node *sitter.Node, source []byte, idx *parser.ParentIndex) (location, context string) {
	for p := idx.Parent(node); p != nil; p = idx.Parent(p) {
		switch p.Type() {
		case parser.NodeFunctionDefinition:
			name := parser.GetNodeText(p.ChildByFieldName(parser.FieldName), source)
			return "function", "function " + name
		case parser.NodeClassDefinition:
			name := parser.GetNodeText(p.ChildByFieldName(parser.FieldName), source)
			return "class", "class " + name
		}
	}
	return "module", "module"
}

// isConfigName reports whether a name matches the configuration naming
// patterns, including plain CONSTANT_CASE.
func isConfigName(name string) bool {
	upper := strings.ToUpper(name)

	for _, prefix := range configNamePrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	for _, suffix := range configNameSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	for _, word := range configNameWords {
		if strings.Contains(upper, word) {
			return true
		}
	}

	return isConstantCase(name)
}

// isConstantCase reports whether a name is all-uppercase with at least
// one underscore and one letter.
func isConstantCase(name string) bool {
	hasLetter := false
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter && strings.Contains(name, "_")
}

// isConfigValue reports whether a literal value looks configurable on
// its own, independent of its name.
func isConfigValue(value parser.Literal) bool {
	switch value.Kind {
	case parser.LiteralText:
		return pathPattern.MatchString(value.Text) || urlPattern.MatchString(value.Text)
	case parser.LiteralInt, parser.LiteralFloat:
		return magicNumbers[value.AsFloat()]
	case parser.LiteralSequence, parser.LiteralMapping:
		return true
	}
	return false
}

// configSuggestion phrases the externalization advice for one item.
func configSuggestion(name string, value parser.Literal) string {
	switch value.Kind {
	case parser.LiteralText:
		if pathPattern.MatchString(value.Text) {
			return fmt.Sprintf("Move path '%s' to configuration file", name)
		}
		if urlPattern.MatchString(value.Text) {
			return fmt.Sprintf("Move URL '%s' to configuration file", name)
		}
	case parser.LiteralSequence, parser.LiteralMapping:
		return fmt.Sprintf("Move collection '%s' to configuration file", name)
	case parser.LiteralInt, parser.LiteralFloat:
		if magicNumbers[value.AsFloat()] {
			return fmt.Sprintf("Replace magic number '%s' with configured value", value.Display())
		}
	}
	return fmt.Sprintf("Consider making '%s' configurable", name)
}

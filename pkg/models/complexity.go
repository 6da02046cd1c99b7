package models

// MethodComplexity holds the complexity metrics for a single method.
type MethodComplexity struct {
	Name           string `json:"name"`
	Cyclomatic     int    `json:"cyclomatic_complexity"`
	LineCount      int    `json:"line_count"`
	ParameterCount int    `json:"parameter_count"`
	LocalVarCount  int    `json:"local_var_count"`
	ReturnCount    int    `json:"return_count"`
	NestedDepth    int    `json:"nested_depth"`
}

// ClassComplexity holds the complexity metrics for a single class.
// InheritanceDepth is the count of declared bases, not the length of
// the ancestor chain.
type ClassComplexity struct {
	Name             string                      `json:"name"`
	MethodCount      int                         `json:"method_count"`
	TotalLineCount   int                         `json:"total_line_count"`
	InstanceVarCount int                         `json:"instance_var_count"`
	Methods          map[string]MethodComplexity `json:"methods"`
	MethodOrder      []string                    `json:"method_order"`
	CouplingScore    float64                     `json:"coupling_score"`
	InheritanceDepth int                         `json:"inheritance_depth"`
}

// RiskKind distinguishes class-level from method-level risks.
type RiskKind string

const (
	RiskClass  RiskKind = "class"
	RiskMethod RiskKind = "method"
)

// RiskArea flags one metric that exceeded a configured threshold. Each
// RiskArea is paired 1:1, in emission order, with a Suggestion string
// on the enclosing analysis.
type RiskArea struct {
	Kind     RiskKind `json:"type"`
	Location string   `json:"location"`
	Issue    string   `json:"issue"`
}

// ComplexityAnalysis is the full complexity result for one file.
type ComplexityAnalysis struct {
	FileResult

	TotalComplexity       float64                     `json:"total_complexity"`
	Classes               map[string]*ClassComplexity `json:"classes"`
	ClassOrder            []string                    `json:"class_order"`
	GlobalScopeComplexity float64                     `json:"global_scope_complexity"`
	RiskAreas             []RiskArea                  `json:"highest_risk_areas"`
	Suggestions           []string                    `json:"suggestions"`
}

// NewComplexityAnalysis creates an empty successful result for a file.
func NewComplexityAnalysis(path string) *ComplexityAnalysis {
	return &ComplexityAnalysis{
		FileResult: FileResult{Path: path, Success: true},
		Classes:    make(map[string]*ClassComplexity),
	}
}

// FailedComplexityAnalysis creates a failure result with empty tables.
func FailedComplexityAnalysis(path, message string) *ComplexityAnalysis {
	return &ComplexityAnalysis{
		FileResult: FileResult{Path: path, Success: false, Error: message},
		Classes:    make(map[string]*ClassComplexity),
	}
}

// MethodCount returns the total number of methods across all classes.
func (a *ComplexityAnalysis) MethodCount() int {
	total := 0
	for _, c := range a.Classes {
		total += len(c.Methods)
	}
	return total
}

// MaxCyclomatic returns the highest method cyclomatic complexity in the
// file, or 0 when there are no methods.
func (a *ComplexityAnalysis) MaxCyclomatic() int {
	max := 0
	for _, c := range a.Classes {
		for _, m := range c.Methods {
			if m.Cyclomatic > max {
				max = m.Cyclomatic
			}
		}
	}
	return max
}

// HasRisks reports whether any threshold was exceeded.
func (a *ComplexityAnalysis) HasRisks() bool {
	return len(a.RiskAreas) > 0
}

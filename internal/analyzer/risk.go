package analyzer

import (
	"fmt"

	"github.com/jspahr/pylens/pkg/models"
)

// classifyRisks emits one RiskArea and one paired Suggestion for every
// metric exceeding its threshold, classes in discovery order and
// methods in per-class declaration order. The instance-var, coupling,
// and inheritance thresholds are configured but deliberately not
// consulted here.
func classifyRisks(analysis *models.ComplexityAnalysis, t models.Thresholds) {
	for _, className := range analysis.ClassOrder {
		class := analysis.Classes[className]

		if class.MethodCount > t.Class.Methods {
			addRisk(analysis, models.RiskClass, className,
				"Too many methods", "Consider splitting into multiple classes")
		}
		if class.TotalLineCount > t.Class.Lines {
			addRisk(analysis, models.RiskClass, className,
				"Excessive class size", "Consider extracting functionality")
		}

		for _, methodName := range class.MethodOrder {
			method := class.Methods[methodName]
			location := className + "." + methodName

			if method.Cyclomatic > t.Method.Cyclomatic {
				addRisk(analysis, models.RiskMethod, location,
					"High cyclomatic complexity", "Simplify method logic")
			}
			if method.NestedDepth > t.Method.Nesting {
				addRisk(analysis, models.RiskMethod, location,
					"Deep nesting", "Refactor to reduce nesting")
			}
		}
	}
}

// addRisk appends a risk area and its matching suggestion.
func addRisk(analysis *models.ComplexityAnalysis, kind models.RiskKind, location, issue, suggestion string) {
	analysis.RiskAreas = append(analysis.RiskAreas, models.RiskArea{
		Kind:     kind,
		Location: location,
		Issue:    issue,
	})
	analysis.Suggestions = append(analysis.Suggestions, fmt.Sprintf("%s: %s", location, suggestion))
}

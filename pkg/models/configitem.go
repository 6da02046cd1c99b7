package models

// ConfigItem is a value embedded in source code that looks like
// configuration: a suspiciously named constant, a path or URL literal,
// a magic number, or a configurable default argument.
type ConfigItem struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	ValueKind  string `json:"value_kind"`
	Location   string `json:"location"` // module, class, or function
	Context    string `json:"context"`  // e.g. "class Widget" or "function render"
	LineNumber uint32 `json:"line_number"`
	Suggestion string `json:"suggestion"`
}

// ConfigAnalysis lists the configuration items detected in one file,
// grouped by declaration location and by value kind.
type ConfigAnalysis struct {
	FileResult

	Items      []ConfigItem            `json:"config_items"`
	TotalItems int                     `json:"total_items"`
	ByLocation map[string][]ConfigItem `json:"by_location"`
	ByType     map[string][]ConfigItem `json:"by_type"`
}

// NewConfigAnalysis creates an empty successful result for a file.
func NewConfigAnalysis(path string) *ConfigAnalysis {
	return &ConfigAnalysis{
		FileResult: FileResult{Path: path, Success: true},
		ByLocation: make(map[string][]ConfigItem),
		ByType:     make(map[string][]ConfigItem),
	}
}

// FailedConfigAnalysis creates a failure result with empty tables.
func FailedConfigAnalysis(path, message string) *ConfigAnalysis {
	return &ConfigAnalysis{
		FileResult: FileResult{Path: path, Success: false, Error: message},
		ByLocation: make(map[string][]ConfigItem),
		ByType:     make(map[string][]ConfigItem),
	}
}

// Group populates ByLocation and ByType from Items and sets TotalItems.
func (a *ConfigAnalysis) Group() {
	a.TotalItems = len(a.Items)
	for _, item := range a.Items {
		a.ByLocation[item.Location] = append(a.ByLocation[item.Location], item)
		a.ByType[item.ValueKind] = append(a.ByType[item.ValueKind], item)
	}
}

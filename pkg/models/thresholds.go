package models

// MethodThresholds bound per-method metrics.
type MethodThresholds struct {
	Cyclomatic int `json:"cyclomatic" koanf:"cyclomatic" toml:"cyclomatic"`
	Lines      int `json:"lines" koanf:"lines" toml:"lines"`
	Parameters int `json:"parameters" koanf:"parameters" toml:"parameters"`
	Nesting    int `json:"nesting" koanf:"nesting" toml:"nesting"`
}

// ClassThresholds bound per-class metrics.
type ClassThresholds struct {
	Methods      int `json:"methods" koanf:"methods" toml:"methods"`
	Lines        int `json:"lines" koanf:"lines" toml:"lines"`
	InstanceVars int `json:"instance_vars" koanf:"instance_vars" toml:"instance_vars"`
}

// Thresholds configure risk classification. The instance-var, coupling,
// and inheritance limits are accepted from configuration but not
// currently consulted by the risk classifier.
type Thresholds struct {
	Method      MethodThresholds `json:"method" koanf:"method" toml:"method"`
	Class       ClassThresholds  `json:"class" koanf:"class" toml:"class"`
	Coupling    float64          `json:"coupling" koanf:"coupling" toml:"coupling"`
	Inheritance int              `json:"inheritance" koanf:"inheritance" toml:"inheritance"`
}

// DefaultThresholds returns the standard complexity warning limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Method: MethodThresholds{
			Cyclomatic: 10,
			Lines:      50,
			Parameters: 5,
			Nesting:    3,
		},
		Class: ClassThresholds{
			Methods:      20,
			Lines:        300,
			InstanceVars: 10,
		},
		Coupling:    5.0,
		Inheritance: 3,
	}
}

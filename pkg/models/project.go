package models

// File categories assigned by the project scanner.
const (
	FilePython   = "python"
	FileConfig   = "config"
	FileDocs     = "docs"
	FileGit      = "git"
	FileCompiled = "compiled"
	FileOther    = "other"
)

// Size buckets for scanned files.
const (
	SizeSmall  = "small"  // < 10KB
	SizeMedium = "medium" // < 100KB
	SizeLarge  = "large"  // >= 100KB
)

// ProjectFile describes one file found during a project scan. Path is
// relative to the scanned root.
type ProjectFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// ProjectStats aggregates counts over a scanned directory tree.
type ProjectStats struct {
	TotalDirs  int            `json:"total_dirs"`
	TotalFiles int            `json:"total_files"`
	ByType     map[string]int `json:"by_type"`
	BySize     map[string]int `json:"by_size"`
}

// NewProjectStats creates zeroed stats with all size buckets present.
func NewProjectStats() ProjectStats {
	return ProjectStats{
		ByType: make(map[string]int),
		BySize: map[string]int{
			SizeSmall:  0,
			SizeMedium: 0,
			SizeLarge:  0,
		},
	}
}

// SizeBucket classifies a file size in bytes.
func SizeBucket(size int64) string {
	switch {
	case size < 10*1024:
		return SizeSmall
	case size < 100*1024:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// ComplexityDistribution summarizes per-file total complexity across a
// project.
type ComplexityDistribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// DependencyCycle is one strongly connected component of two or more
// classes in the project class-dependency graph.
type DependencyCycle struct {
	Classes []string `json:"classes"`
}

// ProjectAnalysis is the aggregated result of scanning a directory:
// file statistics plus the per-file analyses of every Python file and
// project-wide rollups derived from them.
type ProjectAnalysis struct {
	FileResult

	Stats        ProjectStats              `json:"stats"`
	Files        map[string][]ProjectFile  `json:"files"`
	Structures   []*StructureAnalysis      `json:"structures"`
	Complexities []*ComplexityAnalysis     `json:"complexities"`
	ConfigItems  []*ConfigAnalysis         `json:"config_items"`
	Distribution ComplexityDistribution    `json:"distribution"`
	Cycles       []DependencyCycle         `json:"cycles,omitempty"`
	ParseErrors  map[string]string         `json:"parse_errors,omitempty"`
}

// NewProjectAnalysis creates an empty successful project result.
func NewProjectAnalysis(path string) *ProjectAnalysis {
	files := make(map[string][]ProjectFile)
	for _, t := range []string{FilePython, FileConfig, FileDocs, FileGit, FileCompiled, FileOther} {
		files[t] = []ProjectFile{}
	}
	return &ProjectAnalysis{
		FileResult:  FileResult{Path: path, Success: true},
		Stats:       NewProjectStats(),
		Files:       files,
		ParseErrors: make(map[string]string),
	}
}

// PythonFileCount returns the number of Python files found.
func (a *ProjectAnalysis) PythonFileCount() int {
	return len(a.Files[FilePython])
}

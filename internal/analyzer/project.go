package analyzer

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"

	"github.com/jspahr/pylens/internal/fileproc"
	"github.com/jspahr/pylens/internal/scanner"
	"github.com/jspahr/pylens/pkg/config"
	"github.com/jspahr/pylens/pkg/models"
	"github.com/jspahr/pylens/pkg/parser"
)

// ProjectAnalyzer scans a directory and runs every enabled per-file
// analysis, then derives project-wide rollups: the complexity
// distribution and class dependency cycles.
type ProjectAnalyzer struct {
	cfg *config.Config
}

// NewProjectAnalyzer creates a project analyzer. A nil config uses
// defaults.
func NewProjectAnalyzer(cfg *config.Config) *ProjectAnalyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &ProjectAnalyzer{cfg: cfg}
}

// fileAnalyses bundles the per-file results so one parse feeds all
// analyzers.
type fileAnalyses struct {
	structure  *models.StructureAnalysis
	complexity *models.ComplexityAnalysis
	config     *models.ConfigAnalysis
	parseError string
}

// AnalyzeDirectory scans root and analyzes every Python file in it.
func (a *ProjectAnalyzer) AnalyzeDirectory(root string) *models.ProjectAnalysis {
	return a.AnalyzeDirectoryWithProgress(root, nil)
}

// AnalyzeDirectoryWithProgress is AnalyzeDirectory with a per-file
// progress callback.
func (a *ProjectAnalyzer) AnalyzeDirectoryWithProgress(root string, onProgress fileproc.ProgressFunc) *models.ProjectAnalysis {
	scan, err := scanner.New(a.cfg).ScanDir(root)
	if err != nil {
		return &models.ProjectAnalysis{
			FileResult: models.FileResult{Path: root, Success: false, Error: err.Error()},
			Stats:      models.NewProjectStats(),
			Files:      map[string][]models.ProjectFile{},
		}
	}

	analysis := models.NewProjectAnalysis(root)
	analysis.Stats = scan.Stats
	analysis.Files = scan.Files

	paths := scan.PythonPaths()
	bundles := fileproc.MapFilesWithProgress(paths, func(psr *parser.Parser, path string) (fileAnalyses, error) {
		parsed, err := psr.ParseFile(path)
		if err != nil {
			return fileAnalyses{
				structure:  models.FailedStructureAnalysis(path, err.Error()),
				complexity: models.FailedComplexityAnalysis(path, err.Error()),
				config:     models.FailedConfigAnalysis(path, err.Error()),
				parseError: err.Error(),
			}, nil
		}

		bundle := fileAnalyses{}
		if a.cfg.Analysis.Structure {
			bundle.structure = AnalyzeParsedStructure(parsed)
		}
		if a.cfg.Analysis.Complexity {
			bundle.complexity = AnalyzeParsedComplexity(parsed, a.cfg.Thresholds)
		}
		if a.cfg.Analysis.ConfigItems {
			bundle.config = AnalyzeParsedConfigItems(parsed)
		}
		return bundle, nil
	}, onProgress)

	for _, b := range bundles {
		if b.structure != nil {
			analysis.Structures = append(analysis.Structures, b.structure)
			if b.parseError != "" {
				analysis.ParseErrors[b.structure.Path] = b.parseError
			}
		}
		if b.complexity != nil {
			analysis.Complexities = append(analysis.Complexities, b.complexity)
		}
		if b.config != nil {
			analysis.ConfigItems = append(analysis.ConfigItems, b.config)
		}
	}

	analysis.Distribution = complexityDistribution(analysis.Complexities)
	if a.cfg.Analysis.Cycles {
		analysis.Cycles = dependencyCycles(analysis.Structures)
	}

	return analysis
}

// complexityDistribution summarizes the per-file total complexity of
// the successful analyses.
func complexityDistribution(results []*models.ComplexityAnalysis) models.ComplexityDistribution {
	var totals []float64
	for _, r := range results {
		if r.Success {
			totals = append(totals, r.TotalComplexity)
		}
	}
	if len(totals) == 0 {
		return models.ComplexityDistribution{}
	}

	sort.Float64s(totals)
	return models.ComplexityDistribution{
		Mean:   stat.Mean(totals, nil),
		StdDev: stdDev(totals),
		P50:    stat.Quantile(0.5, stat.Empirical, totals, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, totals, nil),
		Max:    totals[len(totals)-1],
	}
}

// stdDev returns the population-style standard deviation, zero for a
// single sample.
func stdDev(sorted []float64) float64 {
	if len(sorted) < 2 {
		return 0
	}
	return stat.StdDev(sorted, nil)
}

// dependencyCycles finds strongly connected components of two or more
// classes in the merged project class-dependency graph.
func dependencyCycles(results []*models.StructureAnalysis) []models.DependencyCycle {
	known := make(map[string]bool)
	var order []string
	for _, r := range results {
		if !r.Success {
			continue
		}
		for _, name := range r.ClassOrder {
			if !known[name] {
				known[name] = true
				order = append(order, name)
			}
		}
	}
	if len(order) == 0 {
		return nil
	}

	g := simple.NewDirectedGraph()
	nodes := make(map[string]graph.Node, len(order))
	names := make(map[int64]string, len(order))
	for _, name := range order {
		n := g.NewNode()
		g.AddNode(n)
		nodes[name] = n
		names[n.ID()] = name
	}

	for _, r := range results {
		if !r.Success {
			continue
		}
		for _, name := range r.ClassOrder {
			for _, dep := range r.Classes[name].Dependencies {
				if dep == name || !known[dep] {
					continue
				}
				g.SetEdge(g.NewEdge(nodes[name], nodes[dep]))
			}
		}
	}

	var cycles []models.DependencyCycle
	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		classes := make([]string, 0, len(component))
		for _, n := range component {
			classes = append(classes, names[n.ID()])
		}
		sort.Strings(classes)
		cycles = append(cycles, models.DependencyCycle{Classes: classes})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Classes[0] < cycles[j].Classes[0]
	})
	return cycles
}

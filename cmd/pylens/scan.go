package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jspahr/pylens/internal/analyzer"
	"github.com/jspahr/pylens/internal/output"
	"github.com/jspahr/pylens/internal/progress"
	"github.com/jspahr/pylens/pkg/models"
)

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Scan a project directory and aggregate every analysis",
		ArgsUsage: "[path]",
		Action:    runScanCmd,
	}
}

func runScanCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	root := getPaths(c)[0]

	spinner := progress.NewSpinner("Scanning project...")
	analysis := analyzer.NewProjectAnalyzer(cfg).AnalyzeDirectoryWithProgress(root, spinner.Tick)
	spinner.FinishSuccess()

	if analysis.Failed() {
		return fmt.Errorf("scan failed: %s", analysis.Error)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := &output.Report{
		Title: fmt.Sprintf("Project Scan: %s", root),
		Data:  analysis,
		Sections: []output.Renderable{
			statsSection(analysis),
			distributionTable(analysis.Distribution),
			cyclesSection(analysis.Cycles),
			parseErrorsSection(analysis.ParseErrors),
		},
	}
	return formatter.Output(report)
}

func statsSection(analysis *models.ProjectAnalysis) *output.Section {
	var b strings.Builder
	fmt.Fprintf(&b, "Directories: %d\n", analysis.Stats.TotalDirs)
	fmt.Fprintf(&b, "Files: %d (%d Python)\n", analysis.Stats.TotalFiles, analysis.PythonFileCount())

	for _, fileType := range sortedCountKeys(analysis.Stats.ByType) {
		fmt.Fprintf(&b, "  %-9s %d\n", fileType, analysis.Stats.ByType[fileType])
	}
	fmt.Fprintf(&b, "Sizes: small %d, medium %d, large %d",
		analysis.Stats.BySize[models.SizeSmall],
		analysis.Stats.BySize[models.SizeMedium],
		analysis.Stats.BySize[models.SizeLarge])

	return &output.Section{Title: "Files", Content: b.String()}
}

func distributionTable(dist models.ComplexityDistribution) *output.Table {
	return output.NewTable("Complexity Distribution",
		[]string{"Mean", "Std Dev", "P50", "P90", "Max"},
		[][]string{{
			fmt.Sprintf("%.2f", dist.Mean),
			fmt.Sprintf("%.2f", dist.StdDev),
			fmt.Sprintf("%.2f", dist.P50),
			fmt.Sprintf("%.2f", dist.P90),
			fmt.Sprintf("%.2f", dist.Max),
		}},
		nil, dist)
}

func cyclesSection(cycles []models.DependencyCycle) *output.Section {
	section := &output.Section{Title: "Dependency Cycles"}
	if len(cycles) == 0 {
		section.Content = "No class dependency cycles found"
		return section
	}

	var lines []string
	for _, cycle := range cycles {
		lines = append(lines, output.RiskColor("medium", strings.Join(cycle.Classes, " -> ")))
	}
	section.Content = strings.Join(lines, "\n")
	return section
}

func parseErrorsSection(errors map[string]string) *output.Section {
	section := &output.Section{Title: "Parse Errors"}
	if len(errors) == 0 {
		section.Content = "None"
		return section
	}

	paths := make([]string, 0, len(errors))
	for path := range errors {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var lines []string
	for _, path := range paths {
		lines = append(lines, fmt.Sprintf("%s: %s", path, errors[path]))
	}
	section.Content = strings.Join(lines, "\n")
	return section
}

func sortedCountKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/jspahr/pylens/internal/analyzer"
	"github.com/jspahr/pylens/internal/cache"
	"github.com/jspahr/pylens/internal/fileproc"
	"github.com/jspahr/pylens/internal/output"
	"github.com/jspahr/pylens/internal/progress"
	"github.com/jspahr/pylens/pkg/config"
	"github.com/jspahr/pylens/pkg/models"
	"github.com/jspahr/pylens/pkg/parser"
)

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Analyze complexity metrics and risk areas",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "risks-only",
				Usage: "Show only risk areas and suggestions",
			},
		},
		Action: runComplexityCmd,
	}
}

func runComplexityCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := collectPythonFiles(cfg, getPaths(c))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}

	store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}

	tracker := progress.NewTracker("Analyzing complexity...", len(files))
	results := fileproc.MapFilesN(files, c.Int("jobs"), func(psr *parser.Parser, path string) (*models.ComplexityAnalysis, error) {
		return analyzeFileComplexity(psr, path, cfg, store)
	}, tracker.Tick)
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := &output.Report{
		Title: "Complexity Analysis",
		Data:  results,
	}
	if !c.Bool("risks-only") {
		report.Sections = append(report.Sections, complexityTable(results))
	}
	report.Sections = append(report.Sections, riskSection(results))

	return formatter.Output(report)
}

// analyzeFileComplexity analyzes one file, consulting the cache keyed
// by path and content hash.
func analyzeFileComplexity(psr *parser.Parser, path string, cfg *config.Config, store *cache.Cache) (*models.ComplexityAnalysis, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return models.FailedComplexityAnalysis(path, err.Error()), nil
	}
	hash := cache.HashBytes(source)

	if payload, ok := store.Get(path, hash); ok {
		var cached models.ComplexityAnalysis
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	parsed, err := psr.Parse(source, path)
	if err != nil {
		return models.FailedComplexityAnalysis(path, err.Error()), nil
	}
	analysis := analyzer.AnalyzeParsedComplexity(parsed, cfg.Thresholds)

	if payload, err := json.Marshal(analysis); err == nil {
		_ = store.Set(path, hash, payload)
	}
	return analysis, nil
}

func complexityTable(results []*models.ComplexityAnalysis) *output.Table {
	var rows [][]string
	var grandTotal float64

	for _, r := range results {
		if r.Failed() {
			rows = append(rows, []string{r.Path, color.RedString("parse error"), "", "", "", ""})
			continue
		}
		grandTotal += r.TotalComplexity
		for _, name := range r.ClassOrder {
			class := r.Classes[name]
			maxCyc := 0
			for _, m := range class.Methods {
				if m.Cyclomatic > maxCyc {
					maxCyc = m.Cyclomatic
				}
			}
			rows = append(rows, []string{
				r.Path,
				name,
				fmt.Sprintf("%d", class.MethodCount),
				fmt.Sprintf("%d", maxCyc),
				fmt.Sprintf("%.1f", class.CouplingScore),
				fmt.Sprintf("%d", class.InheritanceDepth),
			})
		}
	}

	return output.NewTable("",
		[]string{"File", "Class", "Methods", "Max Cyclomatic", "Coupling", "Bases"},
		rows,
		[]string{"Total complexity", fmt.Sprintf("%.1f", grandTotal), "", "", "", ""},
		nil)
}

func riskSection(results []*models.ComplexityAnalysis) *output.Section {
	section := &output.Section{Title: "Risk Areas"}

	var lines []string
	for _, r := range results {
		for i, risk := range r.RiskAreas {
			line := fmt.Sprintf("%s: %s - %s", r.Path,
				output.RiskColor("high", risk.Location), risk.Issue)
			if i < len(r.Suggestions) {
				line += fmt.Sprintf(" (%s)", r.Suggestions[i])
			}
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		section.Content = "No risk areas found"
		return section
	}
	for _, line := range lines {
		section.Content += line + "\n"
	}
	return section
}

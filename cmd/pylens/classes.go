package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/jspahr/pylens/internal/analyzer"
	"github.com/jspahr/pylens/internal/fileproc"
	"github.com/jspahr/pylens/internal/output"
	"github.com/jspahr/pylens/internal/progress"
	"github.com/jspahr/pylens/pkg/models"
	"github.com/jspahr/pylens/pkg/parser"
)

func classesCmd() *cli.Command {
	return &cli.Command{
		Name:      "classes",
		Aliases:   []string{"cl"},
		Usage:     "Analyze class structure and inheritance",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "diagram",
				Aliases: []string{"d"},
				Usage:   "Emit Mermaid class diagrams instead of a table",
			},
		},
		Action: runClassesCmd,
	}
}

func runClassesCmd(c *cli.Context) error {
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

	tracker := progress.NewTracker("Analyzing classes...", len(files))
	results := fileproc.MapFilesN(files, c.Int("jobs"), func(psr *parser.Parser, path string) (*models.StructureAnalysis, error) {
		parsed, err := psr.ParseFile(path)
		if err != nil {
			return models.FailedStructureAnalysis(path, err.Error()), nil
		}
		return analyzer.AnalyzeParsedStructure(parsed), nil
	}, tracker.Tick)
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("diagram") {
		return writeDiagrams(formatter, results)
	}

	var rows [][]string
	total := 0
	for _, r := range results {
		if r.Failed() {
			rows = append(rows, []string{r.Path, color.RedString("parse error"), "", "", "", ""})
			continue
		}
		for _, name := range r.ClassOrder {
			info := r.Classes[name]
			rows = append(rows, []string{
				r.Path,
				name,
				strings.Join(info.Bases, ", "),
				fmt.Sprintf("%d", len(info.Methods)),
				fmt.Sprintf("%d", len(info.InstanceVars)),
				fmt.Sprintf("%d", info.LineCount),
			})
			total++
		}
	}

	table := output.NewTable("Class Structure",
		[]string{"File", "Class", "Bases", "Methods", "Vars", "Lines"},
		rows,
		[]string{"Total", fmt.Sprintf("%d", total), "", "", "", ""},
		results)
	return formatter.Output(table)
}

// writeDiagrams prints one Mermaid diagram per analyzed file, fenced
// when the output format is markdown.
func writeDiagrams(formatter *output.Formatter, results []*models.StructureAnalysis) error {
	w := formatter.Writer()
	markdown := formatter.Format() == output.FormatMarkdown

	for _, r := range results {
		if markdown {
			fmt.Fprintf(w, "## %s\n\n```mermaid\n%s\n```\n\n", r.Path, r.Mermaid())
			continue
		}
		fmt.Fprintf(w, "%% %s\n%s\n\n", r.Path, r.Mermaid())
	}
	return nil
}

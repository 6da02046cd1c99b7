package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/jspahr/pylens/internal/analyzer"
	"github.com/jspahr/pylens/internal/fileproc"
	"github.com/jspahr/pylens/internal/output"
	"github.com/jspahr/pylens/internal/progress"
	"github.com/jspahr/pylens/pkg/models"
	"github.com/jspahr/pylens/pkg/parser"
)

func configItemsCmd() *cli.Command {
	return &cli.Command{
		Name:      "configitems",
		Aliases:   []string{"ci"},
		Usage:     "Find configuration values embedded in source code",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "location",
				Usage: "Only show items in this scope: module, class, or function",
			},
		},
		Action: runConfigItemsCmd,
	}
}

func runConfigItemsCmd(c *cli.Context) error {
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

	tracker := progress.NewTracker("Detecting config items...", len(files))
	results := fileproc.MapFilesN(files, c.Int("jobs"), func(psr *parser.Parser, path string) (*models.ConfigAnalysis, error) {
		parsed, err := psr.ParseFile(path)
		if err != nil {
			return models.FailedConfigAnalysis(path, err.Error()), nil
		}
		return analyzer.AnalyzeParsedConfigItems(parsed), nil
	}, tracker.Tick)
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	location := c.String("location")

	var rows [][]string
	total := 0
	for _, r := range results {
		if r.Failed() {
			rows = append(rows, []string{r.Path, color.RedString("parse error"), "", "", "", ""})
			continue
		}
		items := r.Items
		if location != "" {
			items = r.ByLocation[location]
		}
		for _, item := range items {
			rows = append(rows, []string{
				r.Path,
				item.Name,
				truncate(item.Value, 40),
				item.Context,
				fmt.Sprintf("%d", item.LineNumber),
				item.Suggestion,
			})
			total++
		}
	}

	table := output.NewTable("Configuration Items",
		[]string{"File", "Name", "Value", "Context", "Line", "Suggestion"},
		rows,
		[]string{"Total", fmt.Sprintf("%d", total), "", "", "", ""},
		results)
	return formatter.Output(table)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jspahr/pylens/internal/output"
	"github.com/jspahr/pylens/internal/planner"
	"github.com/jspahr/pylens/internal/scanner"
)

func planCmd() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Plan file migrations from a YAML mapping",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mapping",
				Aliases: []string{"m"},
				Usage:   "Path to the mapping rules file (default from config)",
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print only the plan summary",
			},
		},
		Action: runPlanCmd,
	}
}

func runPlanCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	root := getPaths(c)[0]

	mappingFile := c.String("mapping")
	if mappingFile == "" {
		mappingFile = cfg.Planner.MappingFile
	}

	p := planner.New(root, cfg.Planner.MaxFileSize)
	if err := p.LoadMapping(mappingFile); err != nil {
		return err
	}

	scan, err := scanner.New(cfg).ScanDir(root)
	if err != nil {
		return fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	files := make(map[string][]string)
	for fileType, found := range scan.Files {
		for _, f := range found {
			files[fileType] = append(files[fileType], f.Path)
		}
	}

	plan, err := p.CreatePlan(files)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("summary") {
		if err := formatter.Output(plan.Summary()); err != nil {
			return err
		}
	} else if err := formatter.Output(planReport(plan)); err != nil {
		return err
	}

	if plan.HasErrors() {
		return fmt.Errorf("plan has %d blocking errors", len(plan.Errors))
	}
	return nil
}

func planReport(plan *planner.Plan) *output.Report {
	var moveRows [][]string
	for _, move := range plan.Moves {
		moveRows = append(moveRows, []string{move.Source, move.Target, move.Pattern})
	}

	var ignoreLines []string
	for _, ignore := range plan.Ignores {
		ignoreLines = append(ignoreLines, fmt.Sprintf("%s (%s)", ignore.Path, ignore.Reason))
	}

	summary := plan.Summary()
	return &output.Report{
		Title: "Migration Plan",
		Data:  plan,
		Sections: []output.Renderable{
			output.NewTable("Moves",
				[]string{"Source", "Target", "Pattern"},
				moveRows,
				[]string{"Total", fmt.Sprintf("%d", summary.TotalMoves), ""},
				nil),
			&output.Section{Title: "Create Directories", Content: listOrNone(plan.Creates)},
			&output.Section{Title: "Ignored", Content: listOrNone(ignoreLines)},
			&output.Section{Title: "Warnings", Content: listOrNone(plan.Warnings)},
			&output.Section{Title: "Errors", Content: listOrNone(plan.Errors)},
		},
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, "\n")
}

package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "pylens",
		Usage:   "Python code structure and complexity analysis",
		Version: version,
		Description: `Pylens parses Python projects and reports class structure, complexity
metrics with risk areas, embedded configuration values, and project-wide
statistics. It can also plan file migrations from a YAML rule set.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PYLENS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable result caching",
			},
			&cli.IntFlag{
				Name:  "jobs",
				Usage: "Number of parallel workers (0 = automatic)",
			},
		},
		Commands: []*cli.Command{
			classesCmd(),
			complexityCmd(),
			configItemsCmd(),
			scanCmd(),
			planCmd(),
			initCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

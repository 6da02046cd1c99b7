package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/jspahr/pylens/internal/output"
	"github.com/jspahr/pylens/internal/scanner"
	"github.com/jspahr/pylens/pkg/config"
	"github.com/jspahr/pylens/pkg/parser"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if c.Bool("no-color") {
		cfg.Output.Color = false
		color.NoColor = true
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// newFormatter builds the output formatter from flags and config.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color)
}

// collectPythonFiles expands paths into the Python files to analyze.
// Directories are scanned recursively; explicit file arguments bypass
// the exclusion rules.
func collectPythonFiles(cfg *config.Config, paths []string) ([]string, error) {
	s := scanner.New(cfg)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		if !info.IsDir() {
			if parser.IsPythonFile(path) {
				files = append(files, path)
			}
			continue
		}

		scan, err := s.ScanDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		files = append(files, scan.PythonPaths()...)
	}
	return files, nil
}

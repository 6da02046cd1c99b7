// Package scanner walks project directories, classifying files and
// applying config and gitignore exclusions.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/jspahr/pylens/pkg/config"
	"github.com/jspahr/pylens/pkg/models"
)

// Scanner finds and classifies files under a project root.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a scanner. A nil config uses defaults.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// Result is the outcome of one directory scan: aggregate stats plus
// every kept file grouped by category.
type Result struct {
	Root  string
	Stats models.ProjectStats
	Files map[string][]models.ProjectFile
}

// PythonPaths returns the absolute paths of the Python files found.
func (r *Result) PythonPaths() []string {
	paths := make([]string, 0, len(r.Files[models.FilePython]))
	for _, f := range r.Files[models.FilePython] {
		paths = append(paths, filepath.Join(r.Root, f.Path))
	}
	return paths
}

// Classify buckets a file by extension and name.
func Classify(path string) string {
	name := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == ".py" || ext == ".pyw" || ext == ".pyi":
		return models.FilePython
	case ext == ".yml" || ext == ".yaml" || ext == ".json" || ext == ".cfg" || ext == ".conf" || ext == ".toml":
		return models.FileConfig
	case ext == ".md" || ext == ".txt" || ext == ".rst":
		return models.FileDocs
	case strings.HasPrefix(name, ".git"):
		return models.FileGit
	case ext == ".pyc" || ext == ".pyo" || strings.Contains(path, "__pycache__"):
		return models.FileCompiled
	default:
		return models.FileOther
	}
}

// ScanDir walks root recursively, classifying every file that survives
// the exclusion rules. Symlinks that escape the root are skipped.
func (s *Scanner) ScanDir(root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	result := &Result{
		Root:  root,
		Stats: models.NewProjectStats(),
		Files: make(map[string][]models.ProjectFile),
	}
	for _, t := range []string{models.FilePython, models.FileConfig, models.FileDocs, models.FileGit, models.FileCompiled, models.FileOther} {
		result.Files[t] = []models.ProjectFile{}
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			if d.Name() != "__pycache__" {
				result.Stats.TotalDirs++
			}
			return nil
		}

		if s.isExcluded(relPath, false) || s.config.ShouldExclude(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		fileType := Classify(relPath)
		result.Stats.TotalFiles++
		result.Stats.ByType[fileType]++
		result.Stats.BySize[models.SizeBucket(info.Size())]++
		result.Files[fileType] = append(result.Files[fileType], models.ProjectFile{
			Path: relPath,
			Size: info.Size(),
			Type: fileType,
		})

		return nil
	})

	return result, walkErr
}

// ShouldScan checks whether a single file would be analyzed.
func (s *Scanner) ShouldScan(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	if len(s.matchers) == 0 {
		s.loadExcludePatterns(filepath.Dir(path))
	}
	if s.isExcluded(filepath.Base(path), false) || s.config.ShouldExclude(path) {
		return false, nil
	}

	return Classify(path) == models.FilePython, nil
}

// loadExcludePatterns combines config exclusion patterns with the
// repository's .gitignore files when enabled.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fs := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks a relative path against the loaded matchers.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	parts := strings.Split(path, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// findGitRoot walks upward looking for a .git directory.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// isWithinRoot reports whether path stays inside root after symlink
// resolution.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapping = `version: 1
patterns:
  python:
    - pattern: "src/*.py"
      target: "lib/{name}"
      priority: 1
    - pattern: "src/main.py"
      target: "app/{stem}_entry.{ext}"
      priority: 5
  docs:
    - pattern: "*.md"
      target: "docs/{name}"
      priority: 1
special:
  ignore:
    - "*_backup.py"
validation:
  required_dirs:
    - lib
    - app
  file_checks:
    - type: py
      max_size: 1024
`

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadedPlanner(t *testing.T, baseDir string) *Planner {
	t.Helper()
	p := New(baseDir, 0)
	require.NoError(t, p.LoadMapping(writeMapping(t, testMapping)))
	return p
}

func TestLoadMappingMissingKey(t *testing.T) {
	p := New(t.TempDir(), 0)
	err := p.LoadMapping(writeMapping(t, "version: 1\npatterns: {}\nspecial: {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadMappingInvalidRule(t *testing.T) {
	p := New(t.TempDir(), 0)
	err := p.LoadMapping(writeMapping(t, `version: 1
patterns:
  python:
    - pattern: "*.py"
      priority: 1
special: {}
validation: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern structure in python")
}

func TestLoadMappingMissingFile(t *testing.T) {
	p := New(t.TempDir(), 0)
	assert.Error(t, p.LoadMapping(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestCreatePlanRequiresMapping(t *testing.T) {
	_, err := New(t.TempDir(), 0).CreatePlan(nil)
	assert.ErrorIs(t, err, ErrNoMapping)
}

func TestCreatePlanMoves(t *testing.T) {
	p := loadedPlanner(t, t.TempDir())

	plan, err := p.CreatePlan(map[string][]string{
		"python": {"src/util.py", "src/main.py", "src/old_backup.py"},
		"docs":   {"README.md"},
	})
	require.NoError(t, err)
	require.False(t, plan.HasErrors(), "errors: %v", plan.Errors)

	moves := map[string]Move{}
	for _, m := range plan.Moves {
		moves[m.Source] = m
	}

	assert.Equal(t, "lib/util.py", moves["src/util.py"].Target)
	// The higher-priority rule wins for main.py.
	assert.Equal(t, "app/main_entry.py", moves["src/main.py"].Target)
	assert.Equal(t, "src/main.py", moves["src/main.py"].Pattern)
	assert.Equal(t, "docs/README.md", moves["README.md"].Target)

	require.Len(t, plan.Ignores, 1)
	assert.Equal(t, "src/old_backup.py", plan.Ignores[0].Path)
	assert.Contains(t, plan.Ignores[0].Reason, "*_backup.py")
}

func TestCreatePlanDirectories(t *testing.T) {
	p := loadedPlanner(t, t.TempDir())

	plan, err := p.CreatePlan(nil)
	require.NoError(t, err)

	// Required dirs first, then directories implied by templates.
	assert.Equal(t, []string{"lib", "app", "docs"}, plan.Creates)
	assert.False(t, plan.HasErrors())
}

func TestCreatePlanWarnings(t *testing.T) {
	p := loadedPlanner(t, t.TempDir())

	plan, err := p.CreatePlan(map[string][]string{
		"python": {"elsewhere/stray.py"},
		"images": {"logo.png"},
	})
	require.NoError(t, err)

	assert.Contains(t, plan.Warnings, "No mapping rules for file type: images")
	assert.Contains(t, plan.Warnings, "No matching pattern for file: elsewhere/stray.py")
}

func TestCreatePlanDuplicateTargets(t *testing.T) {
	p := loadedPlanner(t, t.TempDir())

	// Two sources with the same basename collapse to one target.
	plan, err := p.CreatePlan(map[string][]string{
		"docs": {"a/README.md", "b/README.md"},
	})
	require.NoError(t, err)

	require.True(t, plan.HasErrors())
	assert.Contains(t, plan.Errors[0], "Duplicate target path docs/README.md")
}

func TestCreatePlanSizeWarnings(t *testing.T) {
	baseDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "src"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(baseDir, "src", "big.py"), make([]byte, 2048), 0o644))

	p := loadedPlanner(t, baseDir)
	plan, err := p.CreatePlan(map[string][]string{"python": {"src/big.py"}})
	require.NoError(t, err)

	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "exceeds maximum size for py: 2048 > 1024")
}

func TestCreatePlanGlobalSizeCap(t *testing.T) {
	baseDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(baseDir, "README.md"), make([]byte, 512), 0o644))

	p := New(baseDir, 256)
	require.NoError(t, p.LoadMapping(writeMapping(t, testMapping)))

	plan, err := p.CreatePlan(map[string][]string{"docs": {"README.md"}})
	require.NoError(t, err)

	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "exceeds maximum size for migration")
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		source   string
		template string
		want     string
	}{
		{"src/app/main.py", "lib/{name}", "lib/main.py"},
		{"src/app/main.py", "lib/{stem}.bak", "lib/main.bak"},
		{"src/app/main.py", "by_dir/{parent}/{name}", "by_dir/app/main.py"},
		{"src/app/main.py", "by_ext/{ext}/{stem}", "by_ext/py/main"},
	}
	for _, tt := range tests {
		got, err := resolveTarget(tt.source, tt.template)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := resolveTarget("a.py", "lib/{unknown}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved placeholders")
}

func TestFnmatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.py", "main.py", true},
		{"*.py", "src/main.py", true}, // * crosses separators
		{"src/*.py", "src/main.py", true},
		{"src/*.py", "main.py", false},
		{"test_?.py", "test_a.py", true},
		{"test_?.py", "test_ab.py", false},
		{"[abc].py", "b.py", true},
		{"[!abc].py", "d.py", true},
		{"[!abc].py", "a.py", false},
	}
	for _, tt := range tests {
		if got := fnmatch(tt.pattern, tt.path); got != tt.want {
			t.Errorf("fnmatch(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestPlanSummary(t *testing.T) {
	p := loadedPlanner(t, t.TempDir())

	plan, err := p.CreatePlan(map[string][]string{
		"docs":   {"README.md", "x_backup.py"},
		"images": {"logo.png"},
	})
	require.NoError(t, err)

	s := plan.Summary()
	assert.Equal(t, 1, s.TotalMoves)
	assert.Equal(t, 3, s.TotalCreates)
	assert.Equal(t, 1, s.TotalIgnores)
	assert.Equal(t, 1, s.TotalWarnings)
	assert.Equal(t, 0, s.TotalErrors)
	assert.False(t, s.HasErrors)
}

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jspahr/pylens/pkg/config"
	"github.com/jspahr/pylens/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.py", models.FilePython},
		{"gui.pyw", models.FilePython},
		{"types.pyi", models.FilePython},
		{"settings.yaml", models.FileConfig},
		{"settings.yml", models.FileConfig},
		{"data.json", models.FileConfig},
		{"app.cfg", models.FileConfig},
		{"app.conf", models.FileConfig},
		{"pyproject.toml", models.FileConfig},
		{"README.md", models.FileDocs},
		{"notes.txt", models.FileDocs},
		{"index.rst", models.FileDocs},
		{".gitignore", models.FileGit},
		{".gitattributes", models.FileGit},
		{"mod.pyc", models.FileCompiled},
		{"mod.pyo", models.FileCompiled},
		{"__pycache__/mod.cpython-312.bin", models.FileCompiled},
		{"image.png", models.FileOther},
		{"Makefile", models.FileOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func scanConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false
	return cfg
}

func TestScanDir(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":       "x = 1\n",
		"sub/b.py":   "y = 2\n",
		"sub/c.md":   "# doc\n",
		"data.json":  "{}\n",
		"binary.bin": "\x00",
	})

	result, err := New(scanConfig()).ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.TotalFiles != 5 {
		t.Errorf("TotalFiles = %d, want 5", result.Stats.TotalFiles)
	}
	if result.Stats.TotalDirs != 1 {
		t.Errorf("TotalDirs = %d, want 1", result.Stats.TotalDirs)
	}
	if result.Stats.ByType[models.FilePython] != 2 {
		t.Errorf("python count = %d, want 2", result.Stats.ByType[models.FilePython])
	}
	if result.Stats.ByType[models.FileOther] != 1 {
		t.Errorf("other count = %d, want 1", result.Stats.ByType[models.FileOther])
	}
	if result.Stats.BySize[models.SizeSmall] != 5 {
		t.Errorf("small count = %d, want 5", result.Stats.BySize[models.SizeSmall])
	}

	paths := result.PythonPaths()
	if len(paths) != 2 {
		t.Fatalf("PythonPaths = %v", paths)
	}
	for _, p := range paths {
		if filepath.Dir(p) != root && filepath.Dir(p) != filepath.Join(root, "sub") {
			t.Errorf("path %q not joined to root", p)
		}
	}
}

func TestScanDirDefaultExclusions(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":                  "x = 1\n",
		"test_a.py":             "x = 1\n",
		"conftest.py":           "x = 1\n",
		"__pycache__/a.pyc":     "\x00",
		".venv/lib/site.py":     "x = 1\n",
		"node_modules/x/y.py":   "x = 1\n",
		"build/generated.py":    "x = 1\n",
	})

	result, err := New(scanConfig()).ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.ByType[models.FilePython] != 1 {
		t.Errorf("python count = %d, want only a.py: %v",
			result.Stats.ByType[models.FilePython], result.Files[models.FilePython])
	}
	// Compiled artifacts in excluded dirs never show up.
	if result.Stats.ByType[models.FileCompiled] != 0 {
		t.Errorf("compiled count = %d, want 0", result.Stats.ByType[models.FileCompiled])
	}
}

func TestScanDirGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		"kept.py":    "x = 1\n",
		"ignored.py": "x = 1\n",
		".gitignore": "ignored.py\n",
	})
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = true
	result, err := New(cfg).ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, f := range result.Files[models.FilePython] {
		names = append(names, f.Path)
	}
	if len(names) != 1 || names[0] != "kept.py" {
		t.Errorf("python files = %v, want [kept.py]", names)
	}
}

func TestScanDirMissingRoot(t *testing.T) {
	if _, err := New(scanConfig()).ScanDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("scan succeeded on missing root")
	}
}

func TestShouldScan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":      "x = 1\n",
		"test_a.py": "x = 1\n",
		"doc.md":    "# doc\n",
	})

	s := New(scanConfig())
	tests := []struct {
		name string
		want bool
	}{
		{"a.py", true},
		{"test_a.py", false},
		{"doc.md", false},
	}
	for _, tt := range tests {
		got, err := s.ShouldScan(filepath.Join(root, tt.name))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("ShouldScan(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if ok, _ := s.ShouldScan(root); ok {
		t.Error("ShouldScan accepted a directory")
	}
	if _, err := s.ShouldScan(filepath.Join(root, "missing.py")); err == nil {
		t.Error("ShouldScan succeeded on missing file")
	}
}

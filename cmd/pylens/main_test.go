package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jspahr/pylens/pkg/config"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is far too long", 10, "this is..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestGeneratedConfigRoundTrips(t *testing.T) {
	content, err := generateDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "pylens.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}

	defaults := config.DefaultConfig()
	if loaded.Thresholds.Method.Cyclomatic != defaults.Thresholds.Method.Cyclomatic {
		t.Errorf("cyclomatic threshold = %d, want %d",
			loaded.Thresholds.Method.Cyclomatic, defaults.Thresholds.Method.Cyclomatic)
	}
	if loaded.Cache.Dir != defaults.Cache.Dir {
		t.Errorf("cache dir = %q, want %q", loaded.Cache.Dir, defaults.Cache.Dir)
	}
	if len(loaded.Exclude.Dirs) != len(defaults.Exclude.Dirs) {
		t.Errorf("exclude dirs = %v", loaded.Exclude.Dirs)
	}
}

func TestListOrNone(t *testing.T) {
	if got := listOrNone(nil); got != "None" {
		t.Errorf("listOrNone(nil) = %q", got)
	}
	if got := listOrNone([]string{"a", "b"}); got != "a\nb" {
		t.Errorf("listOrNone = %q", got)
	}
}

package analyzer

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestStructureEmptyClass(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	result := a.AnalyzeSource([]byte("class A:\n    pass\n"), "a.py")
	if !result.Success {
		t.Fatalf("analysis failed: %s", result.Error)
	}

	info, ok := result.Classes["A"]
	if !ok {
		t.Fatal("class A not found")
	}
	if len(info.Bases) != 0 || len(info.Methods) != 0 || len(info.InstanceVars) != 0 || len(info.Dependencies) != 0 {
		t.Errorf("empty class has non-empty members: %+v", info)
	}
	if !reflect.DeepEqual(result.InheritanceTree["A"], []string{}) {
		t.Errorf("InheritanceTree[A] = %v, want empty slice", result.InheritanceTree["A"])
	}
	if !reflect.DeepEqual(result.ClassOrder, []string{"A"}) {
		t.Errorf("ClassOrder = %v", result.ClassOrder)
	}
}

func TestStructureInheritance(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	source := `class A:
    pass

class B(A):
    def f(self):
        pass
`
	result := a.AnalyzeSource([]byte(source), "ab.py")
	if !result.Success {
		t.Fatalf("analysis failed: %s", result.Error)
	}

	if !reflect.DeepEqual(result.InheritanceTree["A"], []string{"B"}) {
		t.Errorf("InheritanceTree[A] = %v, want [B]", result.InheritanceTree["A"])
	}
	if !reflect.DeepEqual(result.InheritanceTree["B"], []string{}) {
		t.Errorf("InheritanceTree[B] = %v, want empty", result.InheritanceTree["B"])
	}
	if !strings.Contains(result.Mermaid(), "A <|-- B") {
		t.Errorf("diagram missing edge:\n%s", result.Mermaid())
	}

	b := result.Classes["B"]
	if !reflect.DeepEqual(b.Bases, []string{"A"}) {
		t.Errorf("B.Bases = %v", b.Bases)
	}
	if !reflect.DeepEqual(b.Methods, []string{"f"}) {
		t.Errorf("B.Methods = %v", b.Methods)
	}
	// Bases count as dependencies.
	if !reflect.DeepEqual(b.Dependencies, []string{"A"}) {
		t.Errorf("B.Dependencies = %v", b.Dependencies)
	}
}

func TestStructureExternalBase(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	result := a.AnalyzeSource([]byte("class Impl(abc.ABC):\n    pass\n"), "impl.py")
	if !result.Success {
		t.Fatal(result.Error)
	}

	info := result.Classes["Impl"]
	if !reflect.DeepEqual(info.Bases, []string{"abc.ABC"}) {
		t.Errorf("Bases = %v, want [abc.ABC]", info.Bases)
	}
	// The external base still gets an inheritance tree entry.
	if !reflect.DeepEqual(result.InheritanceTree["abc.ABC"], []string{"Impl"}) {
		t.Errorf("InheritanceTree[abc.ABC] = %v", result.InheritanceTree["abc.ABC"])
	}
}

func TestStructureDependencyHeuristic(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	// Dependencies come from class names occurring inside method NAMES,
	// not method bodies.
	source := `class Engine:
    pass

class Car:
    def start_Engine(self):
        pass

class Truck:
    def drive(self):
        e = Engine()
`
	result := a.AnalyzeSource([]byte(source), "cars.py")
	if !result.Success {
		t.Fatal(result.Error)
	}

	if !reflect.DeepEqual(result.Classes["Car"].Dependencies, []string{"Engine"}) {
		t.Errorf("Car.Dependencies = %v, want [Engine]", result.Classes["Car"].Dependencies)
	}
	// Body references alone do not create dependencies.
	if len(result.Classes["Truck"].Dependencies) != 0 {
		t.Errorf("Truck.Dependencies = %v, want empty", result.Classes["Truck"].Dependencies)
	}
}

func TestStructureSelfNeverDependency(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	source := `class Node:
    def make_Node(self):
        pass
`
	result := a.AnalyzeSource([]byte(source), "node.py")
	if !result.Success {
		t.Fatal(result.Error)
	}
	for _, dep := range result.Classes["Node"].Dependencies {
		if dep == "Node" {
			t.Error("class depends on itself")
		}
	}
}

func TestStructureClassVarsAndDocstring(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	source := `class Settings:
    """Holds settings."""

    retries = 3
    timeout = limit = 30

    def load(self):
        self.path = "x"
`
	result := a.AnalyzeSource([]byte(source), "settings.py")
	if !result.Success {
		t.Fatal(result.Error)
	}

	info := result.Classes["Settings"]
	if info.Docstring != "Holds settings." {
		t.Errorf("Docstring = %q", info.Docstring)
	}
	// Chained targets all count; assignments inside methods do not.
	if !reflect.DeepEqual(info.InstanceVars, []string{"limit", "retries", "timeout"}) {
		t.Errorf("InstanceVars = %v", info.InstanceVars)
	}
}

func TestStructureDecoratedAndNested(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	source := `import functools

class Outer:
    @property
    def value(self):
        return 1

    class Inner:
        pass

def factory():
    class Hidden:
        pass
    return Hidden
`
	result := a.AnalyzeSource([]byte(source), "nested.py")
	if !result.Success {
		t.Fatal(result.Error)
	}

	// Every class definition is collected, wherever it appears.
	if !reflect.DeepEqual(result.ClassOrder, []string{"Outer", "Inner", "Hidden"}) {
		t.Errorf("ClassOrder = %v", result.ClassOrder)
	}
	if !reflect.DeepEqual(result.Classes["Outer"].Methods, []string{"value"}) {
		t.Errorf("decorated method missing: %v", result.Classes["Outer"].Methods)
	}
}

func TestStructureLineNumbers(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	source := "class A:\n    def m(self):\n        pass\n"
	result := a.AnalyzeSource([]byte(source), "lines.py")
	if !result.Success {
		t.Fatal(result.Error)
	}

	info := result.Classes["A"]
	if info.StartLine != 1 || info.EndLine != 3 || info.LineCount != 3 {
		t.Errorf("lines = (%d, %d, %d), want (1, 3, 3)", info.StartLine, info.EndLine, info.LineCount)
	}
}

func TestStructureSyntaxError(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	result := a.AnalyzeSource([]byte("class (:\n"), "bad.py")
	if result.Success {
		t.Fatal("analysis succeeded on invalid source")
	}
	if result.Error == "" {
		t.Error("failure result has empty message")
	}
	if len(result.Classes) != 0 || len(result.Relationships) != 0 || len(result.InheritanceTree) != 0 {
		t.Error("failure result has partial tables")
	}
	if !strings.Contains(result.Mermaid(), "note Error occurred during analysis") {
		t.Errorf("failure diagram = %q", result.Mermaid())
	}
}

func TestStructureAnalyzeFile(t *testing.T) {
	a := NewStructureAnalyzer()
	defer a.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	if err := os.WriteFile(path, []byte("class X:\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := a.AnalyzeFile(path)
	if !result.Success {
		t.Fatalf("analysis failed: %s", result.Error)
	}
	if _, ok := result.Classes["X"]; !ok {
		t.Error("class X not found")
	}

	missing := a.AnalyzeFile(filepath.Join(dir, "missing.py"))
	if missing.Success {
		t.Error("analysis succeeded on missing file")
	}
}

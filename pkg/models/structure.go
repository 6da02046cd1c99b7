package models

import (
	"fmt"
	"sort"
	"strings"
)

// ClassInfo describes a single class definition.
type ClassInfo struct {
	Name         string   `json:"name"`
	Bases        []string `json:"bases"`
	Methods      []string `json:"methods"`
	InstanceVars []string `json:"instance_vars"`
	Dependencies []string `json:"dependencies"`
	LineCount    int      `json:"line_count"`
	StartLine    uint32   `json:"start_line"`
	EndLine      uint32   `json:"end_line"`
	Docstring    string   `json:"docstring,omitempty"`
}

// HasBase reports whether name is one of the class's declared bases.
func (c *ClassInfo) HasBase(name string) bool {
	for _, b := range c.Bases {
		if b == name {
			return true
		}
	}
	return false
}

// StructureAnalysis holds the class structures and relationships found
// in one file. ClassOrder and TreeOrder record discovery order for the
// corresponding maps so rendering stays deterministic.
type StructureAnalysis struct {
	FileResult

	Classes         map[string]*ClassInfo `json:"classes"`
	ClassOrder      []string              `json:"class_order"`
	Relationships   map[string][]string   `json:"relationships"`
	InheritanceTree map[string][]string   `json:"inheritance_tree"`
	TreeOrder       []string              `json:"tree_order"`
}

// NewStructureAnalysis creates an empty successful result for a file.
func NewStructureAnalysis(path string) *StructureAnalysis {
	return &StructureAnalysis{
		FileResult:      FileResult{Path: path, Success: true},
		Classes:         make(map[string]*ClassInfo),
		Relationships:   make(map[string][]string),
		InheritanceTree: make(map[string][]string),
	}
}

// FailedStructureAnalysis creates a failure result with empty tables.
func FailedStructureAnalysis(path, message string) *StructureAnalysis {
	return &StructureAnalysis{
		FileResult:      FileResult{Path: path, Success: false, Error: message},
		Classes:         make(map[string]*ClassInfo),
		Relationships:   make(map[string][]string),
		InheritanceTree: make(map[string][]string),
	}
}

// ClassCount returns the number of classes found.
func (a *StructureAnalysis) ClassCount() int {
	return len(a.Classes)
}

// Mermaid renders the analysis as a Mermaid class diagram. The
// rendering is pure and deterministic: inheritance edges follow tree
// discovery order, class boxes follow class discovery order with
// instance variables and methods sorted, and association edges are
// sorted by target.
func (a *StructureAnalysis) Mermaid() string {
	if a.Failed() {
		return "classDiagram\n    note Error occurred during analysis"
	}

	var b strings.Builder
	b.WriteString("classDiagram")

	for _, base := range a.TreeOrder {
		for _, child := range a.InheritanceTree[base] {
			if _, known := a.Classes[child]; known {
				fmt.Fprintf(&b, "\n    %s <|-- %s", base, child)
			}
		}
	}

	for _, name := range a.ClassOrder {
		info := a.Classes[name]

		fmt.Fprintf(&b, "\n    class %s {", name)
		for _, v := range sortedCopy(info.InstanceVars) {
			fmt.Fprintf(&b, "\n        +%s", v)
		}
		for _, m := range sortedCopy(info.Methods) {
			fmt.Fprintf(&b, "\n        +%s()", m)
		}
		b.WriteString("\n    }")

		for _, dep := range sortedCopy(info.Dependencies) {
			if info.HasBase(dep) {
				continue
			}
			if _, known := a.Classes[dep]; known {
				fmt.Fprintf(&b, "\n    %s --> %s", name, dep)
			}
		}
	}

	return b.String()
}

func sortedCopy(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Strings(out)
	return out
}

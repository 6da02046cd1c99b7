// Package planner builds and validates file migration plans from a
// YAML mapping of glob patterns to target path templates.
package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoMapping is returned when a plan is requested before a mapping
// has been loaded.
var ErrNoMapping = errors.New("no mapping configuration loaded")

// Rule maps files matching a glob pattern to a target path template.
// Higher priority wins when several rules match.
type Rule struct {
	Pattern  string `yaml:"pattern"`
	Target   string `yaml:"target"`
	Priority int    `yaml:"priority"`
}

// Special holds patterns handled outside the per-type rules.
type Special struct {
	Ignore []string `yaml:"ignore"`
}

// FileCheck caps the size of files of one extension.
type FileCheck struct {
	Type    string `yaml:"type"`
	MaxSize int64  `yaml:"max_size"`
}

// Validation lists structural requirements a plan must satisfy.
type Validation struct {
	RequiredDirs []string    `yaml:"required_dirs"`
	FileChecks   []FileCheck `yaml:"file_checks"`
}

// Mapping is the full migration rule set loaded from YAML.
type Mapping struct {
	Version    int               `yaml:"version"`
	Patterns   map[string][]Rule `yaml:"patterns"`
	Special    Special           `yaml:"special"`
	Validation Validation        `yaml:"validation"`
}

// Move relocates one file.
type Move struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Pattern string `json:"pattern"`
}

// Ignore records a file left in place and why.
type Ignore struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Plan is the full result of planning a migration. Warnings flag
// issues worth a look; Errors block execution.
type Plan struct {
	Moves    []Move   `json:"moves"`
	Creates  []string `json:"creates"`
	Ignores  []Ignore `json:"ignores"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// HasErrors reports whether the plan contains blocking issues.
func (p *Plan) HasErrors() bool {
	return len(p.Errors) > 0
}

// Summary condenses a plan to counts.
type Summary struct {
	TotalMoves    int  `json:"total_moves"`
	TotalCreates  int  `json:"total_creates"`
	TotalIgnores  int  `json:"total_ignores"`
	TotalWarnings int  `json:"total_warnings"`
	TotalErrors   int  `json:"total_errors"`
	HasErrors     bool `json:"has_errors"`
}

// Summary condenses the plan to counts.
func (p *Plan) Summary() Summary {
	return Summary{
		TotalMoves:    len(p.Moves),
		TotalCreates:  len(p.Creates),
		TotalIgnores:  len(p.Ignores),
		TotalWarnings: len(p.Warnings),
		TotalErrors:   len(p.Errors),
		HasErrors:     p.HasErrors(),
	}
}

// Planner plans migrations of files under baseDir. maxFileSize, when
// positive, caps any moved file's size regardless of per-type checks.
type Planner struct {
	baseDir     string
	maxFileSize int64
	mapping     *Mapping
}

// New creates a planner for files under baseDir.
func New(baseDir string, maxFileSize int64) *Planner {
	return &Planner{baseDir: baseDir, maxFileSize: maxFileSize}
}

// LoadMapping reads and validates a YAML mapping file.
func (p *Planner) LoadMapping(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading mapping file: %w", err)
	}

	// Key presence is checked against the raw document so a missing
	// section is reported by name rather than defaulting silently.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing mapping file: %w", err)
	}
	for _, key := range []string{"version", "patterns", "special", "validation"} {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("missing required key in mapping: %s", key)
		}
	}

	var mapping Mapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return fmt.Errorf("parsing mapping file: %w", err)
	}

	for fileType, rules := range mapping.Patterns {
		for _, rule := range rules {
			if rule.Pattern == "" || rule.Target == "" {
				return fmt.Errorf("invalid pattern structure in %s", fileType)
			}
		}
	}

	p.mapping = &mapping
	return nil
}

// CreatePlan plans the migration of files grouped by type. Unplannable
// files become warnings or errors inside the plan rather than failing
// the call.
func (p *Planner) CreatePlan(files map[string][]string) (*Plan, error) {
	if p.mapping == nil {
		return nil, ErrNoMapping
	}

	plan := &Plan{
		Moves:    []Move{},
		Creates:  []string{},
		Ignores:  []Ignore{},
		Warnings: []string{},
		Errors:   []string{},
	}

	p.planDirectories(plan)

	for _, fileType := range sortedKeys(files) {
		rules, ok := p.mapping.Patterns[fileType]
		if !ok {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("No mapping rules for file type: %s", fileType))
			continue
		}
		for _, path := range files[fileType] {
			p.planFile(plan, path, rules)
		}
	}

	p.validatePlan(plan)
	return plan, nil
}

// planDirectories collects required directories plus every directory a
// target template writes into.
func (p *Planner) planDirectories(plan *Plan) {
	plan.Creates = append(plan.Creates, p.mapping.Validation.RequiredDirs...)

	seen := make(map[string]bool, len(plan.Creates))
	for _, dir := range plan.Creates {
		seen[dir] = true
	}

	for _, fileType := range sortedKeys(p.mapping.Patterns) {
		for _, rule := range p.mapping.Patterns[fileType] {
			brace := strings.IndexByte(rule.Target, '{')
			if brace < 0 {
				continue
			}
			dir := strings.TrimRight(rule.Target[:brace], "/")
			if dir != "" && !seen[dir] {
				seen[dir] = true
				plan.Creates = append(plan.Creates, dir)
			}
		}
	}
}

// planFile plans one file: ignored, moved by the highest-priority
// matching rule, or flagged as unmatched.
func (p *Planner) planFile(plan *Plan, path string, rules []Rule) {
	for _, pattern := range p.mapping.Special.Ignore {
		if fnmatch(pattern, path) {
			plan.Ignores = append(plan.Ignores, Ignore{
				Path:   path,
				Reason: fmt.Sprintf("Matched ignore pattern: %s", pattern),
			})
			return
		}
	}

	var matched *Rule
	highest := -1
	for i, rule := range rules {
		if fnmatch(rule.Pattern, path) && rule.Priority > highest {
			matched = &rules[i]
			highest = rule.Priority
		}
	}

	if matched == nil {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("No matching pattern for file: %s", path))
		return
	}

	target, err := resolveTarget(path, matched.Target)
	if err != nil {
		plan.Errors = append(plan.Errors,
			fmt.Sprintf("Error planning move for %s: %v", path, err))
		return
	}
	plan.Moves = append(plan.Moves, Move{
		Source:  path,
		Target:  target,
		Pattern: matched.Pattern,
	})
}

// resolveTarget fills a target template with values derived from the
// source path: {name}, {stem}, {parent}, and {ext}.
func resolveTarget(source, template string) (string, error) {
	name := filepath.Base(source)
	ext := filepath.Ext(name)

	replacer := strings.NewReplacer(
		"{name}", name,
		"{stem}", strings.TrimSuffix(name, ext),
		"{parent}", filepath.Base(filepath.Dir(source)),
		"{ext}", strings.TrimPrefix(ext, "."),
	)
	result := replacer.Replace(template)

	if strings.ContainsAny(result, "{}") {
		return "", fmt.Errorf("unresolved placeholders in target path: %s", result)
	}
	return result, nil
}

// validatePlan checks the assembled plan for duplicate targets,
// missing required directories, and oversized files.
func (p *Planner) validatePlan(plan *Plan) {
	seen := make(map[string]string, len(plan.Moves))
	for _, move := range plan.Moves {
		if prev, ok := seen[move.Target]; ok {
			plan.Errors = append(plan.Errors,
				fmt.Sprintf("Duplicate target path %s for files: %s and %s",
					move.Target, prev, move.Source))
			continue
		}
		seen[move.Target] = move.Source
	}

	planned := make(map[string]bool, len(plan.Creates))
	for _, dir := range plan.Creates {
		planned[dir] = true
	}
	var missing []string
	for _, dir := range p.mapping.Validation.RequiredDirs {
		if !planned[dir] {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		plan.Errors = append(plan.Errors,
			fmt.Sprintf("Missing required directories: %s", strings.Join(missing, ", ")))
	}

	p.validateSizes(plan)
}

// validateSizes warns about moved files exceeding per-type caps or the
// planner-wide maximum.
func (p *Planner) validateSizes(plan *Plan) {
	caps := make(map[string]int64, len(p.mapping.Validation.FileChecks))
	for _, check := range p.mapping.Validation.FileChecks {
		if check.MaxSize > 0 {
			caps[check.Type] = check.MaxSize
		}
	}

	for _, move := range plan.Moves {
		info, err := os.Stat(filepath.Join(p.baseDir, move.Source))
		if err != nil {
			continue
		}
		size := info.Size()

		ext := strings.TrimPrefix(filepath.Ext(move.Source), ".")
		if max, ok := caps[ext]; ok && size > max {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("File %s exceeds maximum size for %s: %d > %d bytes",
					move.Source, ext, size, max))
			continue
		}
		if p.maxFileSize > 0 && size > p.maxFileSize {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("File %s exceeds maximum size for migration: %d > %d bytes",
					move.Source, size, p.maxFileSize))
		}
	}
}

// fnmatch matches path against a shell-style pattern where * also
// crosses path separators, matching the rule files' conventions.
func fnmatch(pattern, path string) bool {
	re, err := fnmatchRegexp(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

func fnmatchRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				b.WriteString(regexp.QuoteMeta(string(c)))
				continue
			}
			set := pattern[i+1 : i+1+end]
			if strings.HasPrefix(set, "!") {
				set = "^" + set[1:]
			}
			b.WriteString("[" + set + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func sortedKeys[M map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

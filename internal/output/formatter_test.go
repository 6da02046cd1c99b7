package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func formatterTo(t *testing.T, format Format) (*Formatter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out")
	f, err := NewFormatter(format, path, true)
	if err != nil {
		t.Fatal(err)
	}
	return f, path
}

func readOutput(t *testing.T, f *Formatter, path string) string {
	t.Helper()
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestFormatterFileOutputDisablesColor(t *testing.T) {
	f, path := formatterTo(t, FormatText)
	if f.Colored() {
		t.Error("file output left color enabled")
	}
	_ = readOutput(t, f, path)
}

func TestTableRenderText(t *testing.T) {
	f, path := formatterTo(t, FormatText)

	table := NewTable("Classes", []string{"Name", "Methods"},
		[][]string{{"Widget", "3"}, {"Gadget", "1"}},
		[]string{"Total", "4"}, nil)
	if err := f.Output(table); err != nil {
		t.Fatal(err)
	}

	got := readOutput(t, f, path)
	for _, want := range []string{"Classes", "Widget", "Gadget", "Total"} {
		if !strings.Contains(got, want) {
			t.Errorf("text output missing %q:\n%s", want, got)
		}
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	f, path := formatterTo(t, FormatMarkdown)

	table := NewTable("Classes", []string{"Name", "Methods"},
		[][]string{{"Widget", "3"}}, nil, nil)
	if err := f.Output(table); err != nil {
		t.Fatal(err)
	}

	got := readOutput(t, f, path)
	if !strings.Contains(got, "## Classes") {
		t.Errorf("markdown missing title:\n%s", got)
	}
	if !strings.Contains(got, "| Name | Methods |") || !strings.Contains(got, "| Widget | 3 |") {
		t.Errorf("markdown missing table rows:\n%s", got)
	}
}

func TestTableRenderJSON(t *testing.T) {
	f, path := formatterTo(t, FormatJSON)

	table := NewTable("", []string{"Name"}, [][]string{{"Widget"}}, nil, nil)
	if err := f.Output(table); err != nil {
		t.Fatal(err)
	}

	var rows []map[string]string
	if err := json.Unmarshal([]byte(readOutput(t, f, path)), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0]["Name"] != "Widget" {
		t.Errorf("JSON rows = %v", rows)
	}
}

func TestTableRenderDataPrefersWrapped(t *testing.T) {
	f, path := formatterTo(t, FormatJSON)

	table := NewTable("", []string{"Name"}, [][]string{{"Widget"}}, nil,
		map[string]int{"total": 7})
	if err := f.Output(table); err != nil {
		t.Fatal(err)
	}

	var data map[string]int
	if err := json.Unmarshal([]byte(readOutput(t, f, path)), &data); err != nil {
		t.Fatal(err)
	}
	if data["total"] != 7 {
		t.Errorf("data = %v, want wrapped payload", data)
	}
}

func TestOutputTOON(t *testing.T) {
	f, path := formatterTo(t, FormatTOON)

	if err := f.Output(map[string]any{"classes": 2}); err != nil {
		t.Fatal(err)
	}

	got := readOutput(t, f, path)
	if !strings.Contains(got, "classes") {
		t.Errorf("toon output missing key:\n%s", got)
	}
}

func TestSectionNesting(t *testing.T) {
	f, path := formatterTo(t, FormatMarkdown)

	section := &Section{
		Title:   "Summary",
		Content: "2 classes",
		Sections: []Section{
			{Title: "Risks", Content: "none"},
		},
	}
	if err := f.Output(section); err != nil {
		t.Fatal(err)
	}

	got := readOutput(t, f, path)
	if !strings.Contains(got, "## Summary") || !strings.Contains(got, "### Risks") {
		t.Errorf("markdown heading levels wrong:\n%s", got)
	}
}

func TestReportCombinesSections(t *testing.T) {
	f, path := formatterTo(t, FormatText)

	report := &Report{
		Title: "Project",
		Sections: []Renderable{
			&Section{Title: "Stats", Content: "4 files"},
			NewTable("", []string{"Name"}, [][]string{{"Widget"}}, nil, nil),
		},
	}
	if err := f.Output(report); err != nil {
		t.Fatal(err)
	}

	got := readOutput(t, f, path)
	for _, want := range []string{"Project", "Stats", "4 files", "Widget"} {
		if !strings.Contains(got, want) {
			t.Errorf("report output missing %q:\n%s", want, got)
		}
	}
}

func TestRiskColorPassthrough(t *testing.T) {
	// Unknown levels come back unchanged.
	if got := RiskColor("nope", "text"); got != "text" {
		t.Errorf("RiskColor = %q", got)
	}
}

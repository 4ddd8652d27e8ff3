package evals

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olgasafonova/volcano-mcp-server/internal/volcano"
	"github.com/olgasafonova/volcano-mcp-server/tools"
)

// MockToolSelector implements ToolSelector for testing
type MockToolSelector struct {
	// Responses maps input strings to tool selections
	Responses map[string]struct {
		Tool string
		Args map[string]any
	}
	// DefaultTool is returned if input isn't in Responses
	DefaultTool string
}

func (m *MockToolSelector) SelectTool(input string) (string, map[string]any, error) {
	if resp, ok := m.Responses[input]; ok {
		return resp.Tool, resp.Args, nil
	}
	return m.DefaultTool, nil, nil
}

// PerfectToolSelector returns the expected tool for each test
type PerfectToolSelector struct {
	suite *ToolSelectionSuite
	pairs *ConfusionPairSuite
}

func (p *PerfectToolSelector) SelectTool(input string) (string, map[string]any, error) {
	if p.suite != nil {
		for _, test := range p.suite.Tests {
			if test.Input == input {
				return test.ExpectedTool, test.ExpectedArgs, nil
			}
		}
	}
	if p.pairs != nil {
		for _, pair := range p.pairs.Pairs {
			for _, test := range pair.Tests {
				if test.Input == input {
					return test.Expected, nil, nil
				}
			}
		}
	}
	return "", nil, nil
}

// registeredCatalog builds the catalog from the server's real tool registry
func registeredCatalog(t *testing.T) Catalog {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	registry := tools.NewHandlerRegistry(volcano.NewClient(nil), logger)

	catalog := make(Catalog)
	for _, spec := range tools.AllTools {
		catalog[spec.Name] = registry.ArgumentNames(spec.Name)
	}
	return catalog
}

func TestDefaultSuites(t *testing.T) {
	selection, err := DefaultToolSelectionSuite()
	if err != nil {
		t.Fatalf("DefaultToolSelectionSuite: %v", err)
	}
	if selection.Name == "" || len(selection.Tests) == 0 {
		t.Errorf("bundled selection suite is empty: %+v", selection)
	}
	for _, test := range selection.Tests {
		if test.ID == "" || test.Input == "" || test.ExpectedTool == "" {
			t.Errorf("incomplete test %+v", test)
		}
	}

	pairs, err := DefaultConfusionPairSuite()
	if err != nil {
		t.Fatalf("DefaultConfusionPairSuite: %v", err)
	}
	for _, pair := range pairs.Pairs {
		if len(pair.Tools) != 2 {
			t.Errorf("pair %s should name two tools, got %v", pair.ID, pair.Tools)
		}
		if len(pair.Tests) == 0 {
			t.Errorf("pair %s has no tests", pair.ID)
		}
	}
}

func TestLoadSuitesFromFile(t *testing.T) {
	selection, err := LoadToolSelectionSuite(filepath.Join(".", "tool_selection.json"))
	if err != nil {
		t.Fatalf("LoadToolSelectionSuite: %v", err)
	}
	if len(selection.Tests) == 0 {
		t.Error("Suite should have tests")
	}

	if _, err := LoadConfusionPairSuite(filepath.Join(".", "confusion_pairs.json")); err != nil {
		t.Fatalf("LoadConfusionPairSuite: %v", err)
	}

	if _, err := LoadToolSelectionSuite(filepath.Join(".", "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBundledSuitesMatchRegisteredTools(t *testing.T) {
	selection, _ := DefaultToolSelectionSuite()
	pairs, _ := DefaultConfusionPairSuite()

	for _, issue := range Validate(selection, pairs, registeredCatalog(t)) {
		t.Error(issue)
	}
}

func TestValidate_ReportsProblems(t *testing.T) {
	catalog := Catalog{
		"search-volcanoes": {"country", "limit"},
		"search-eruptions": {"volcano_name"},
	}
	selection := &ToolSelectionSuite{Tests: []ToolSelectionTest{
		{ID: "a", ExpectedTool: "search-volcanoes", ExpectedArgs: map[string]any{"nation": "Chile"}},
		{ID: "b", ExpectedTool: "erupt-now"},
		{ID: "c", ExpectedTool: "search-volcanoes", NotTools: []string{"list-volcanoes"}},
	}}

	issues := strings.Join(Validate(selection, nil, catalog), "\n")
	for _, want := range []string{
		`a: search-volcanoes has no argument "nation"`,
		`b: unknown tool "erupt-now"`,
		`c: unknown tool "list-volcanoes"`,
		`tool "search-eruptions" is not covered by any test`,
	} {
		if !strings.Contains(issues, want) {
			t.Errorf("missing issue %q in:\n%s", want, issues)
		}
	}
}

func TestEvaluateToolSelection_Perfect(t *testing.T) {
	suite, _ := DefaultToolSelectionSuite()

	metrics, results := EvaluateToolSelection(suite, &PerfectToolSelector{suite: suite})

	if metrics.Accuracy != 1.0 {
		t.Errorf("Accuracy = %v, want 1.0; failures: %v", metrics.Accuracy, metrics.FailedDetails)
	}
	if len(results) != len(suite.Tests) {
		t.Errorf("results = %d, want %d", len(results), len(suite.Tests))
	}
}

func TestEvaluateToolSelection_Failures(t *testing.T) {
	suite := &ToolSelectionSuite{Tests: []ToolSelectionTest{
		{ID: "t1", Category: "search", Input: "volcanoes in Chile", ExpectedTool: "search-volcanoes", ExpectedArgs: map[string]any{"country": "Chile"}},
		{ID: "t2", Category: "details", Input: "about Etna", ExpectedTool: "get-volcano-details", NotTools: []string{"search-eruptions"}},
		{ID: "t3", Category: "search", Input: "VEI 7", ExpectedTool: "find-large-eruptions", ExpectedArgs: map[string]any{"min_vei": 7}},
	}}

	selector := &MockToolSelector{
		Responses: map[string]struct {
			Tool string
			Args map[string]any
		}{
			"volcanoes in Chile": {Tool: "search-volcanoes", Args: map[string]any{"country": "chile"}},
			"about Etna":         {Tool: "search-eruptions"},
			"VEI 7":              {Tool: "find-large-eruptions", Args: map[string]any{"min_vei": 6.0}},
		},
	}

	metrics, results := EvaluateToolSelection(suite, selector)

	if metrics.PassedTests != 1 || metrics.FailedTests != 2 {
		t.Errorf("passed/failed = %d/%d, want 1/2", metrics.PassedTests, metrics.FailedTests)
	}
	if !results[0].Passed {
		t.Errorf("country should match case-insensitively: %v", results[0].Errors)
	}
	if len(results[1].Errors) != 2 {
		t.Errorf("expected wrong tool and forbidden tool errors, got %v", results[1].Errors)
	}
	if metrics.ByTool["search-eruptions"].FalsePositives != 1 {
		t.Error("search-eruptions should record a false positive")
	}
	if metrics.ByCategory["search"].Failed != 1 {
		t.Errorf("search category failures = %d", metrics.ByCategory["search"].Failed)
	}
}

func TestEvaluateConfusionPairs(t *testing.T) {
	pairs, _ := DefaultConfusionPairSuite()

	metrics := EvaluateConfusionPairs(pairs, &PerfectToolSelector{pairs: pairs})
	if metrics.Accuracy != 1.0 {
		t.Errorf("Accuracy = %v; failures: %v", metrics.Accuracy, metrics.FailedDetails)
	}

	metrics = EvaluateConfusionPairs(pairs, &MockToolSelector{DefaultTool: "search-volcanoes"})
	if metrics.PassedTests == 0 || metrics.FailedTests == 0 {
		t.Errorf("a constant selector should pass some and fail some: %d/%d", metrics.PassedTests, metrics.FailedTests)
	}
	if len(metrics.ByCategory) != len(pairs.Pairs) {
		t.Errorf("categories = %d, want one per pair", len(metrics.ByCategory))
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"nil both", nil, nil, true},
		{"nil one", nil, "x", false},
		{"int vs float", 5, 5.0, true},
		{"float vs int", 4.0, 4, true},
		{"float mismatch", 4.0, 5.0, false},
		{"string case", "Japan", "japan", true},
		{"string mismatch", "Japan", "Chile", false},
		{"bool", true, true, true},
		{"bool mismatch", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareValues(tt.expected, tt.actual); got != tt.want {
				t.Errorf("compareValues(%v, %v) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestFormatMetrics(t *testing.T) {
	metrics := &EvalMetrics{
		TotalTests:  2,
		PassedTests: 1,
		FailedTests: 1,
		Accuracy:    0.5,
		ByCategory: map[string]*CategoryMetrics{
			"search": {Total: 2, Passed: 1, Failed: 1},
		},
		FailedDetails: []string{"[t1] failure"},
	}

	out := FormatMetrics(metrics, "Tool Selection")
	for _, want := range []string{"=== Tool Selection ===", "Passed: 1 (50.0%)", "search", "[t1] failure"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

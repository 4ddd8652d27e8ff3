// Command evals checks the MCP tool selection suites against the tools the
// server registers.
//
// Usage:
//
//	go run ./cmd/evals -suite all
//	go run ./cmd/evals -dir ./evals -verbose
//
// Without -dir the suites bundled into the binary are used. The command
// exits non-zero when a suite names a tool or argument the server does not
// expose, or when a registered tool has no test. For actual LLM evaluation,
// implement evals.ToolSelector and call EvaluateToolSelection.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olgasafonova/volcano-mcp-server/evals"
	"github.com/olgasafonova/volcano-mcp-server/internal/volcano"
	"github.com/olgasafonova/volcano-mcp-server/tools"
)

func main() {
	dir := flag.String("dir", "", "Directory containing eval JSON files (default: bundled suites)")
	suite := flag.String("suite", "all", "Suite to show: tool_selection, confusion_pairs, or all")
	verbose := flag.Bool("verbose", false, "Show detailed test information")
	flag.Parse()

	fmt.Println("Volcano MCP Server - Evaluation Framework")
	fmt.Println("=========================================")
	fmt.Println()

	selection, pairs, err := loadSuites(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading evals: %v\n", err)
		os.Exit(1)
	}

	switch *suite {
	case "tool_selection":
		showToolSelection(selection, *verbose)
		pairs = nil
	case "confusion_pairs":
		showConfusionPairs(pairs, *verbose)
		selection = nil
	case "all":
		showToolSelection(selection, *verbose)
		showConfusionPairs(pairs, *verbose)
	default:
		fmt.Fprintf(os.Stderr, "Unknown suite: %s\n", *suite)
		os.Exit(1)
	}

	issues := evals.Validate(selection, pairs, catalog())
	if *suite != "all" {
		// Coverage only makes sense across both suites
		issues = withoutCoverage(issues)
	}
	if len(issues) > 0 {
		fmt.Printf("Validation: %d issue(s)\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  ✗ %s\n", issue)
		}
		os.Exit(1)
	}
	fmt.Printf("Validation: all suites match the %d registered tools\n", len(tools.AllTools))
	fmt.Println()
	fmt.Println("To run with LLM integration, implement the evals.ToolSelector interface")
	fmt.Println("and use EvaluateToolSelection() and EvaluateConfusionPairs()")
}

func loadSuites(dir string) (*evals.ToolSelectionSuite, *evals.ConfusionPairSuite, error) {
	if dir == "" {
		selection, err := evals.DefaultToolSelectionSuite()
		if err != nil {
			return nil, nil, err
		}
		pairs, err := evals.DefaultConfusionPairSuite()
		if err != nil {
			return nil, nil, err
		}
		return selection, pairs, nil
	}

	selection, err := evals.LoadToolSelectionSuite(filepath.Join(dir, "tool_selection.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("tool selection: %w", err)
	}
	pairs, err := evals.LoadConfusionPairSuite(filepath.Join(dir, "confusion_pairs.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("confusion pairs: %w", err)
	}
	return selection, pairs, nil
}

// catalog lists the argument names of every registered tool
func catalog() evals.Catalog {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	registry := tools.NewHandlerRegistry(volcano.NewClient(nil), logger)

	c := make(evals.Catalog, len(tools.AllTools))
	for _, spec := range tools.AllTools {
		c[spec.Name] = registry.ArgumentNames(spec.Name)
	}
	return c
}

func withoutCoverage(issues []string) []string {
	var kept []string
	for _, issue := range issues {
		if strings.HasPrefix(issue, "tool ") {
			continue
		}
		kept = append(kept, issue)
	}
	return kept
}

func sortedCounts(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func showToolSelection(suite *evals.ToolSelectionSuite, verbose bool) {
	fmt.Printf("Tool Selection Suite: %s\n", suite.Name)
	fmt.Printf("Version: %s\n", suite.Version)
	fmt.Printf("Description: %s\n", suite.Description)
	fmt.Printf("Total Tests: %d\n", len(suite.Tests))
	fmt.Println()

	categories := make(map[string]int)
	byTool := make(map[string]int)
	for _, test := range suite.Tests {
		categories[test.Category]++
		byTool[test.ExpectedTool]++
	}

	fmt.Println("Tests by Category:")
	for _, cat := range sortedCounts(categories) {
		fmt.Printf("  %-15s: %d\n", cat, categories[cat])
	}
	fmt.Println()

	fmt.Println("Tests by Tool:")
	for _, name := range sortedCounts(byTool) {
		fmt.Printf("  %-25s: %d\n", name, byTool[name])
	}
	fmt.Println()

	if verbose {
		fmt.Println("Test Cases:")
		for _, test := range suite.Tests {
			fmt.Printf("  [%s] %s\n", test.ID, test.Input)
			fmt.Printf("    → %s %v\n", test.ExpectedTool, test.ExpectedArgs)
			if len(test.NotTools) > 0 {
				fmt.Printf("    ✗ %v\n", test.NotTools)
			}
		}
		fmt.Println()
	}
}

func showConfusionPairs(suite *evals.ConfusionPairSuite, verbose bool) {
	fmt.Printf("Confusion Pairs Suite: %s\n", suite.Name)
	fmt.Printf("Version: %s\n", suite.Version)
	fmt.Printf("Total Pairs: %d\n", len(suite.Pairs))

	for _, pair := range suite.Pairs {
		fmt.Printf("\n  %s:\n", pair.ID)
		fmt.Printf("    Tools: %v\n", pair.Tools)
		fmt.Printf("    Rule: %s\n", pair.Disambiguation)
		fmt.Printf("    Tests: %d\n", len(pair.Tests))

		if verbose {
			for _, test := range pair.Tests {
				fmt.Printf("      %q\n", test.Input)
				fmt.Printf("        → %s (%s)\n", test.Expected, test.Reason)
			}
		}
	}
	fmt.Println()
}

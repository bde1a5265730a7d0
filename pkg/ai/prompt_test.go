package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/duynguyendang/digivolve/pkg/evolution"
)

func TestLoadAndExecutePrompt(t *testing.T) {
	content := `---
model: test-model
temperature: 0.5
---
Describe {{.entries}} briefly.
`
	path := filepath.Join(t.TempDir(), "test.prompt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPrompt(path)
	if err != nil {
		t.Fatalf("LoadPrompt failed: %v", err)
	}

	if p.Config.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got '%s'", p.Config.Model)
	}
	if p.Config.Temperature != 0.5 {
		t.Errorf("Expected temperature 0.5, got %f", p.Config.Temperature)
	}

	result, err := p.Execute(map[string]interface{}{"entries": "Agumon"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "Describe Agumon briefly." {
		t.Errorf("Unexpected render: %q", result)
	}
}

func TestLoadPromptMissingFrontmatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.prompt")
	if err := os.WriteFile(path, []byte("no frontmatter here"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPrompt(path); err == nil {
		t.Fatal("Expected error for prompt without frontmatter")
	}
}

func TestLineageBlock(t *testing.T) {
	stage := "Child"
	attr := "Vaccine"
	num := 4
	entries := []evolution.Lineage{
		{
			Current: evolution.Descriptor{Name: "Agumon", Number: &num, Stage: &stage, Attribute: &attr},
			Predecessors: []evolution.Ref{
				{Name: "Koromon"},
			},
			Successors: []evolution.Ref{
				{Name: "Greymon"},
				{Name: "Tyranomon"},
			},
		},
	}

	block := lineageBlock(entries)

	for _, want := range []string{
		"### Agumon",
		"Stage: Child",
		"Attribute: Vaccine",
		"Evolves from: Koromon",
		"Evolves to: Greymon, Tyranomon",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("Expected block to contain %q, got:\n%s", want, block)
		}
	}
}

func TestLineageBlockEmptySides(t *testing.T) {
	entries := []evolution.Lineage{
		{
			Current:      evolution.Descriptor{Name: "Greymon"},
			Predecessors: []evolution.Ref{},
			Successors:   []evolution.Ref{},
		},
	}

	block := lineageBlock(entries)

	if !strings.Contains(block, "Evolves from: none") {
		t.Errorf("Expected 'Evolves from: none', got:\n%s", block)
	}
	if !strings.Contains(block, "Evolves to: none") {
		t.Errorf("Expected 'Evolves to: none', got:\n%s", block)
	}
}

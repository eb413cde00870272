// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/deep-research/pkg/types"
)

// writeFile is a test helper that creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validPlan = `disease: psoriatic arthritis
sections:
  - name: disease_overview
    description: "Epidemiology and pathophysiology."
    key_questions:
      - "What is the disease prevalence?"
      - "What is the standard of care?"
    scope: "Adult patients only."
  - name: clinical_trials_analysis
    description: "Pivotal and ongoing trials."
    key_questions:
      - "What pivotal trials exist?"
    scope: "Phase 2 and later."
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.yaml", validPlan)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Disease != "psoriatic arthritis" {
		t.Errorf("Disease = %q", p.Disease)
	}
	if len(p.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(p.Sections))
	}
	if got := p.Sections[0].KeyQuestions; len(got) != 2 {
		t.Errorf("KeyQuestions = %v, want 2 entries", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing plan file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no disease",
			yaml: "sections:\n  - name: disease_overview\n    key_questions: [q]\n",
		},
		{
			name: "no sections",
			yaml: "disease: x\nsections: []\n",
		},
		{
			name: "unknown section",
			yaml: "disease: x\nsections:\n  - name: mystery\n    key_questions: [q]\n",
		},
		{
			name: "duplicate section",
			yaml: "disease: x\nsections:\n  - name: disease_overview\n    key_questions: [q]\n  - name: disease_overview\n    key_questions: [q]\n",
		},
		{
			name: "no key questions",
			yaml: "disease: x\nsections:\n  - name: disease_overview\n    key_questions: []\n",
		},
		{
			name: "invalid yaml",
			yaml: ":::bad\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "plan.yaml", tt.yaml)
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadGuidance(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guidance.yaml", `disease_overview:
  needs_more_research: true
  notes: "thin on epidemiology"
  suggested_queries:
    - "prevalence registry data"
mystery_section:
  needs_more_research: true
`)

	var w bytes.Buffer
	g := LoadGuidance(path, &w)
	if !g[types.SectionDiseaseOverview].NeedsMoreResearch {
		t.Error("needs_more_research flag not loaded")
	}
	if len(g) != 1 {
		t.Errorf("len(guidance) = %d, want 1 (unknown section dropped)", len(g))
	}
	if !bytes.Contains(w.Bytes(), []byte("mystery_section")) {
		t.Error("expected warning about unknown section")
	}
}

func TestLoadGuidanceTolerant(t *testing.T) {
	var w bytes.Buffer

	if g := LoadGuidance("", &w); g != nil {
		t.Error("empty path should yield nil guidance")
	}

	if g := LoadGuidance(filepath.Join(t.TempDir(), "missing.yaml"), &w); g != nil {
		t.Error("missing file should yield nil guidance, not an error")
	}

	path := writeFile(t, t.TempDir(), "guidance.yaml", ":::bad\n")
	if g := LoadGuidance(path, &w); g != nil {
		t.Error("unparseable file should yield nil guidance")
	}
	if !bytes.Contains(w.Bytes(), []byte("warning:")) {
		t.Error("expected warnings for tolerant failures")
	}
}

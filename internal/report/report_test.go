// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/deep-research/internal/coverage"
	"github.com/pdiddy/deep-research/internal/evidence"
	"github.com/pdiddy/deep-research/pkg/types"
)

const (
	q1 = "What is the disease prevalence?"
	q2 = "What pivotal trials exist?"
)

// writeFile is a test helper that creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testPlan() types.ResearchPlan {
	return types.ResearchPlan{
		Disease: "psoriatic arthritis",
		Sections: []types.ResearchSection{
			{Name: types.SectionDiseaseOverview, KeyQuestions: []string{q1}},
			{Name: types.SectionClinicalTrialsAnalysis, KeyQuestions: []string{q2}},
		},
	}
}

func testStore(t *testing.T) *evidence.Store {
	t.Helper()
	a, err := evidence.NewItem(types.EvidenceItem{
		Source:             types.SourcePubMed,
		Title:              "Prevalence of psoriatic arthritis in adults",
		URL:                "https://pubmed.ncbi.nlm.nih.gov/12345/",
		Quote:              "prevalence was estimated at 0.2 percent",
		Year:               2023,
		Tags:               []string{"epidemiology"},
		SupportedQuestions: []string{q1},
		Section:            types.SectionDiseaseOverview,
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := evidence.NewStore([]types.EvidenceItem{a})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEvidenceAppendix(t *testing.T) {
	plan := testPlan()
	store := testStore(t)

	got := EvidenceAppendix(plan, store)

	for _, want := range []string{
		"# Evidence Appendix: psoriatic arthritis",
		"## disease_overview",
		"## clinical_trials_analysis",
		store.Items[0].ID,
		"Prevalence of psoriatic arthritis in adults",
		"https://pubmed.ncbi.nlm.nih.gov/12345/",
		"Year: 2023",
		"Tags: epidemiology",
		"_No evidence collected._",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("appendix missing %q:\n%s", want, got)
		}
	}
}

func TestEvidenceAppendixSectionOrder(t *testing.T) {
	got := EvidenceAppendix(testPlan(), testStore(t))
	first := strings.Index(got, "## "+types.SectionDiseaseOverview)
	second := strings.Index(got, "## "+types.SectionClinicalTrialsAnalysis)
	if first < 0 || second < 0 || first > second {
		t.Errorf("sections not in plan order (indexes %d, %d)", first, second)
	}
}

func TestCoverageSummary(t *testing.T) {
	plan := testPlan()
	store := testStore(t)
	cov := coverage.Build(plan, store)
	cfg := types.CoverageConfig{MinEvidence: 1, SectionMinEvidence: map[string]int{
		types.SectionDiseaseOverview:        1,
		types.SectionClinicalTrialsAnalysis: 3,
	}}

	got := CoverageSummary(cov, cfg)

	for _, want := range []string{
		"| Section | Question | Evidence | Floor | Status |",
		"| disease_overview | " + q1 + " | 1 | 1 | covered |",
		"| disease_overview | _section total_ | 1 | 1 | covered |",
		"| clinical_trials_analysis | " + q2 + " | 0 | 1 | GAP |",
		"| clinical_trials_analysis | _section total_ | 0 | 3 | GAP |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestWrite(t *testing.T) {
	plan := testPlan()
	store := testStore(t)
	cov := coverage.Build(plan, store)
	dir := filepath.Join(t.TempDir(), "output")

	if err := Write(dir, plan, store, cov, types.DefaultCoverageConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{appendixFile, summaryFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestValidateCitations(t *testing.T) {
	store := testStore(t)
	knownID := store.Items[0].ID

	tests := []struct {
		name        string
		drafts      map[string]string
		wantMissing []string
	}{
		{
			name:        "all ids known",
			drafts:      map[string]string{"disease_overview.md": "Prevalence is low [" + knownID + "]."},
			wantMissing: nil,
		},
		{
			name:        "unknown id reported",
			drafts:      map[string]string{"disease_overview.md": "See [" + knownID + "] and [disease_overview_deadbeef]."},
			wantMissing: []string{"disease_overview_deadbeef"},
		},
		{
			name:        "multi-citation bracket",
			drafts:      map[string]string{"trials.md": "Evidence [" + knownID + "; clinical_trials_analysis_0badf00d] supports this."},
			wantMissing: []string{"clinical_trials_analysis_0badf00d"},
		},
		{
			name:        "markdown links ignored",
			drafts:      map[string]string{"notes.md": "See [this link](https://example.com) and array[0]."},
			wantMissing: nil,
		},
		{
			name: "deduplicates across files",
			drafts: map[string]string{
				"a.md": "From [market_opportunity_analysis_12345678].",
				"b.md": "Again [market_opportunity_analysis_12345678].",
			},
			wantMissing: []string{"market_opportunity_analysis_12345678"},
		},
		{
			name:        "non-markdown files skipped",
			drafts:      map[string]string{"notes.txt": "[disease_overview_deadbeef]"},
			wantMissing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.drafts {
				writeFile(t, dir, name, content)
			}

			missing, err := ValidateCitations(dir, store)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(missing) != len(tt.wantMissing) {
				t.Fatalf("missing = %v, want %v", missing, tt.wantMissing)
			}
			for i, want := range tt.wantMissing {
				if missing[i] != want {
					t.Errorf("missing[%d] = %q, want %q", i, missing[i], want)
				}
			}
		})
	}
}

func TestValidateCitationsMissingDir(t *testing.T) {
	if _, err := ValidateCitations(filepath.Join(t.TempDir(), "nope"), testStore(t)); err == nil {
		t.Error("expected error for missing draft directory")
	}
}

func TestExtractEvidenceIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single citation",
			text: "Low prevalence [disease_overview_a1b2c3d4] overall.",
			want: []string{"disease_overview_a1b2c3d4"},
		},
		{
			name: "multi-citation",
			text: "[disease_overview_a1b2c3d4; competitor_analysis_00ff00ff]",
			want: []string{"disease_overview_a1b2c3d4", "competitor_analysis_00ff00ff"},
		},
		{
			name: "short hash rejected",
			text: "[disease_overview_a1b2]",
			want: nil,
		},
		{
			name: "uppercase rejected",
			text: "[Disease_Overview_A1B2C3D4]",
			want: nil,
		},
		{
			name: "plain brackets rejected",
			text: "array[0] and [click here](x)",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractEvidenceIDs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("got[%d] = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}
